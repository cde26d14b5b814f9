package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"faqbot/internal/domain"
)

var (
	askText string
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a single question",
	Long: `Answer one question the way the HTTP API would, including keyword rules
and the answer/suggest/fallback thresholds.

Examples:
  faqbot ask -q "I forgot my password"
  faqbot ask -q "where is the ims portal" --json`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askText, "query", "q", "", "question (required)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	eng, err := loadEngine(cfg, GetRootDir(), nil)
	if err != nil {
		return err
	}
	chat, cleanup, err := newChat(cfg, eng, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := chat.Handle(cmd.Context(), "cli", askText)
	if err != nil {
		return err
	}

	if askJSON {
		output, _ := json.MarshalIndent(reply, "", "  ")
		fmt.Println(string(output))
		return nil
	}
	printReply(reply)
	return nil
}

func printReply(reply domain.Reply) {
	fmt.Println(reply.Answer)
	if reply.Kind == domain.ReplyAnswered || reply.Kind == domain.ReplySuggested {
		fmt.Printf("  (%s, confidence %.2f)\n", reply.Kind, reply.Confidence)
	}
	for i, s := range reply.Suggestions {
		fmt.Printf("  %d. %s (%.2f)\n", i+1, s.Question, s.Score)
	}
}
