package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Show the top semantic matches for a question",
	Long: `Rank the corpus by embedding similarity without applying rules or
thresholds. Useful for tuning match.high_threshold and match.low_threshold.

Examples:
  faqbot query -q "reset password"
  faqbot query -q "ims portal" -k 10 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default match.suggestions)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	eng, err := loadEngine(cfg, GetRootDir(), nil)
	if err != nil {
		return err
	}

	topK := cfg.Match.Suggestions
	if queryTopK > 0 {
		topK = queryTopK
	}

	results, err := eng.matcher.FindTopK(queryText, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Top %d matches for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Printf("--- [%d] score %.4f ---\n", i+1, r.Score)
		fmt.Printf("Q: %s\n", r.Question)
		answer := r.Answer
		if len(answer) > 300 {
			answer = answer[:300] + "..."
		}
		fmt.Printf("A: %s\n\n", answer)
	}
	return nil
}
