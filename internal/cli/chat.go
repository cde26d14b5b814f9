package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the bot in the terminal",
	Long: `Start an interactive session with conversation memory, so repeated
questions and follow-ups such as "still not working" behave as in the web UI.
Type "exit" or press Ctrl-D to quit.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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

	session := uuid.NewString()
	fmt.Printf("faqbot ready (%d questions). Type \"exit\" to quit.\n", eng.index.Len())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "exit" {
			return nil
		}

		reply, err := chat.Handle(cmd.Context(), session, line)
		if err != nil {
			return err
		}
		printReply(reply)
	}
}
