package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"faqbot/internal/usecase"
)

var evalShowMisses bool

var evalCmd = &cobra.Command{
	Use:   "eval <labeled.csv>",
	Short: "Measure matching quality on labeled queries",
	Long: `Run every row of a CSV with query and expected_question columns through
the matching engine and report outcome counts, top-1 accuracy of semantic
answers, and how often the expected question appears among suggestions.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().BoolVar(&evalShowMisses, "misses", false, "list wrongly answered queries")
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open eval file: %w", err)
	}
	defer f.Close()

	cases, err := usecase.ReadCases(f)
	if err != nil {
		return fmt.Errorf("failed to read eval file: %w", err)
	}

	eng, err := loadEngine(cfg, GetRootDir(), nil)
	if err != nil {
		return err
	}

	report, err := usecase.NewEvalUseCase(eng.matcher).Run(cases)
	if err != nil {
		return err
	}

	fmt.Printf("Evaluated %d queries:\n", report.Total)
	fmt.Printf("  Answered:   %d (%d by rules)\n", report.Answered, report.RuleBased)
	fmt.Printf("  Suggested:  %d\n", report.Suggested)
	fmt.Printf("  Fallback:   %d\n", report.Fallback)
	fmt.Printf("  Accuracy:   %.1f%% of semantic answers\n", report.Accuracy()*100)
	fmt.Printf("  Recall@sug: %.1f%% of suggestions\n", report.SuggestionRecall()*100)

	if evalShowMisses && len(report.Misses) > 0 {
		fmt.Printf("\nMisses:\n")
		for _, m := range report.Misses {
			fmt.Printf("  - %q\n    expected: %s\n    got:      %s (%.2f)\n", m.Query, m.Expected, m.Got, m.Score)
		}
	}
	return nil
}
