package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"faqbot/config"
	"faqbot/internal/adapter/corpus"
	"faqbot/internal/adapter/embedding"
	"faqbot/internal/adapter/store"
	"faqbot/internal/usecase"
)

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Embed the FAQ corpus into the index",
	Long: `Read question/answer CSV files matched by corpus.includes, normalize and
embed every question, and store the result in .faqbot/index.db within the
project directory. An existing index is replaced.

Examples:
  faqbot build                # Build from the current directory
  faqbot build /path/to/faq   # Build a specific project`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	normalizer := newNormalizer(cfg)

	if err := config.EnsureDataDir(path); err != nil {
		return fmt.Errorf("failed to create .faqbot directory: %w", err)
	}
	dbPath := config.IndexDBPath(path)
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}
	defer st.Close()

	source := corpus.NewSource(
		corpus.NewWalker(cfg.Corpus.Includes, cfg.Corpus.Excludes),
		cfg.Corpus.QuestionColumn,
		cfg.Corpus.AnswerColumn,
	)

	var bar *progressbar.ProgressBar
	buildUC := usecase.NewBuildUseCase(source, normalizer, embedder, st,
		usecase.WithBatching(cfg.Embedding.BatchSize, cfg.Embedding.Workers),
		usecase.WithRetries(cfg.Embedding.MaxRetries, 0),
		usecase.WithProgress(func(done int) {
			bar.Add(done)
		}),
	)

	fmt.Printf("Scanning %s...\n", path)
	rows, err := buildUC.Rows(path)
	if err != nil {
		return fmt.Errorf("failed to read corpus: %w", err)
	}

	fmt.Printf("Embedding %d questions with %s (%s)...\n", len(rows), cfg.Embedding.Provider, embedder.ModelName())
	bar = progressbar.NewOptions(len(rows),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	result, err := buildUC.Build(cmd.Context(), rows)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	schema := &store.SchemaInfo{
		Version:    store.CurrentSchemaVersion,
		ConfigHash: store.ComputeConfigHash(cfg, normalizer.Fingerprint()),
	}
	if err := st.SetSchemaInfo(schema); err != nil {
		return fmt.Errorf("failed to update schema info: %w", err)
	}

	fmt.Printf("\nBuild complete:\n")
	fmt.Printf("  Entries:    %d\n", result.Entries)
	fmt.Printf("  Batches:    %d\n", result.Batches)
	fmt.Printf("  Dimension:  %d\n", result.Dimension)
	fmt.Printf("  Model:      %s\n", result.Model)
	fmt.Printf("  Duration:   %s\n", formatDuration(result.Duration))
	fmt.Printf("\nIndex stored at: %s\n", dbPath)
	return nil
}
