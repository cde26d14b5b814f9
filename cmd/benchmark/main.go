package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"faqbot/config"
	"faqbot/internal/adapter/analyzer"
	"faqbot/internal/adapter/embedding"
	"faqbot/internal/adapter/retriever"
	"faqbot/internal/adapter/store"
	"faqbot/internal/adapter/vectorindex"
)

func main() {
	indexPath := flag.String("index", ".", "Path to the directory holding .faqbot/index.db")
	query := flag.String("q", "", "Query to test (empty runs every corpus question)")
	topK := flag.Int("k", 5, "Number of results")
	flag.Parse()

	cfg, err := config.LoadFromDir(*indexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ranker, index, err := setup(cfg, *indexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Semantic search not available: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("FAQ MATCHING BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Entries indexed: %d\n", index.Len())
	fmt.Printf("Model: %s (%s)\n", cfg.Embedding.Model, cfg.Embedding.Provider)
	fmt.Printf("Dimension: %d\n", index.Dimension())
	fmt.Printf("Thresholds: answer >= %.2f, suggest >= %.2f\n", cfg.Match.HighThreshold, cfg.Match.LowThreshold)
	fmt.Println()

	if *query != "" {
		single(ranker, cfg, *query, *topK)
		return
	}
	selfRecall(ranker, index, cfg)
}

// single prints the ranked neighbours of one query.
func single(ranker *retriever.SemanticRetriever, cfg *config.Config, query string, k int) {
	fmt.Printf("Query: \"%s\"\n", query)
	fmt.Println(strings.Repeat("-", 70))

	start := time.Now()
	results, err := ranker.TopK(query, k)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	fmt.Printf("Top %d matches (%s):\n\n", len(results), elapsed.Round(time.Microsecond))
	for i, r := range results {
		fmt.Printf("%d. [%s %.3f] %s\n", i+1, rating(r.Score, cfg), r.Score, r.Question)
		fmt.Printf("   %s\n\n", preview(r.Answer))
	}
}

// selfRecall queries every corpus question and checks it ranks itself first.
func selfRecall(ranker *retriever.SemanticRetriever, index *vectorindex.Index, cfg *config.Config) {
	questions := index.Questions()

	hits, answered := 0, 0
	totalScore := 0.0
	var total time.Duration
	for _, q := range questions {
		start := time.Now()
		results, err := ranker.TopK(q, 1)
		total += time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search error for %q: %v\n", q, err)
			os.Exit(1)
		}
		if len(results) == 0 {
			continue
		}
		totalScore += results[0].Score
		if results[0].Score >= cfg.Match.HighThreshold {
			answered++
		}
		if results[0].Question == q {
			hits++
		} else {
			fmt.Printf("MISS [%.3f] %q -> %q\n", results[0].Score, q, results[0].Question)
		}
	}

	n := len(questions)
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS:\n")
	fmt.Printf("  Self recall@1:      %d/%d (%.1f%%)\n", hits, n, pct(hits, n))
	fmt.Printf("  Answered directly:  %d/%d (%.1f%%)\n", answered, n, pct(answered, n))
	fmt.Printf("  Average top-1:      %.3f\n", totalScore/float64(max(n, 1)))
	fmt.Printf("  Average latency:    %s\n", (total / time.Duration(max(n, 1))).Round(time.Microsecond))

	if hits == n {
		fmt.Println("  Status: GOOD - every question finds itself")
	} else if pct(hits, n) > 90 {
		fmt.Println("  Status: OK - a few questions collide after normalization")
	} else {
		fmt.Println("  Status: POOR - consider a different embedding model")
	}
}

func rating(score float64, cfg *config.Config) string {
	switch {
	case score >= cfg.Match.HighThreshold:
		return "HIGH"
	case score >= cfg.Match.LowThreshold:
		return "GOOD"
	case score > 0:
		return "LOW"
	default:
		return "NONE"
	}
}

func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 150 {
		return s[:150] + "..."
	}
	return s
}

func pct(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return 100 * float64(a) / float64(b)
}

func setup(cfg *config.Config, dir string) (*retriever.SemanticRetriever, *vectorindex.Index, error) {
	st, err := store.NewBoltStore(config.IndexDBPath(dir))
	if err != nil {
		return nil, nil, fmt.Errorf("open index: %w", err)
	}
	defer st.Close()

	reps := make([]analyzer.Replacement, len(cfg.Normalize.Replacements))
	for i, r := range cfg.Normalize.Replacements {
		reps[i] = analyzer.Replacement{From: r.From, To: r.To}
	}
	normalizer := analyzer.NewNormalizer(reps)

	if err := st.CheckCompatible(store.ComputeConfigHash(cfg, normalizer.Fingerprint())); err != nil {
		return nil, nil, err
	}

	questions, answers, embeddings, err := st.LoadAligned()
	if err != nil {
		return nil, nil, fmt.Errorf("load index: %w", err)
	}
	index, err := vectorindex.New(questions, answers, embeddings)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, nil, fmt.Errorf("embedder init failed: %w", err)
	}

	return retriever.NewSemanticRetriever(index, embedder, normalizer), index, nil
}
