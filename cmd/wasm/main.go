//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"strings"
	"syscall/js"
	"time"

	"faqbot/config"
	"faqbot/internal/adapter/analyzer"
	"faqbot/internal/adapter/corpus"
	"faqbot/internal/adapter/embedding"
	"faqbot/internal/adapter/memstore"
	"faqbot/internal/adapter/retriever"
	"faqbot/internal/adapter/rules"
	"faqbot/internal/adapter/vectorindex"
	"faqbot/internal/usecase"
)

const browserSession = "browser"

var (
	normalizer *analyzer.Normalizer
	embedder   *embedding.HashingEmbedder
	index      *vectorindex.Index
	chat       *usecase.ChatService
)

func init() {
	cfg := config.DefaultConfig()
	reps := make([]analyzer.Replacement, len(cfg.Normalize.Replacements))
	for i, r := range cfg.Normalize.Replacements {
		reps[i] = analyzer.Replacement{From: r.From, To: r.To}
	}
	normalizer = analyzer.NewNormalizer(reps)
	embedder = embedding.NewHashingEmbedder(cfg.Embedding.Dimension)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("faqLoad", js.FuncOf(loadCorpus))
	js.Global().Set("faqAsk", js.FuncOf(ask))
	js.Global().Set("faqStats", js.FuncOf(getStats))

	<-c
}

// loadCorpus replaces the corpus with the rows of a question,answer CSV.
func loadCorpus(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: faqLoad(csvText)")
	}

	rows, err := corpus.ParseCSV(strings.NewReader(args[0].String()), "browser", "question", "answer")
	if err != nil {
		return makeError("parse failed: " + err.Error())
	}
	if len(rows) == 0 {
		return makeError("corpus has no question/answer rows")
	}

	questions := make([]string, len(rows))
	answers := make([]string, len(rows))
	texts := make([]string, len(rows))
	for i, r := range rows {
		questions[i] = r.Question
		answers[i] = r.Answer
		texts[i] = normalizer.Normalize(r.Question)
	}

	vectors, err := embedder.Embed(texts)
	if err != nil {
		return makeError("embedding failed: " + err.Error())
	}

	idx, err := vectorindex.New(questions, answers, vectors)
	if err != nil {
		return makeError("index failed: " + err.Error())
	}

	index = idx
	matcher := usecase.NewMatchEngine(rules.NewEvaluator(), retriever.NewSemanticRetriever(idx, embedder, normalizer))
	chat = usecase.NewChatService(matcher, memstore.NewMemoryStore(3, 1, time.Hour), idx)

	return makeResult(map[string]interface{}{
		"success": true,
		"entries": idx.Len(),
	})
}

func ask(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: faqAsk(query)")
	}
	if chat == nil {
		return makeError("no corpus loaded, call faqLoad first")
	}

	reply, err := chat.Handle(context.Background(), browserSession, args[0].String())
	if err != nil {
		return makeError("answer failed: " + err.Error())
	}

	data, _ := json.Marshal(reply)
	return string(data)
}

func getStats(this js.Value, args []js.Value) interface{} {
	entries, dim := 0, 0
	if index != nil {
		entries, dim = index.Len(), index.Dimension()
	}
	return makeResult(map[string]interface{}{
		"entries":   entries,
		"dimension": dim,
		"model":     embedder.ModelName(),
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
