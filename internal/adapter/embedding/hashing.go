package embedding

import (
	"hash/fnv"

	"faqbot/internal/adapter/analyzer"
)

const (
	unigramWeight = 1.0
	bigramWeight  = 0.5
	trigramWeight = 0.3
)

// HashingEmbedder maps normalized text to a fixed-size vector by feature
// hashing word unigrams, word bigrams and character trigrams. It needs no
// model download and is fully deterministic.
type HashingEmbedder struct {
	dimension int
	tokenizer *analyzer.Tokenizer
}

func NewHashingEmbedder(dimension int) *HashingEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &HashingEmbedder{
		dimension: dimension,
		tokenizer: analyzer.NewTokenizer(1),
	}
}

func (e *HashingEmbedder) Embed(texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.embedOne(text)
	}
	return embeddings, nil
}

func (e *HashingEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dimension)
	tokens := e.tokenizer.Tokenize(text)

	for _, tok := range tokens {
		e.add(vec, "w:"+tok, unigramWeight)
		for _, tri := range charTrigrams(tok) {
			e.add(vec, "c:"+tri, trigramWeight)
		}
	}
	for _, gram := range e.tokenizer.Bigrams(tokens) {
		e.add(vec, "b:"+gram, bigramWeight)
	}
	return vec
}

// add uses the low bits of an FNV-1a hash for the bucket and the top bit
// for the sign, so colliding features tend to cancel rather than pile up.
func (e *HashingEmbedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	idx := int(sum % uint64(e.dimension))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

func charTrigrams(word string) []string {
	padded := []rune("^" + word + "$")
	if len(padded) < 3 {
		return nil
	}
	grams := make([]string, 0, len(padded)-2)
	for i := 0; i+3 <= len(padded); i++ {
		grams = append(grams, string(padded[i:i+3]))
	}
	return grams
}

func (e *HashingEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashingEmbedder) ModelName() string {
	return "hashing-v1"
}
