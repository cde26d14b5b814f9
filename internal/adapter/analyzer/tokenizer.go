package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer splits normalized text into word tokens and word n-grams.
type Tokenizer struct {
	minLen int
}

// NewTokenizer creates a new Tokenizer that drops tokens shorter than minLen.
func NewTokenizer(minLen int) *Tokenizer {
	if minLen < 1 {
		minLen = 1
	}
	return &Tokenizer{minLen: minLen}
}

// Tokenize splits text into lowercase word tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(word)
		if len(word) < t.minLen {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// Bigrams joins adjacent tokens with a space.
func (t *Tokenizer) Bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	grams := make([]string, 0, len(tokens)-1)
	for i := 0; i+1 < len(tokens); i++ {
		grams = append(grams, tokens[i]+" "+tokens[i+1])
	}
	return grams
}

// splitWords splits text into words using unicode word boundaries.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}
