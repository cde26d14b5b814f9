package analyzer

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	urlPattern      = regexp.MustCompile(`http\S+|www\S+|https\S+`)
	digitPattern    = regexp.MustCompile(`\d+`)
	nonAlphaPattern = regexp.MustCompile(`[^a-z\s]`)
)

const (
	urlToken    = " url "
	numberToken = " number "
)

// Replacement is a literal substring rewrite applied to normalized text.
type Replacement struct {
	From string
	To   string
}

// Normalizer canonicalizes FAQ questions and user queries. It is safe for
// concurrent use.
type Normalizer struct {
	stopwords    map[string]struct{}
	lemmatizer   *Lemmatizer
	replacements []Replacement
}

// NewNormalizer creates a normalizer applying replacements in order.
func NewNormalizer(replacements []Replacement) *Normalizer {
	reps := make([]Replacement, len(replacements))
	copy(reps, replacements)
	stopwords := defaultStopwords()
	return &Normalizer{
		stopwords:    stopwords,
		lemmatizer:   NewLemmatizer(stopwords),
		replacements: reps,
	}
}

// Normalize runs the full pipeline: lowercase, URL and number placeholders,
// punctuation removal, whitespace collapse, stopword removal,
// lemmatization and domain replacements.
func (n *Normalizer) Normalize(text string) string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, urlToken)
	text = digitPattern.ReplaceAllString(text, numberToken)
	text = nonAlphaPattern.ReplaceAllString(text, " ")

	words := strings.Fields(text)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if n.isStopword(w) {
			continue
		}
		kept = append(kept, n.lemmatizer.Lemma(w))
	}

	text = strings.Join(kept, " ")
	for _, r := range n.replacements {
		text = strings.ReplaceAll(text, r.From, r.To)
	}
	return text
}

// NormalizeAny normalizes strings and maps every other value to "".
func (n *Normalizer) NormalizeAny(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return n.Normalize(s)
}

// Fingerprint identifies the normalization settings. Two normalizers with
// the same fingerprint produce identical output.
func (n *Normalizer) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(LemmatizerVersion + "\x00"))
	for _, r := range n.replacements {
		h.Write([]byte(r.From))
		h.Write([]byte{0})
		h.Write([]byte(r.To))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}

func (n *Normalizer) isStopword(w string) bool {
	_, ok := n.stopwords[w]
	return ok
}
