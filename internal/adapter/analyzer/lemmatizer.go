package analyzer

import (
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// LemmatizerVersion changes whenever lemmas may differ for the same input.
const LemmatizerVersion = "golem-en-v4"

// englishDictionary is loaded once per process; the dictionary is embedded,
// so a load failure is a build defect.
var englishDictionary = sync.OnceValue(func() *golem.Lemmatizer {
	l, err := golem.New(en.New())
	if err != nil {
		panic("analyzer: load english dictionary: " + err.Error())
	}
	return l
})

// Lemmatizer reduces English words to their dictionary base form. Words
// the dictionary does not know fall back to plural suffix rules, and a
// candidate is only accepted when the dictionary knows it.
type Lemmatizer struct {
	dict      *golem.Lemmatizer
	stopwords map[string]struct{}
	invariant map[string]struct{}
}

// NewLemmatizer creates a lemmatizer that never produces a stopword.
func NewLemmatizer(stopwords map[string]struct{}) *Lemmatizer {
	invariant := make(map[string]struct{}, len(invariantWords))
	for _, w := range invariantWords {
		invariant[w] = struct{}{}
	}
	return &Lemmatizer{
		dict:      englishDictionary(),
		stopwords: stopwords,
		invariant: invariant,
	}
}

// Placeholders and domain words that are already base forms.
var invariantWords = []string{
	strings.TrimSpace(urlToken), strings.TrimSpace(numberToken),
	"mits", "ims", "moodle", "news", "series", "species",
}

// Lemma returns the base form of a lowercase word. The result is a fixed
// point: Lemma(Lemma(w)) == Lemma(w).
func (l *Lemmatizer) Lemma(word string) string {
	seen := []string{word}
	cur := word
	for {
		next := l.step(cur)
		if next == cur {
			return cur
		}
		for i, s := range seen {
			if s == next {
				return minOf(seen[i:])
			}
		}
		seen = append(seen, next)
		cur = next
	}
}

// step performs a single lookup.
func (l *Lemmatizer) step(word string) string {
	if len(word) <= 3 {
		return word
	}
	if _, ok := l.invariant[word]; ok {
		return word
	}

	var lemma string
	if l.dict.InDict(word) {
		lemma = l.dict.Lemma(word)
	} else {
		lemma = word
		if cand := detachSuffix(word); cand != word && l.dict.InDict(cand) {
			lemma = l.dict.Lemma(cand)
		}
	}

	if !isLowerAlpha(lemma) {
		return word
	}
	if _, stop := l.stopwords[lemma]; stop {
		return word
	}
	return lemma
}

// detachSuffix applies the first matching plural rule.
func detachSuffix(word string) string {
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "sses"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ches"), strings.HasSuffix(word, "shes"),
		strings.HasSuffix(word, "xes"), strings.HasSuffix(word, "zzes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ss"), strings.HasSuffix(word, "us"),
		strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}
	return word
}

func isLowerAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

func minOf(words []string) string {
	m := words[0]
	for _, w := range words[1:] {
		if w < m {
			m = w
		}
	}
	return m
}
