package analyzer

import (
	"testing"
)

func TestLemmatizer_Lemma(t *testing.T) {
	l := NewLemmatizer(defaultStopwords())

	tests := []struct {
		word     string
		expected string
	}{
		{"passwords", "password"},
		{"cities", "city"},
		{"classes", "class"},
		{"matches", "match"},
		{"boxes", "box"},
		{"movies", "movie"},
		{"accounts", "account"},
		{"children", "child"},
		{"class", "class"},
		{"password", "password"},
		{"mits", "mits"},
		{"ims", "ims"},
		{"moodle", "moodle"},
		{"url", "url"},
		{"number", "number"},
		{"cats", "cat"},
	}

	for _, tt := range tests {
		got := l.Lemma(tt.word)
		if got != tt.expected {
			t.Errorf("Lemma(%q) = %q, want %q", tt.word, got, tt.expected)
		}
	}
}

func TestLemmatizer_Idempotent(t *testing.T) {
	l := NewLemmatizer(defaultStopwords())

	words := []string{
		"passwords", "cities", "classes", "matches", "boxes", "buzzes",
		"buses", "caches", "movies", "children", "analyses", "indices",
		"status", "campus", "ties", "registrations", "emails",
		"mens", "peoples", "childrens", "womens", "leaves", "lives",
		"received", "better", "moodles", "xyzzies",
	}

	for _, w := range words {
		once := l.Lemma(w)
		if twice := l.Lemma(once); twice != once {
			t.Errorf("Lemma not idempotent for %q: %q then %q", w, once, twice)
		}
	}
}

func TestLemmatizer_NeverReturnsStopword(t *testing.T) {
	stop := defaultStopwords()
	l := NewLemmatizer(stop)

	for _, w := range []string{"wills", "cans", "dos", "mights", "shoulds"} {
		got := l.Lemma(w)
		if _, ok := stop[got]; ok {
			t.Errorf("Lemma(%q) = %q, a stopword", w, got)
		}
	}
}

func TestLemmatizer_UnknownWordKept(t *testing.T) {
	l := NewLemmatizer(defaultStopwords())

	if got := l.Lemma("qwzxv"); got != "qwzxv" {
		t.Errorf("expected unknown word kept, got %q", got)
	}
}

func TestMinOf(t *testing.T) {
	if got := minOf([]string{"men", "man", "mens"}); got != "man" {
		t.Errorf("minOf = %q, want %q", got, "man")
	}
}
