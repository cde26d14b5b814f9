package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestParseCSV(t *testing.T) {
	data := "answer,question,extra\n" +
		"Use the reset page.,How do I reset my password?,x\n" +
		",Blank answer?,x\n" +
		"Orphan answer,  ,x\n" +
		"\"Line one, with comma\",Quoted?,x\n"

	rows, err := ParseCSV(strings.NewReader(data), "faq.csv", "question", "answer")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "How do I reset my password?", rows[0].Question)
	assert.Equal(t, "Use the reset page.", rows[0].Answer)
	assert.Equal(t, "faq.csv", rows[0].Source)
	assert.Equal(t, "Line one, with comma", rows[1].Answer)
}

func TestParseCSV_MissingColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("q,a\nx,y\n"), "f", "question", "answer")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestParseCSV_BOMHeader(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader("\ufeffquestion,answer\nHi?,Hello\n"), "f", "question", "answer")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Hi?", rows[0].Question)
}

func TestParseCSV_Empty(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(""), "f", "question", "answer")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWalker(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data", "b.csv"), "")
	writeFile(t, filepath.Join(root, "data", "a.csv"), "")
	writeFile(t, filepath.Join(root, "data", "nested", "c.csv"), "")
	writeFile(t, filepath.Join(root, "data", "notes.txt"), "")
	writeFile(t, filepath.Join(root, ".faqbot", "old.csv"), "")

	w := NewWalker([]string{"**/*.csv"}, []string{"**/.faqbot/**"})
	files, err := w.Walk(root)
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"data/a.csv", "data/b.csv", "data/nested/c.csv"}, rel)
}

func TestSource_Load(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data", "1.csv"), "question,answer\nFirst?,One\nSecond?,Two\n")
	writeFile(t, filepath.Join(root, "data", "2.csv"), "question,answer\nThird?,Three\n")

	src := NewSource(NewWalker([]string{"data/*.csv"}, nil), "question", "answer")
	rows, err := src.Load(root)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "First?", rows[0].Question)
	assert.Equal(t, "Third?", rows[2].Question)
}

func TestSource_NoFiles(t *testing.T) {
	src := NewSource(NewWalker([]string{"*.csv"}, nil), "question", "answer")
	_, err := src.Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNoFiles)
}
