package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveRootDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		dir      string
		expected string
	}{
		{"empty uses working directory", "", wd},
		{"relative", "faq", filepath.Join(wd, "faq")},
		{"relative with dots", "./a/../b", filepath.Join(wd, "b")},
		{"absolute", "/srv/faq", "/srv/faq"},
	}

	for _, tt := range tests {
		got, err := resolveRootDir(tt.dir)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("%s: resolveRootDir(%q) = %q, want %q", tt.name, tt.dir, got, tt.expected)
		}
		if !filepath.IsAbs(got) {
			t.Errorf("%s: expected absolute path, got %q", tt.name, got)
		}
	}
}

func TestResolvePath_UsesRootDir(t *testing.T) {
	old := rootDir
	t.Cleanup(func() { rootDir = old })
	rootDir = "/srv/faq"

	if got := resolvePath("chat_log.csv"); got != filepath.Join("/srv/faq", "chat_log.csv") {
		t.Errorf("unexpected path %q", got)
	}
	if got := resolvePath("/var/log/chat.csv"); got != "/var/log/chat.csv" {
		t.Errorf("absolute path changed: %q", got)
	}
}
