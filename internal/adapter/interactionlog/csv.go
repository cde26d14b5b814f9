package interactionlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"faqbot/internal/domain"
)

var header = []string{"time", "session_id", "user_query", "answer", "confidence"}

// CSVLogger appends one row per resolved query. The header is written
// only when the file is created.
type CSVLogger struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

func NewCSVLogger(path string) (*CSVLogger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open interaction log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	l := &CSVLogger{file: f, w: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := l.write(header); err != nil {
			f.Close()
			return nil, err
		}
	}
	return l, nil
}

func (l *CSVLogger) Log(rec domain.Interaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write([]string{
		rec.Time.UTC().Format(time.RFC3339),
		rec.SessionID,
		rec.Query,
		rec.Answer,
		strconv.FormatFloat(rec.Confidence, 'f', 4, 64),
	})
}

func (l *CSVLogger) write(row []string) error {
	if err := l.w.Write(row); err != nil {
		return fmt.Errorf("failed to write interaction: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("failed to write interaction: %w", err)
	}
	return nil
}

func (l *CSVLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Nop discards every record.
type Nop struct{}

func (Nop) Log(domain.Interaction) error { return nil }
