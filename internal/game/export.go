package game

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Exporter appends a readable summary of every finished puzzle to a text
// file.
type Exporter struct {
	File string
	mu   sync.Mutex
}

func NewExporter(file string) *Exporter {
	return &Exporter{File: file}
}

func (e *Exporter) Record(ctx context.Context, r Result) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	dir := filepath.Dir(e.File)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.OpenFile(e.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(formatResult(r)); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}

func formatResult(r Result) string {
	var sb strings.Builder
	outcome := "Lost"
	if r.Status == StatusWon {
		outcome = "Won"
	}
	sb.WriteString(fmt.Sprintf("Game %s: %s\n", r.GameID, outcome))
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString(fmt.Sprintf("Word: %s\n", r.Word))
	sb.WriteString(fmt.Sprintf("Attempts: %d/%d\n", r.Attempts, MaxAttempts))
	sb.WriteString(fmt.Sprintf("Clues revealed: %d\n", r.CluesRevealed))
	sb.WriteString(fmt.Sprintf("Started: %s\n", r.StartedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Finished: %s\n\n", r.FinishedAt.Format("2006-01-02 15:04:05")))
	return sb.String()
}
