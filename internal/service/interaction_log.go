package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bankborjam/sebastian/internal/domain"
)

// InteractionEntry is one append-only analytics record per request.
type InteractionEntry struct {
	Timestamp        time.Time        `json:"timestamp"`
	SessionID        string           `json:"session_id"`
	Question         string           `json:"question"`
	Answer           string           `json:"answer"`
	SourcesCount     int              `json:"sources_count"`
	Confidence       float64          `json:"confidence"`
	ProcessingTimeMs float64          `json:"processing_time_ms"`
	ModelInfo        domain.ModelInfo `json:"model_info"`
}

// InteractionLogger appends newline-delimited JSON records to a log file.
// Each append is a single write of one complete record under the mutex, so
// concurrent requests never interleave records. Failures are the caller's
// to warn about; they must never fail the user-facing request.
type InteractionLogger struct {
	path string
	mu   sync.Mutex
}

func NewInteractionLogger(path string) *InteractionLogger {
	return &InteractionLogger{path: path}
}

func (l *InteractionLogger) Log(entry InteractionEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal interaction entry: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open interaction log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to append interaction entry: %w", err)
	}
	return nil
}
