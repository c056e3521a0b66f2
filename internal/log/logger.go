// Package log provides the append-only event journal.
// Events are written as JSON lines to .memoria/log.jsonl.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event type constants.
const (
	EventSessionCreated   = "session_created"
	EventCheckpointSaved  = "checkpoint_saved"
	EventSessionCompleted = "session_completed"
	EventSessionDeleted   = "session_deleted"
	EventIndexRebuilt     = "index_rebuilt"
	EventSessionsPruned   = "sessions_pruned"
)

// LogEvent represents a single structured event written to the journal.
type LogEvent struct {
	Time       time.Time `json:"time"`
	Event      string    `json:"event"`
	SessionID  string    `json:"session,omitempty"`
	Title      string    `json:"title,omitempty"`
	Checkpoint int       `json:"checkpoint,omitempty"`
	Status     string    `json:"status,omitempty"`
	Total      int       `json:"total,omitempty"`
	RunID      string    `json:"run,omitempty"`
}

// Logger writes append-only JSONL events to a journal file.
type Logger struct {
	path  string
	runID string
	mu    sync.Mutex
}

// NewLogger creates a Logger that writes to <storeDir>/log.jsonl.
// It does not create storeDir: appending to an uninitialized store fails
// rather than conjuring a half-built .memoria/ directory.
func NewLogger(storeDir string) *Logger {
	return &Logger{
		path:  filepath.Join(storeDir, "log.jsonl"),
		runID: uuid.NewString(),
	}
}

// Path returns the journal file path.
func (l *Logger) Path() string {
	return l.path
}

// RunID returns the correlation id stamped on every event from this Logger.
func (l *Logger) RunID() string {
	return l.runID
}

// Append writes a single LogEvent as one JSON line.
// A zero event.Time is set to time.Now().UTC(); RunID is always stamped.
// Thread-safe via mutex.
func (l *Logger) Append(event LogEvent) error {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	event.RunID = l.runID

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal log event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write log event: %w", err)
	}
	return nil
}

// ReadAll reads and parses all events from the journal.
// Returns an empty slice (not an error) if the file does not exist.
func (l *Logger) ReadAll() ([]LogEvent, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []LogEvent{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var events []LogEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event LogEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse log line %d: %w", lineNum, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	return events, nil
}
