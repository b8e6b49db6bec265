package audit

import (
	"context"
	"fmt"
	"os"
	"sync"

	"sentinel/core"
	"sentinel/sink"
)

// FileEmitter appends one compact JSON line per event to a log file. It
// implements sink.Sink so the auditor and any routing tree can target it.
type FileEmitter struct {
	path string
	mu   sync.Mutex
}

// NewFileEmitter creates a JSONL emitter writing to path. The file is
// created on first emission.
func NewFileEmitter(path string) *FileEmitter {
	return &FileEmitter{path: path}
}

// Path returns the log file destination.
func (f *FileEmitter) Path() string {
	return f.path
}

// Deliver appends the event's wire form as one line. The mutex keeps
// concurrent writers from interleaving partial lines.
func (f *FileEmitter) Deliver(_ context.Context, event *core.Event) (sink.Outcome, error) {
	body, err := event.MarshalJSON()
	if err != nil {
		return sink.OutcomeDelivered, fmt.Errorf("failed to marshal audit event: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return sink.OutcomeDelivered, fmt.Errorf("failed to open audit log %s: %w", f.path, err)
	}
	defer file.Close()

	if _, err := file.Write(append(body, '\n')); err != nil {
		return sink.OutcomeDelivered, fmt.Errorf("failed to append audit event: %w", err)
	}
	return sink.OutcomeDelivered, nil
}
