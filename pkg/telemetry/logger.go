package telemetry

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"
)

// StructuredLogger emits structured log entries.
type StructuredLogger interface {
	Emit(Entry) error
}

// Severity represents the log severity level.
type Severity string

const (
	// SeverityInfo captures normal operation messages.
	SeverityInfo Severity = "info"
	// SeverityWarn captures recoverable anomalies such as repeated or deprecated options.
	SeverityWarn Severity = "warn"
	// SeverityError captures unrecoverable or failure states.
	SeverityError Severity = "error"
)

// Category captures the structured log category.
type Category string

const (
	// CategoryWorkflow marks high-level workflow events.
	CategoryWorkflow Category = "workflow"
	// CategoryCommand marks build-driver command events.
	CategoryCommand Category = "command"
	// CategoryOption marks command-line option resolution events.
	CategoryOption Category = "option"
	// CategoryConfig marks declarative configuration events.
	CategoryConfig Category = "config"
)

// Entry describes a structured log entry prior to serialization.
type Entry struct {
	Category      Category
	Message       string
	Severity      Severity
	Step          string
	Option        string
	Command       string
	StderrExcerpt string
	Metadata      map[string]string
	Error         error
}

// Logger emits structured JSON logs.
type Logger struct {
	enc        *json.Encoder
	workflowID string
	quiet      bool
	mu         sync.Mutex
}

// NewLogger constructs a logger for a workflow.
func NewLogger(w io.Writer, workflowID string) (*Logger, error) {
	if w == nil {
		return nil, errors.New("logger writer is required")
	}
	trimmed := strings.TrimSpace(workflowID)
	if trimmed == "" {
		return nil, errors.New("workflow ID is required")
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Logger{enc: enc, workflowID: trimmed}, nil
}

// SetQuiet drops info entries while keeping warnings and errors.
func (l *Logger) SetQuiet(quiet bool) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.quiet = quiet
	l.mu.Unlock()
}

// Quiet reports whether info entries are dropped.
func (l *Logger) Quiet() bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.quiet
}

// WorkflowID returns the identifier stamped on every entry.
func (l *Logger) WorkflowID() string {
	if l == nil {
		return ""
	}
	return l.workflowID
}

// Emit writes the provided entry to the underlying writer.
func (l *Logger) Emit(entry Entry) error {
	if l == nil {
		return errors.New("logger is nil")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	severity := entry.Severity
	if severity == "" {
		severity = SeverityInfo
	}

	metadata := map[string]string{}
	for k, v := range entry.Metadata {
		metadata[k] = v
	}

	if entry.Error != nil {
		severity = SeverityError
		metadata["error"] = entry.Error.Error()
	}

	if l.quiet && severity == SeverityInfo {
		return nil
	}

	payload := map[string]any{
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"category":   string(entry.Category),
		"message":    entry.Message,
		"severity":   string(severity),
		"workflowId": l.workflowID,
	}

	if entry.Step != "" {
		payload["step"] = entry.Step
	}
	if entry.Option != "" {
		payload["option"] = entry.Option
	}
	if entry.Command != "" {
		payload["command"] = entry.Command
	}
	if entry.StderrExcerpt != "" {
		payload["stderrExcerpt"] = entry.StderrExcerpt
	}
	if len(metadata) > 0 {
		payload["metadata"] = metadata
	}

	return l.enc.Encode(payload)
}

// Recorder keeps entries in memory. Commands use it before the real logger exists and tests use it
// to assert on emitted warnings.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Emit stores the entry.
func (r *Recorder) Emit(entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// Entries returns a copy of the recorded entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Count returns how many recorded entries match the category and severity.
func (r *Recorder) Count(category Category, severity Severity) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Category == category && e.Severity == severity {
			n++
		}
	}
	return n
}

// Replay forwards the recorded entries to another logger in order.
func (r *Recorder) Replay(to StructuredLogger) error {
	if to == nil {
		return nil
	}
	for _, e := range r.Entries() {
		if err := to.Emit(e); err != nil {
			return err
		}
	}
	return nil
}
