package telemetry

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// Phase represents a lifecycle step of a build invocation.
type Phase string

const (
	PhaseResolve   Phase = "resolve"
	PhaseFinalize  Phase = "finalize"
	PhaseConfigure Phase = "configure"
	PhaseBuild     Phase = "build"
	PhaseInstall   Phase = "install"
)

// Event captures structured phase telemetry emitted by the CLI.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Phase     Phase             `json:"phase"`
	Outcome   string            `json:"outcome"`
	Duration  time.Duration     `json:"duration,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Emitter writes JSON phase events and owns the structured logger sharing the same writer.
type Emitter struct {
	mu      sync.Mutex
	encoder *json.Encoder
	logger  *Logger
}

// NewEmitter constructs an emitter writing JSON lines to w.
func NewEmitter(w io.Writer) (*Emitter, error) {
	if w == nil {
		return nil, errors.New("emitter writer is required")
	}
	logger, err := NewLogger(w, NewWorkflowID())
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Emitter{encoder: enc, logger: logger}, nil
}

// StructuredLogger returns the logger bound to this emitter.
func (e *Emitter) StructuredLogger() *Logger {
	if e == nil {
		return nil
	}
	return e.logger
}

// Emit writes an event to the underlying writer. Events are dropped while the logger is quiet.
func (e *Emitter) Emit(ev Event) error {
	if e.logger.Quiet() {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if ev.Metadata == nil {
		ev.Metadata = map[string]string{}
	}
	return e.encoder.Encode(ev)
}

// EmitPhase publishes start and completion events while executing fn.
func (e *Emitter) EmitPhase(phase Phase, metadata map[string]string, fn func() error) error {
	start := time.Now()
	if err := e.Emit(Event{Phase: phase, Outcome: "start", Metadata: metadata}); err != nil {
		return fmt.Errorf("emit start event: %w", err)
	}

	err := fn()
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	if emitErr := e.Emit(Event{Phase: phase, Outcome: outcome, Duration: time.Since(start), Metadata: metadata}); emitErr != nil {
		return fmt.Errorf("emit completion event: %w", emitErr)
	}

	return err
}

// NewWorkflowID returns a random identifier for one CLI run.
func NewWorkflowID() string {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("wf-%d", time.Now().UnixNano())
	}
	return "wf-" + hex.EncodeToString(buf[:])
}
