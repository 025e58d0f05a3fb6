package manifest

import (
	"time"

	"github.com/forgelight/quorum/pkg/models"
)

// Trace statuses.
const (
	// StatusStarted marks a phase whose handler was entered.
	StatusStarted = "started"
	// StatusCompleted marks a phase whose results were persisted.
	StatusCompleted = "completed"
)

// TraceEvent is one entry in a manifest execution trace.
type TraceEvent struct {
	// Phase is the phase the event refers to.
	Phase models.Phase `json:"phase"`
	// Status is "started" or "completed".
	Status string `json:"status"`
	// Timestamp is when the event was appended.
	Timestamp time.Time `json:"timestamp"`
}

// Trace is the live execution record of a manifest-gated cycle. It is
// append-only: past entries are never mutated. An abandoned phase
// shows as started but never completed; re-entering it appends a new
// started event.
type Trace struct {
	events []TraceEvent
}

// NewTrace creates an empty execution trace.
func NewTrace() *Trace {
	return &Trace{}
}

// MarkStarted appends a started event for the phase.
func (t *Trace) MarkStarted(phase models.Phase) {
	t.append(phase, StatusStarted)
}

// MarkCompleted appends a completed event for the phase.
func (t *Trace) MarkCompleted(phase models.Phase) {
	t.append(phase, StatusCompleted)
}

func (t *Trace) append(phase models.Phase, status string) {
	t.events = append(t.events, TraceEvent{
		Phase:     phase,
		Status:    status,
		Timestamp: time.Now().UTC(),
	})
}

// Started reports whether the phase has ever been started.
func (t *Trace) Started(phase models.Phase) bool {
	return t.has(phase, StatusStarted)
}

// Completed reports whether the phase has ever completed.
func (t *Trace) Completed(phase models.Phase) bool {
	return t.has(phase, StatusCompleted)
}

func (t *Trace) has(phase models.Phase, status string) bool {
	for _, e := range t.events {
		if e.Phase == phase && e.Status == status {
			return true
		}
	}
	return false
}

// Events returns a copy of the trace in append order.
func (t *Trace) Events() []TraceEvent {
	out := make([]TraceEvent, len(t.events))
	copy(out, t.events)
	return out
}
