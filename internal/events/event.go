// Package events carries the structured records the catalog store emits for
// every public operation, and the sinks that consume them.
//
// Emission is fire-and-forget: a sink that fails or panics never changes the
// result of the store operation that produced the event.
package events

import (
	"time"
)

// Operation names a catalog store operation.
type Operation string

const (
	OpListAll    Operation = "list_all"
	OpFindByCode Operation = "find_by_code"
	OpAppend     Operation = "append"
)

// Outcome classifies how an operation ended.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeCorrupt   Outcome = "corrupt"
	OutcomeIOError   Outcome = "io_error"
	OutcomeCanceled  Outcome = "canceled"
)

// Event describes one completed store operation.
type Event struct {
	Operation Operation     `json:"operation"`
	Code      string        `json:"code,omitempty"`
	Outcome   Outcome       `json:"outcome"`
	Duration  time.Duration `json:"duration_ns"`
	At        time.Time     `json:"at"`
}

// Name is the event name published to subscribers, e.g. "course.append".
func (e Event) Name() string {
	return "course." + string(e.Operation)
}

// Failed reports whether the outcome represents a storage failure.
func (e Event) Failed() bool {
	return e.Outcome == OutcomeCorrupt || e.Outcome == OutcomeIOError
}

// Sink receives store events. Implementations must not block for long.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

// Multi fans an event out to several sinks. A panic in one sink is recovered
// so the remaining sinks still receive the event.
type Multi []Sink

// Emit delivers e to every non-nil sink.
func (m Multi) Emit(e Event) {
	for _, s := range m {
		if s == nil {
			continue
		}
		SafeEmit(s, e)
	}
}

// SafeEmit delivers e to s and swallows any panic raised by the sink.
func SafeEmit(s Sink, e Event) {
	defer func() { _ = recover() }()
	s.Emit(e)
}
