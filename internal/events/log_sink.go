package events

import (
	"github.com/rs/zerolog"
)

// LogSink writes every event as a structured log line.
// Reads log at debug, writes at info and failures at warn.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "catalog_events").Logger()}
}

// Emit implements Sink.
func (s *LogSink) Emit(e Event) {
	var ev *zerolog.Event
	switch {
	case e.Failed():
		ev = s.log.Warn()
	case e.Operation == OpAppend:
		ev = s.log.Info()
	default:
		ev = s.log.Debug()
	}

	ev = ev.Str("event", e.Name()).
		Str("operation", string(e.Operation)).
		Str("outcome", string(e.Outcome)).
		Dur("duration", e.Duration)
	if e.Code != "" {
		ev = ev.Str("code", e.Code)
	}
	ev.Msg("Catalog operation")
}
