package logger

import (
	"go.uber.org/zap"

	"github.com/yanizio/forecast/internal/event"
)

// EventReporter forwards pipeline events to zap.  Post-process steps log at
// DEBUG, validation failures at WARN, and source or bind failures at ERROR.
type EventReporter struct {
	log *zap.SugaredLogger
}

// NewEventReporter wraps log.  A nil log uses the global logger at call time.
func NewEventReporter(log *zap.SugaredLogger) *EventReporter {
	return &EventReporter{log: log}
}

// Report implements event.Reporter.
func (r *EventReporter) Report(e event.Event) {
	log := r.log
	if log == nil {
		log = zap.S()
	}
	kv := []any{"stage", string(e.Stage), "field", e.Field, "detail", e.Message}

	switch e.Stage {
	case event.StagePostProcess:
		log.Debugw("settings mutated", kv...)
	case event.StageSource, event.StageBind:
		log.Errorw("settings cycle aborted", kv...)
	default:
		log.Warnw("settings rule failed", kv...)
	}
}
