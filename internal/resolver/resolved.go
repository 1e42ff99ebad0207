package resolver

import (
	"time"

	"github.com/yanizio/forecast/internal/postprocess"
	"github.com/yanizio/forecast/internal/validation"
)

// Status is the terminal state of one resolution cycle.
type Status int

const (
	StatusValidated Status = iota + 1
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusValidated:
		return "validated"
	case StatusRejected:
		return "rejected"
	default:
		return "unresolved"
	}
}

// Resolved is the immutable artifact of one cycle.  It is handed out by
// value, and its accessors return copies.
type Resolved[T any] struct {
	status   Status
	settings T
	errs     validation.Errors
	at       time.Time
}

// Status reports validated or rejected.  The zero Resolved is "unresolved".
func (r Resolved[T]) Status() Status { return r.status }

// Valid reports whether the settings passed every rule.
func (r Resolved[T]) Valid() bool { return r.status == StatusValidated }

// Settings returns a copy of the bound, post-processed value.  For a
// rejected result this is the value that failed validation.
func (r Resolved[T]) Settings() T {
	if c, ok := any(r.settings).(postprocess.Cloner[T]); ok {
		return c.Clone()
	}
	return r.settings
}

// Errors returns a copy of the validation errors, nil when validated.
func (r Resolved[T]) Errors() validation.Errors {
	if len(r.errs) == 0 {
		return nil
	}
	out := make(validation.Errors, len(r.errs))
	copy(out, r.errs)
	return out
}

// Err returns the validation errors as an error, or nil.
func (r Resolved[T]) Err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return r.Errors()
}

// ResolvedAt is when the cycle finished.
func (r Resolved[T]) ResolvedAt() time.Time { return r.at }
