// internal/postprocess/postprocess.go
//
// Ordered, infallible mutation steps applied after binding.
//
// Context
// -------
// A Pipeline is a fixed list of Steps.  Apply runs them in registration
// order, each seeing the previous step's output.  Steps work on values, not
// pointers; when T implements Cloner every step also receives a deep copy,
// so slices or maps inside T are never aliased across steps.
//
// Steps never fail.  Anything that can reject a value belongs in the
// validation chain.
//
// Re-applying a pipeline to its own output applies every step again.  An
// "append suffix" step run twice appends twice.  The resolver never does
// this: each cycle binds a fresh value from the sources first.
package postprocess

import (
	"fmt"

	"github.com/yanizio/forecast/internal/event"
)

// Cloner is implemented by settings types that hold reference fields.
type Cloner[T any] interface {
	Clone() T
}

// Step is one named transformation.  Field is the path it mutates, used
// only for reporting.
type Step[T any] struct {
	Name  string
	Field string
	Apply func(T) T
}

// Pipeline is an immutable ordered list of steps.
type Pipeline[T any] struct {
	steps []Step[T]
}

// New returns a pipeline running steps in the given order.
func New[T any](steps ...Step[T]) Pipeline[T] {
	s := make([]Step[T], len(steps))
	copy(s, steps)
	return Pipeline[T]{steps: s}
}

// Then returns a new pipeline with step appended.  The receiver is unchanged.
func (p Pipeline[T]) Then(step Step[T]) Pipeline[T] {
	s := make([]Step[T], 0, len(p.steps)+1)
	s = append(s, p.steps...)
	s = append(s, step)
	return Pipeline[T]{steps: s}
}

// Len reports the number of steps.
func (p Pipeline[T]) Len() int { return len(p.steps) }

// Apply runs every step on v and returns the final value.  r may be nil.
func (p Pipeline[T]) Apply(v T, r event.Reporter) T {
	if r == nil {
		r = event.Discard
	}
	for _, st := range p.steps {
		v = st.Apply(clone(v))
		r.Report(event.Event{
			Stage:   event.StagePostProcess,
			Field:   st.Field,
			Message: fmt.Sprintf("applied step %q", st.Name),
		})
	}
	return v
}

func clone[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}
