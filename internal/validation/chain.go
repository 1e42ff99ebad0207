// internal/validation/chain.go
//
// Three-stage validation chain.
//
// Context
// -------
// Validate runs, in this order and always to completion:
//
//  1. declarative  – struct tags (see declarative.go).
//  2. cross-field  – Rules spanning several fields of the same value.
//  3. external     – Rules that consult an injected capability, such as an
//     allow-list Checker.
//
// The chain stamps the stage on every FieldError it collects, reports each
// one as an event, and returns them in stage order.  An empty result means
// the value is accepted.
//
// Notes
// -----
//   - A Chain is immutable after construction and safe for concurrent use,
//     provided the capabilities its rules hold are.
package validation

import (
	"errors"
	"fmt"

	"github.com/yanizio/forecast/internal/allowlist"
	"github.com/yanizio/forecast/internal/event"
)

// Rule is a named check over a whole value.
type Rule[T any] struct {
	Name  string
	Check func(T) []FieldError
}

// Chain holds the cross-field and external rules for T.
type Chain[T any] struct {
	cross    []Rule[T]
	external []Rule[T]
}

// NewChain returns a chain with only the declarative stage.
func NewChain[T any]() Chain[T] { return Chain[T]{} }

// WithCrossField returns a copy of c with rules appended to stage 2.
func (c Chain[T]) WithCrossField(rules ...Rule[T]) Chain[T] {
	c.cross = append(append([]Rule[T](nil), c.cross...), rules...)
	return c
}

// WithExternal returns a copy of c with rules appended to stage 3.
func (c Chain[T]) WithExternal(rules ...Rule[T]) Chain[T] {
	c.external = append(append([]Rule[T](nil), c.external...), rules...)
	return c
}

// Validate runs every stage on val.  r may be nil.
func (c Chain[T]) Validate(val T, r event.Reporter) Errors {
	if r == nil {
		r = event.Discard
	}

	var out Errors
	emit := func(stage event.Stage, errs []FieldError) {
		for _, fe := range errs {
			fe.Stage = stage
			out = append(out, fe)
			r.Report(event.Event{Stage: stage, Field: fe.Field, Message: fe.Message})
		}
	}

	emit(event.StageDeclarative, Declarative(val))
	for _, rule := range c.cross {
		emit(event.StageCrossField, rule.Check(val))
	}
	for _, rule := range c.external {
		emit(event.StageExternal, rule.Check(val))
	}
	return out
}

// ErrNilChecker is returned by constructors handed a nil allow-list Checker.
var ErrNilChecker = errors.New("validation: nil allow-list checker")

// AllowListed builds an external rule that rejects the value returned by get
// unless checker allows it.  A nil checker allows nothing.
func AllowListed[T any](field string, get func(T) string, checker allowlist.Checker) Rule[T] {
	return Rule[T]{
		Name: "allow-list:" + field,
		Check: func(val T) []FieldError {
			v := get(val)
			if checker == nil {
				return []FieldError{{Field: field, Message: "no allow-list is configured"}}
			}
			if checker.IsAllowed(v) {
				return nil
			}
			return []FieldError{{Field: field, Message: fmt.Sprintf("address %s is not allowed", v)}}
		},
	}
}
