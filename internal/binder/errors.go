package binder

import "fmt"

// Kind classifies a bind failure.
type Kind int

const (
	MissingRequiredField Kind = iota + 1
	TypeMismatch
)

func (k Kind) String() string {
	switch k {
	case MissingRequiredField:
		return "missing required field"
	case TypeMismatch:
		return "type mismatch"
	default:
		return "unknown"
	}
}

// BindError aborts a resolution cycle before validation runs.
type BindError struct {
	Kind Kind
	Path string // relative to the section, e.g. "Host.AppName"
	Raw  string // offending raw value, TypeMismatch only
	Err  error  // parse error, TypeMismatch only
}

func (e *BindError) Error() string {
	if e.Kind == TypeMismatch {
		return fmt.Sprintf("bind %s: %s: cannot use %q", e.Path, e.Kind, e.Raw)
	}
	return fmt.Sprintf("bind %s: %s", e.Path, e.Kind)
}

func (e *BindError) Unwrap() error { return e.Err }
