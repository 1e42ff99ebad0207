package validation

import (
	"fmt"
	"strings"

	"github.com/yanizio/forecast/internal/event"
)

// FieldError is one failed rule.  Field is the operator-facing path, e.g.
// "SmtpIp" or "Host.AppName"; it is empty for object-level failures.
type FieldError struct {
	Stage   event.Stage
	Field   string
	Message string
}

func (fe FieldError) String() string {
	if fe.Field == "" {
		return fmt.Sprintf("[%s] %s", fe.Stage, fe.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", fe.Stage, fe.Field, fe.Message)
}

// Errors is the ordered result of a chain run.  Stage order is preserved.
type Errors []FieldError

// Error renders an itemized report, one failure per line.
func (es Errors) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "settings validation failed with %d error(s)", len(es))
	for _, fe := range es {
		b.WriteString("\n  - ")
		b.WriteString(fe.String())
	}
	return b.String()
}

// Fields returns the field paths in order, duplicates included.
func (es Errors) Fields() []string {
	out := make([]string, len(es))
	for i, fe := range es {
		out[i] = fe.Field
	}
	return out
}

// Has reports whether any error was recorded for field in stage.
func (es Errors) Has(stage event.Stage, field string) bool {
	for _, fe := range es {
		if fe.Stage == stage && fe.Field == field {
			return true
		}
	}
	return false
}
