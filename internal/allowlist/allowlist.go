// internal/allowlist/allowlist.go
//
// Allow-list capability consulted by the external validation stage.
//
// Context
// -------
// The validation chain only knows the Checker interface.  Two
// implementations ship here:
//
//   - Static, an immutable set built from configuration.
//   - FromSQL, which loads the same set once from a table and returns a
//     Static, so lookups stay in memory.
//
// Notes
// -----
//   - A Static is never written after construction, so concurrent reads
//     need no locking.
//   - Values are compared after trimming surrounding whitespace.
package allowlist

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

// DefaultAddresses mirrors the built-in SMTP relay allow list.
var DefaultAddresses = []string{"127.0.0.1", "192.168.0.1"}

// Checker reports whether value is allowed.  Implementations must be safe
// for concurrent reads.
type Checker interface {
	IsAllowed(value string) bool
}

// CheckerFunc adapts a plain function.
type CheckerFunc func(string) bool

func (f CheckerFunc) IsAllowed(v string) bool { return f(v) }

// Static is an immutable in-memory set.
type Static struct {
	set map[string]struct{}
}

// NewStatic builds a Static from values.  Blank entries are ignored.
func NewStatic(values ...string) *Static {
	s := &Static{set: make(map[string]struct{}, len(values))}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			s.set[v] = struct{}{}
		}
	}
	return s
}

// IsAllowed implements Checker.
func (s *Static) IsAllowed(v string) bool {
	_, ok := s.set[strings.TrimSpace(v)]
	return ok
}

// Values returns the members in sorted order.
func (s *Static) Values() []string {
	out := make([]string, 0, len(s.set))
	for v := range s.set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// FromSQL loads every `address` column of table into a Static.
func FromSQL(ctx context.Context, db *sqlx.DB, table string) (*Static, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("allowlist: invalid table name %q", table)
	}
	var addrs []string
	if err := db.SelectContext(ctx, &addrs, "SELECT address FROM "+table); err != nil {
		return nil, fmt.Errorf("allowlist: load %s: %w", table, err)
	}
	return NewStatic(addrs...), nil
}
