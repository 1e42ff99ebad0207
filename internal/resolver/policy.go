package resolver

import (
	"fmt"
	"strings"
)

// Policy decides how long a resolved value lives.
type Policy int

const (
	// Singleton resolves once at construction, fails fast, and serves the
	// same value for the life of the process.
	Singleton Policy = iota
	// Snapshot re-runs the full pipeline on every Current call so source
	// changes take effect without a restart.
	Snapshot
)

func (p Policy) String() string {
	switch p {
	case Singleton:
		return "singleton"
	case Snapshot:
		return "snapshot"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a configuration string onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "singleton":
		return Singleton, nil
	case "snapshot":
		return Snapshot, nil
	default:
		return 0, fmt.Errorf("unknown settings policy %q", s)
	}
}
