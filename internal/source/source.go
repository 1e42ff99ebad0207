// internal/source/source.go
//
// Provider contract and the ordered merge.
//
// Context
// -------
// A Provider is an opaque key/value source: file, environment, dotenv,
// in-memory map, SQL table, or Vault secret.  Merge reads them strictly in
// the order given and folds them into a Namespace, last writer wins.
//
// Instrumentation
// ---------------
//   - DEBUG span per provider with the number of keys it contributed.
//   - ERROR span when a required provider cannot be read.
//
// Notes
// -----
//   - Providers may block on one synchronous read (file, socket); nothing
//     else in the resolution cycle does.
package source

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrSourceUnavailable marks a required provider that could not be read.
var ErrSourceUnavailable = errors.New("source unavailable")

// Provider yields a partial key/value mapping.
type Provider interface {
	Name() string
	ReadAll(ctx context.Context) (map[string]string, error)
}

// SourceUnavailableError carries the provider name and the underlying cause.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %q unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}

// Unavailable wraps err as a SourceUnavailableError for provider name.
func Unavailable(name string, err error) error {
	return &SourceUnavailableError{Source: name, Err: err}
}

// Merge reads every provider in order and returns the combined namespace.
// The first failure aborts the merge; no partial namespace is returned.  Two
// keys from one provider that normalise to the same key are a failure too.
func Merge(ctx context.Context, providers ...Provider) (*Namespace, error) {
	ns := NewNamespace()
	for _, p := range providers {
		kv, err := p.ReadAll(ctx)
		if err != nil {
			zap.S().Errorw("settings source failed", "source", p.Name(), "err", err)
			var su *SourceUnavailableError
			if errors.As(err, &su) {
				return nil, err
			}
			return nil, Unavailable(p.Name(), err)
		}
		norm, err := normalize(kv)
		if err != nil {
			zap.S().Errorw("settings source rejected", "source", p.Name(), "err", err)
			return nil, Unavailable(p.Name(), err)
		}
		// Map iteration is random; sort so first-insertion order is stable
		// across runs.
		for _, k := range sortedKeys(norm) {
			ns.set(k, norm[k], p.Name())
		}
		zap.S().Debugw("settings source merged", "source", p.Name(), "keys", len(kv))
	}
	return ns, nil
}

// normalize rewrites kv onto normalised keys.  Blank keys are dropped.
func normalize(kv map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(kv))
	from := make(map[string]string, len(kv))
	for _, k := range sortedKeys(kv) {
		nk := NormalizeKey(k)
		if nk == "" {
			continue
		}
		if prev, dup := from[nk]; dup {
			return nil, fmt.Errorf("keys %q and %q both normalise to %q", prev, k, nk)
		}
		from[nk] = k
		out[nk] = kv[k]
	}
	return out, nil
}
