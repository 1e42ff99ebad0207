// internal/resolver/resolver.go
//
// Settings resolver: merge → bind → post-process → validate.
//
/*
Context
--------
A Resolver owns one typed settings section.  Each cycle:

  1. merges the providers, in order, into a Namespace,
  2. binds the section onto a fresh T,
  3. runs the post-process pipeline,
  4. runs the validation chain,

and produces an immutable Resolved[T].  Source and bind failures abort the
cycle and return no value.  Validation failures are collected in full and
produce a "rejected" Resolved alongside a validation.Errors error.

Lifetime policy
---------------
  - Singleton: New resolves once.  Any failure is returned from New so the
    caller can abort startup with the itemized report.  Current returns the
    cached value, lock-free, from an atomic.Pointer.  Reload re-resolves on
    operator request and swaps the pointer only on success.
  - Snapshot: New never resolves.  Every Current call runs a full cycle;
    failures are returned to that caller only.

Cycles share no mutable state, so snapshot resolutions may run in parallel.

Instrumentation
---------------
  • Prometheus counters and a duration histogram per cycle (see metrics).
  • Every post-process step and validation failure is forwarded to the
    configured event.Reporter.
  • INFO span when a singleton resolves, DEBUG per snapshot cycle, ERROR on
    failure.
*/
package resolver

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/forecast/internal/binder"
	"github.com/yanizio/forecast/internal/event"
	"github.com/yanizio/forecast/internal/metrics"
	"github.com/yanizio/forecast/internal/postprocess"
	"github.com/yanizio/forecast/internal/source"
	"github.com/yanizio/forecast/internal/validation"
)

// Options configures a Resolver.
type Options[T any] struct {
	Policy    Policy
	Section   string
	Providers []source.Provider
	Pipeline  postprocess.Pipeline[T]
	Chain     validation.Chain[T]
	Reporter  event.Reporter
}

// Resolver produces Resolved values according to its Policy.
type Resolver[T any] struct {
	opts    Options[T]
	current atomic.Pointer[Resolved[T]]
}

// New builds a resolver.  Under Singleton the first cycle runs here and any
// failure is returned.
func New[T any](ctx context.Context, opts Options[T]) (*Resolver[T], error) {
	if opts.Reporter == nil {
		opts.Reporter = event.Discard
	}
	opts.Providers = append([]source.Provider(nil), opts.Providers...)

	r := &Resolver[T]{opts: opts}
	if opts.Policy == Singleton {
		res, err := r.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		r.current.Store(&res)
		zap.S().Infow("settings resolved",
			"section", opts.Section,
			"policy", opts.Policy.String(),
		)
	}
	return r, nil
}

// Policy reports the lifetime policy.
func (r *Resolver[T]) Policy() Policy { return r.opts.Policy }

// Current returns the settings a consumer should use right now.
func (r *Resolver[T]) Current(ctx context.Context) (Resolved[T], error) {
	if r.opts.Policy == Singleton {
		if p := r.current.Load(); p != nil {
			return *p, nil
		}
	}
	res, err := r.Resolve(ctx)
	if err == nil {
		r.current.Store(&res)
	}
	return res, err
}

// Last returns the most recent validated value, if any.
func (r *Resolver[T]) Last() (Resolved[T], bool) {
	if p := r.current.Load(); p != nil {
		return *p, true
	}
	return Resolved[T]{}, false
}

// Reload re-runs the cycle and, on success, replaces the cached value.  The
// previous value stays in place on failure.
func (r *Resolver[T]) Reload(ctx context.Context) error {
	res, err := r.Resolve(ctx)
	if err != nil {
		zap.S().Errorw("settings reload failed, keeping previous value",
			"section", r.opts.Section, "err", err)
		return err
	}
	r.current.Store(&res)
	zap.S().Infow("settings reloaded", "section", r.opts.Section)
	return nil
}

// Resolve runs one full cycle regardless of policy.  The error is a
// *source.SourceUnavailableError, a *binder.BindError, or validation.Errors.
// Only the last kind comes with a meaningful (rejected) Resolved.
func (r *Resolver[T]) Resolve(ctx context.Context) (Resolved[T], error) {
	start := time.Now()
	policy := r.opts.Policy.String()
	defer func() {
		metrics.ResolutionDuration.WithLabelValues(policy).Observe(time.Since(start).Seconds())
	}()

	rep := counting{next: r.opts.Reporter}

	ns, err := source.Merge(ctx, r.opts.Providers...)
	if err != nil {
		var su *source.SourceUnavailableError
		field := ""
		if errors.As(err, &su) {
			field = su.Source
		}
		rep.Report(event.Event{Stage: event.StageSource, Field: field, Message: err.Error()})
		metrics.ResolutionsTotal.WithLabelValues(policy, metrics.OutcomeSourceError).Inc()
		return Resolved[T]{}, err
	}

	var val T
	if err := binder.Bind(ns, r.opts.Section, &val); err != nil {
		var be *binder.BindError
		field := ""
		if errors.As(err, &be) {
			field = be.Path
		}
		rep.Report(event.Event{Stage: event.StageBind, Field: field, Message: err.Error()})
		metrics.ResolutionsTotal.WithLabelValues(policy, metrics.OutcomeBindError).Inc()
		zap.S().Errorw("settings bind failed", "section", r.opts.Section, "err", err)
		return Resolved[T]{}, err
	}

	val = r.opts.Pipeline.Apply(val, rep)
	errs := r.opts.Chain.Validate(val, rep)

	res := Resolved[T]{settings: val, at: time.Now().UTC()}
	if len(errs) > 0 {
		res.status = StatusRejected
		res.errs = errs
		metrics.ResolutionsTotal.WithLabelValues(policy, metrics.OutcomeRejected).Inc()
		zap.S().Errorw("settings rejected",
			"section", r.opts.Section, "errors", len(errs), "fields", errs.Fields())
		return res, errs
	}

	res.status = StatusValidated
	metrics.ResolutionsTotal.WithLabelValues(policy, metrics.OutcomeValidated).Inc()
	zap.S().Debugw("settings cycle complete",
		"section", r.opts.Section, "policy", policy, "keys", ns.Len())
	return res, nil
}

// counting forwards events and feeds the per-stage counters.
type counting struct {
	next event.Reporter
}

func (c counting) Report(e event.Event) {
	switch e.Stage {
	case event.StagePostProcess:
		metrics.PostProcessStepsTotal.Inc()
	case event.StageDeclarative, event.StageCrossField, event.StageExternal:
		metrics.ValidationErrorsTotal.WithLabelValues(string(e.Stage)).Inc()
	}
	c.next.Report(e)
}
