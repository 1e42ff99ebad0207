// Package metrics holds Prometheus instruments for the settings pipeline.
// All collectors are registered with the global registry, so importing this
// package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for ResolutionsTotal.
const (
	OutcomeValidated   = "validated"
	OutcomeRejected    = "rejected"
	OutcomeSourceError = "source_error"
	OutcomeBindError   = "bind_error"
)

var (
	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settings_resolutions_total",
			Help: "Settings resolution cycles by lifetime policy and outcome.",
		}, []string{"policy", "outcome"})

	ResolutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settings_resolution_duration_seconds",
			Help:    "Wall time of one full merge, bind, post-process, and validate cycle.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"policy"})

	ValidationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settings_validation_errors_total",
			Help: "Validation errors by chain stage.",
		}, []string{"stage"})

	PostProcessStepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "settings_postprocess_steps_total",
			Help: "Post-process steps applied across all cycles.",
		})
)

func init() {
	prometheus.MustRegister(
		ResolutionsTotal,
		ResolutionDuration,
		ValidationErrorsTotal,
		PostProcessStepsTotal,
	)
}
