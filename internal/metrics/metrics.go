// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Searches counts suggestion lookups
	Searches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sortbin",
		Name:      "searches_total",
		Help:      "Number of suggestion searches served.",
	})

	// Submits counts submitted queries by route source (suggestion, fallback, none)
	Submits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sortbin",
		Name:      "submits_total",
		Help:      "Number of submitted queries by how they were routed.",
	}, []string{"source"})

	// Detections counts detection calls by outcome
	Detections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sortbin",
		Name:      "detections_total",
		Help:      "Number of detection requests by outcome.",
	}, []string{"outcome"})

	// DetectDuration observes detection call latency
	DetectDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sortbin",
		Name:      "detect_duration_seconds",
		Help:      "Latency of calls to the prediction backend.",
		Buckets:   prometheus.DefBuckets,
	})

	// LivePreviews tracks preview handles that have not been revoked
	LivePreviews = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sortbin",
		Name:      "live_previews",
		Help:      "Preview handles currently held by upload sessions.",
	})

	// Sessions tracks open upload sessions
	Sessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sortbin",
		Name:      "sessions",
		Help:      "Open upload sessions.",
	})
)
