// Package metrics holds the Prometheus collectors shared by the wizard,
// the recommender and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "odmat"

// Assessment lifecycle event labels.
const (
	EventStarted   = "started"
	EventResumed   = "resumed"
	EventCompleted = "completed"
	EventReset     = "reset"
)

var (
	// Registry is the registry served on /metrics.
	Registry = prometheus.NewRegistry()

	Assessments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assessments_total",
		Help:      "Assessment lifecycle events by kind.",
	}, []string{"event"})

	Answers = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answers_total",
		Help:      "Answers recorded across all assessments.",
	})

	MaturityLevels = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "maturity_level_total",
		Help:      "Completed assessments by resulting maturity level.",
	}, []string{"level"})

	Recommendations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendations_total",
		Help:      "Recommendation requests by source (llm, salvaged, fallback).",
	}, []string{"source"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		Assessments,
		Answers,
		MaturityLevels,
		Recommendations,
		HTTPDuration,
	)
}
