package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled HTTP requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "racksum",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "racksum",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// PlacementChecksTotal counts placement verdicts by item kind and result
	// (ok, out_of_bounds, position_conflict, invalid_placement_rule, ...).
	PlacementChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "racksum",
			Subsystem: "placement",
			Name:      "checks_total",
			Help:      "Total number of placement validations",
		},
		[]string{"kind", "result"},
	)

	// ToolCallsTotal counts assistant tool invocations.
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "racksum",
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Total number of assistant tool calls",
		},
		[]string{"tool", "status"},
	)
)
