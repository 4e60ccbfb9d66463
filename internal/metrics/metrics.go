package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trip",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Booking metrics
	QuotesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip",
		Subsystem: "booking",
		Name:      "quotes_issued_total",
		Help:      "Total quotes issued, by distance source",
	}, []string{"distance_source"})

	QuotedTotalCents = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trip",
		Subsystem: "booking",
		Name:      "quote_total_cents",
		Help:      "Distribution of quoted totals in minor units",
		Buckets:   prometheus.ExponentialBuckets(1000, 2, 10),
	})

	BookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip",
		Subsystem: "booking",
		Name:      "transitions_total",
		Help:      "Booking status transitions, by target status",
	}, []string{"status"})

	BookingErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip",
		Subsystem: "booking",
		Name:      "errors_total",
		Help:      "Booking operation failures, by operation and error kind",
	}, []string{"operation", "kind"})

	// Event metrics
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Events published, by type and result",
	}, []string{"type", "result"})

	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip",
		Subsystem: "events",
		Name:      "consumed_total",
		Help:      "Events consumed, by type and result",
	}, []string{"type", "result"})
)
