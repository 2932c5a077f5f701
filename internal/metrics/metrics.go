// Package metrics holds the Prometheus collectors shared by the server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	UpstreamFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_fetches_total",
			Help: "Requests made to the external reports API",
		},
		[]string{"result"}, // "ok", "status", "error", "rejected"
	)

	UpstreamFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upstream_fetch_duration_seconds",
			Help:    "Latency of external reports API requests",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Duration of favorites store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_query_errors_total",
			Help: "Failed favorites store queries",
		},
		[]string{"operation"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favorite_events_published_total",
			Help: "Favorite events handed to the message broker",
		},
		[]string{"action", "result"},
	)

	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "upstream_circuit_breaker_state",
			Help: "Upstream circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
	)
)

// ObserveStore starts timing a store operation. Call the returned func with
// the operation's error when it finishes.
func ObserveStore(operation string) func(error) {
	start := time.Now()
	return func(err error) {
		StoreQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		if err != nil {
			StoreQueryErrors.WithLabelValues(operation).Inc()
		}
	}
}

func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordUpstreamFetch(result string, duration time.Duration) {
	UpstreamFetchesTotal.WithLabelValues(result).Inc()
	UpstreamFetchDuration.Observe(duration.Seconds())
}
