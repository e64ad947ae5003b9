// Package metrics defines Prometheus metrics for the API client and session layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API Request Metrics
var (
	// APIRequestsTotal tracks outbound API requests by method and outcome.
	// Status is the HTTP status code, or "unreachable" for transport failures.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_client_requests_total",
			Help: "Total outbound API requests by method and status",
		},
		[]string{"method", "status"},
	)

	// APIRequestDuration tracks outbound API request latency in seconds
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_client_request_duration_seconds",
			Help:    "Outbound API request duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method"},
	)
)

// Session Metrics
var (
	// SessionInvalidationsTotal tracks forced session invalidations (401 responses)
	SessionInvalidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_invalidations_total",
			Help: "Total forced session invalidations triggered by 401 responses",
		},
	)

	// TokenRefreshesTotal tracks token refresh attempts by outcome
	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_refreshes_total",
			Help: "Total token refresh attempts by outcome (success/failure)",
		},
		[]string{"outcome"},
	)

	// SessionStoreErrorsTotal tracks session store failures by operation
	SessionStoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_store_errors_total",
			Help: "Total session store failures by operation (save/load/clear)",
		},
		[]string{"operation"},
	)
)
