package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Solana RPC metrics
	solanaRPCCallsTotal   *prometheus.CounterVec
	solanaRPCCallDuration *prometheus.HistogramVec

	// Tip submission metrics
	tipsSubmittedTotal *prometheus.CounterVec
	tipSubmitDuration  *prometheus.HistogramVec

	// History aggregation metrics
	historyLoadsTotal          *prometheus.CounterVec
	historyLoadDuration        *prometheus.HistogramVec
	historyRecordsSkippedTotal prometheus.Counter

	// Database metrics
	dbOperationsTotal *prometheus.CounterVec

	// NATS metrics
	natsMessagesPublished *prometheus.CounterVec

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),
		tipsSubmittedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tips_submitted_total",
				Help: "Total number of tip submissions by outcome",
			},
			[]string{"status"},
		),
		tipSubmitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tip_submit_duration_seconds",
				Help:    "End-to-end duration of tip submissions (sign, send, confirm)",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 90},
			},
			[]string{"status"},
		),
		historyLoadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tip_history_loads_total",
				Help: "Total number of tip history loads by status",
			},
			[]string{"status"},
		),
		historyLoadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tip_history_load_duration_seconds",
				Help:    "Duration of tip history loads in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"status"},
		),
		historyRecordsSkippedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tip_history_records_skipped_total",
				Help: "Total number of malformed on-chain tip records skipped during history loads",
			},
		),
		dbOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_operations_total",
				Help: "Total number of database operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		natsMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nats_messages_published_total",
				Help: "Total number of NATS messages published by subject and status",
			},
			[]string{"subject", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by handler, method, and status class",
			},
			[]string{"handler", "method", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"handler", "method"},
		),
	}
}

// RecordRPCCall records a Solana RPC call with its outcome and duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, durationSeconds float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordTipSubmission records a tip submission outcome and its duration.
// Status is one of: confirmed, invalid, wallet_rejected, failed, timeout.
func (m *Metrics) RecordTipSubmission(status string, durationSeconds float64) {
	m.tipsSubmittedTotal.WithLabelValues(status).Inc()
	m.tipSubmitDuration.WithLabelValues(status).Observe(durationSeconds)
}

// RecordHistoryLoad records a history load outcome, its duration, and the
// number of malformed records skipped.
func (m *Metrics) RecordHistoryLoad(status string, durationSeconds float64, skipped int) {
	m.historyLoadsTotal.WithLabelValues(status).Inc()
	m.historyLoadDuration.WithLabelValues(status).Observe(durationSeconds)
	if skipped > 0 {
		m.historyRecordsSkippedTotal.Add(float64(skipped))
	}
}

// RecordDBOperation records a database operation and its outcome.
func (m *Metrics) RecordDBOperation(operation, status string) {
	m.dbOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordNATSPublish records a NATS publish attempt and its outcome.
func (m *Metrics) RecordNATSPublish(subject, status string) {
	m.natsMessagesPublished.WithLabelValues(subject, status).Inc()
}

// RecordHTTPRequest records an HTTP request with its status code and duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, durationSeconds float64) {
	m.httpRequestsTotal.WithLabelValues(handler, method, statusClass(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(handler, method).Observe(durationSeconds)
}

// statusClass buckets a status code into its class (2xx, 4xx, ...).
func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
