// internal/metrics/metrics.go
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of a single launcher run.
// Every method is safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	registry *prometheus.Registry

	rpcCalls           *prometheus.CounterVec
	rpcDuration        *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
	submissionAttempts *prometheus.CounterVec
	uploads            *prometheus.CounterVec
	runState           *prometheus.GaugeVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		rpcCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bonk_launcher_rpc_calls_total",
				Help: "Solana RPC calls by method and status",
			},
			[]string{"method", "status"},
		),
		rpcDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bonk_launcher_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method"},
		),
		rateLimitHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bonk_launcher_rate_limit_hits_total",
				Help: "RPC responses classified as rate limited (429)",
			},
			[]string{"method"},
		),
		submissionAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bonk_launcher_submission_attempts_total",
				Help: "Transaction submission attempts by outcome",
			},
			[]string{"outcome"},
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bonk_launcher_uploads_total",
				Help: "Image and metadata uploads by kind and status",
			},
			[]string{"kind", "status"},
		),
		runState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bonk_launcher_run_state",
				Help: "Set to 1 for the last state the run reached",
			},
			[]string{"state"},
		),
	}

	reg.MustRegister(
		m.rpcCalls,
		m.rpcDuration,
		m.rateLimitHits,
		m.submissionAttempts,
		m.uploads,
		m.runState,
	)
	return m
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRPCCall records a Solana RPC call.
func (m *Metrics) RecordRPCCall(method string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.rpcCalls.WithLabelValues(method, status).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordRateLimitHit records a 429 answer.
func (m *Metrics) RecordRateLimitHit(method string) {
	if m == nil {
		return
	}
	m.rateLimitHits.WithLabelValues(method).Inc()
}

// RecordSubmissionAttempt records one sendTransaction attempt.
// outcome is one of "sent", "rate_limited", "failed".
func (m *Metrics) RecordSubmissionAttempt(outcome string) {
	if m == nil {
		return
	}
	m.submissionAttempts.WithLabelValues(outcome).Inc()
}

// RecordUpload records an image or metadata upload.
func (m *Metrics) RecordUpload(kind string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.uploads.WithLabelValues(kind, status).Inc()
}

// SetRunState marks state as the current one, clearing the previous.
func (m *Metrics) SetRunState(state string) {
	if m == nil {
		return
	}
	m.runState.Reset()
	m.runState.WithLabelValues(state).Set(1)
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
