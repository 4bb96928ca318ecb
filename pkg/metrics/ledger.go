package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records outcomes of calls made to the authoritative
// ownership ledger.
type LedgerMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	timeout  *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger call metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_call_duration_seconds",
		Help:    "Duration of authoritative ledger calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_call_success",
		Help: "Successful ledger calls.",
	}, []string{"op"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_call_failure",
		Help: "Rejected or failed ledger calls.",
	}, []string{"op"})
	timeout := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_call_timeout",
		Help: "Ledger calls that exhausted their deadline.",
	}, []string{"op"})
	reg.MustRegister(duration, success, failure, timeout)
	return &LedgerMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		timeout:  timeout,
	}
}

// ObserveDuration records the duration for the named ledger operation.
func (m *LedgerMetrics) ObserveDuration(op string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *LedgerMetrics) IncSuccess(op string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (m *LedgerMetrics) IncFailure(op string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncTimeout increments the timeout counter for the named operation.
func (m *LedgerMetrics) IncTimeout(op string) {
	if m == nil || m.timeout == nil {
		return
	}
	m.timeout.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(op string) string {
	if op == "" {
		return "unknown"
	}
	return op
}
