package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Adapter result label values.
const (
	ResultOK       = "ok"
	ResultFailed   = "failed"
	ResultNotFound = "not_found"
)

// AdapterMetrics counts filesystem-level operation outcomes.
type AdapterMetrics struct {
	// OperationsTotal labels: operation (write, read, copy, ...), result (ok, failed, not_found)
	OperationsTotal *prometheus.CounterVec
}

// NewAdapterMetrics creates adapter metrics registered with reg.
func NewAdapterMetrics(reg prometheus.Registerer) *AdapterMetrics {
	return &AdapterMetrics{
		OperationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "adapter",
				Name:      "operations_total",
				Help:      "Total number of filesystem operations, broken down by operation and result.",
			},
			[]string{"operation", "result"},
		),
	}
}

// RecordOutcome increments the counter for operation and result.
func (m *AdapterMetrics) RecordOutcome(operation, result string) {
	m.OperationsTotal.WithLabelValues(operation, result).Inc()
}
