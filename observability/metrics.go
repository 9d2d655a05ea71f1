package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetricsRegistry records ledger operation activity for Prometheus.
type LedgerMetricsRegistry struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	supply     prometheus.Gauge
}

var (
	ledgerMetricsOnce sync.Once
	ledgerRegistry    *LedgerMetricsRegistry
)

// LedgerMetrics returns the lazily-initialised metrics registry used to record
// ledger operation outcomes.
func LedgerMetrics() *LedgerMetricsRegistry {
	ledgerMetricsOnce.Do(func() {
		ledgerRegistry = &LedgerMetricsRegistry{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "pointchain",
				Subsystem: "ledger",
				Name:      "operations_total",
				Help:      "Total ledger operations segmented by operation and outcome.",
			}, []string{"operation", "outcome"}),
			failures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "pointchain",
				Subsystem: "ledger",
				Name:      "failures_total",
				Help:      "Total ledger operation failures segmented by operation and error.",
			}, []string{"operation", "error"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "pointchain",
				Subsystem: "ledger",
				Name:      "operation_duration_seconds",
				Help:      "Latency distribution for ledger operations.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"operation"}),
			supply: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "pointchain",
				Subsystem: "ledger",
				Name:      "current_supply",
				Help:      "Current total point supply in base units.",
			}),
		}
		prometheus.MustRegister(
			ledgerRegistry.operations,
			ledgerRegistry.failures,
			ledgerRegistry.latency,
			ledgerRegistry.supply,
		)
	})
	return ledgerRegistry
}

// ObserveOperation records one completed operation with its outcome and
// duration. failure must be a label from a bounded taxonomy, never raw error
// text: label values become Prometheus time series, so unbounded values let a
// remote caller grow server memory. An empty failure means success.
func (m *LedgerMetricsRegistry) ObserveOperation(operation string, failure string, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if failure != "" {
		outcome = "error"
		m.failures.WithLabelValues(operation, failure).Inc()
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.latency.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetSupply publishes the current total supply.
func (m *LedgerMetricsRegistry) SetSupply(supply uint64) {
	if m == nil {
		return
	}
	m.supply.Set(float64(supply))
}
