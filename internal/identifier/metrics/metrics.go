package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Allocation sources.
const (
	SourcePool    = "pool"
	SourceCounter = "counter"
	SourceSystem  = "system_id"
)

// Metrics provides observability for identifier allocation.
type Metrics struct {
	// Allocations by family ("sctid", "scheme") and source (pool, counter, system_id)
	Allocations *prometheus.CounterVec

	// Lifecycle rejections by family and action
	Rejections *prometheus.CounterVec

	// Counter or cursor candidates skipped before one could be claimed
	AllocationRetries *prometheus.CounterVec

	// Time spent waiting for a keyed lock
	LockWait *prometheus.HistogramVec

	// Engine operation latency by operation name
	OperationLatency *prometheus.HistogramVec
}

// New registers the metrics with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Allocations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cis_identifier_allocations_total",
			Help: "Identifiers handed out by family and allocation source",
		}, []string{"family", "source"}),

		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cis_lifecycle_rejections_total",
			Help: "Lifecycle actions rejected by the state machine",
		}, []string{"family", "action"}),

		AllocationRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cis_allocation_retries_total",
			Help: "Counter candidates skipped because they could not be claimed",
		}, []string{"family"}),

		LockWait: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cis_lock_wait_seconds",
			Help:    "Time spent waiting to acquire a keyed lock",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"family"}),

		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cis_operation_duration_seconds",
			Help:    "Duration of identifier engine operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncAllocation(family, source string) {
	if m != nil {
		m.Allocations.WithLabelValues(family, source).Inc()
	}
}

func (m *Metrics) IncRejection(family, action string) {
	if m != nil {
		m.Rejections.WithLabelValues(family, action).Inc()
	}
}

func (m *Metrics) IncRetry(family string) {
	if m != nil {
		m.AllocationRetries.WithLabelValues(family).Inc()
	}
}

func (m *Metrics) ObserveLockWait(family string, d time.Duration) {
	if m != nil {
		m.LockWait.WithLabelValues(family).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveOperation(operation string, d time.Duration) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}
