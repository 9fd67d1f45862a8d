// Package metrics provides Prometheus instrumentation for the inventory.
//
// The store records every operation it serves: outcome counters, latency,
// rows touched and notifications fanned out. Everything is registered on
// DefaultRegistry, which the CLI can dump with Gather.
//
//	defer metrics.ObserveOperation("insert", time.Now())
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "inventory"

// Outcomes recorded on OperationsTotal.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected" // validation or resource error
	OutcomeFailed   = "failed"   // engine refused the statement
)

var (
	// OperationsTotal counts store operations by name and outcome.
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total product store operations.",
		},
		[]string{"operation", "outcome"}, // "type" | "query" | "insert" | "update" | "delete"
	)

	// OperationDuration tracks store operation latency.
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of product store operations in seconds.",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .5, 1},
		},
		[]string{"operation"},
	)

	// RowsAffected counts rows changed by update and delete.
	RowsAffected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "rows_affected_total",
			Help:      "Total rows changed by product store mutations.",
		},
		[]string{"operation"},
	)

	// NotificationsTotal counts observer deliveries triggered by mutations.
	NotificationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "notifications_total",
		Help:      "Total change notifications delivered to observers.",
	})
)

// DefaultRegistry is the Prometheus registry used by the inventory.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		OperationsTotal,
		OperationDuration,
		RowsAffected,
		NotificationsTotal,
	)
}

// Register adds a collector to DefaultRegistry.
func Register(c prometheus.Collector) error {
	return DefaultRegistry.Register(c)
}

// ObserveOperation records an operation duration with a simple timer:
//
//	defer metrics.ObserveOperation("query", time.Now())
func ObserveOperation(operation string, start time.Time) {
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordOutcome increments OperationsTotal.
func RecordOutcome(operation, outcome string) {
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordRows adds n to RowsAffected when n is positive.
func RecordRows(operation string, n int64) {
	if n > 0 {
		RowsAffected.WithLabelValues(operation).Add(float64(n))
	}
}

// RecordNotifications adds n observer deliveries.
func RecordNotifications(n int) {
	if n > 0 {
		NotificationsTotal.Add(float64(n))
	}
}
