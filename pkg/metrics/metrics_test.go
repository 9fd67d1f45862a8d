package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/inventory/pkg/metrics"
)

func TestRecordOutcome(t *testing.T) {
	before := testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues("insert", metrics.OutcomeOK))
	metrics.RecordOutcome("insert", metrics.OutcomeOK)
	metrics.RecordOutcome("insert", metrics.OutcomeOK)
	after := testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues("insert", metrics.OutcomeOK))
	assert.Equal(t, before+2, after)
}

func TestRecordRowsIgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(metrics.RowsAffected.WithLabelValues("delete"))
	metrics.RecordRows("delete", 0)
	metrics.RecordRows("delete", -1)
	assert.Equal(t, before, testutil.ToFloat64(metrics.RowsAffected.WithLabelValues("delete")))

	metrics.RecordRows("delete", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(metrics.RowsAffected.WithLabelValues("delete")))
}

func TestRecordNotifications(t *testing.T) {
	before := testutil.ToFloat64(metrics.NotificationsTotal)
	metrics.RecordNotifications(0)
	metrics.RecordNotifications(2)
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.NotificationsTotal))
}

func TestObserveOperation(t *testing.T) {
	metrics.ObserveOperation("query", time.Now())

	n, err := testutil.GatherAndCount(metrics.DefaultRegistry, "inventory_store_operation_duration_seconds")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
}
