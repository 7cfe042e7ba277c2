package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
)

func TestRecorder_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.NewRecorder(reg)

	r.TransactionCommitted(entity.TransactionTypeIN, 3, 20*time.Millisecond)
	r.TransactionCommitted(entity.TransactionTypeIN, 1, 10*time.Millisecond)
	r.TransactionRejected(entity.TransactionTypeOUT, "INSUFFICIENT_STOCK")
	r.TransactionRejected("", "VALIDATION")
	r.CommitRetried(entity.TransactionTypeOUT)

	expected := `
# HELP stock_ledger_transactions_committed_total Transacciones confirmadas por tipo.
# TYPE stock_ledger_transactions_committed_total counter
stock_ledger_transactions_committed_total{type="IN"} 2
# HELP stock_ledger_transactions_rejected_total Transacciones rechazadas por tipo y motivo.
# TYPE stock_ledger_transactions_rejected_total counter
stock_ledger_transactions_rejected_total{reason="INSUFFICIENT_STOCK",type="OUT"} 1
stock_ledger_transactions_rejected_total{reason="VALIDATION",type="UNKNOWN"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"stock_ledger_transactions_committed_total", "stock_ledger_transactions_rejected_total"))

	n, err := testutil.GatherAndCount(reg, "stock_ledger_transaction_retries_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecorder_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewRecorder(reg)
	assert.Panics(t, func() { metrics.NewRecorder(reg) })
}
