package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ ledger.Recorder = (*Recorder)(nil)

const namespace = "stock_ledger"

// Recorder métricas Prometheus del motor de transacciones.
type Recorder struct {
	committed *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	retries   *prometheus.CounterVec
	items     prometheus.Histogram
	duration  *prometheus.HistogramVec
}

// NewRecorder registra los colectores en reg (usar un registro propio en tests).
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		committed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_committed_total",
			Help:      "Transacciones confirmadas por tipo.",
		}, []string{"type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_rejected_total",
			Help:      "Transacciones rechazadas por tipo y motivo.",
		}, []string{"type", "reason"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transaction_retries_total",
			Help:      "Reintentos por conflicto de concurrencia.",
		}, []string{"type"}),
		items: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transaction_items",
			Help:      "Ítems por transacción confirmada.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transaction_duration_seconds",
			Help:      "Duración de la unidad de trabajo, reintentos incluidos.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
	}
	reg.MustRegister(r.committed, r.rejected, r.retries, r.items, r.duration)
	return r
}

func (r *Recorder) TransactionCommitted(t entity.TransactionType, items int, elapsed time.Duration) {
	r.committed.WithLabelValues(string(t)).Inc()
	r.items.Observe(float64(items))
	r.duration.WithLabelValues(string(t)).Observe(elapsed.Seconds())
}

func (r *Recorder) TransactionRejected(t entity.TransactionType, reason string) {
	r.rejected.WithLabelValues(label(t), reason).Inc()
}

func (r *Recorder) CommitRetried(t entity.TransactionType) {
	r.retries.WithLabelValues(label(t)).Inc()
}

// label el tipo puede ser desconocido si el payload no llegó a validarse.
func label(t entity.TransactionType) string {
	if t == "" {
		return "UNKNOWN"
	}
	return string(t)
}
