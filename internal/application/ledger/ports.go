package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Session handle de la unidad de trabajo activa. Solo TxRunner.Run la entrega; los
// repositorios que expone están atados a la transacción de BD y dejan de ser válidos
// cuando Run retorna.
type Session interface {
	Transactions() repository.TransactionRepository
	Movements() repository.StockMovementRepository
	Products() repository.ProductRepository
	Suppliers() repository.SupplierRepository
	References() repository.ReferenceCounterRepository
	// LockProducts bloquea el libro de cada producto hasta el commit o rollback.
	// Los IDs se bloquean en orden para evitar deadlocks.
	LockProducts(ctx context.Context, productIDs []string) error
}

// TxRunner ejecuta fn dentro de una transacción de BD: Commit si fn retorna nil, Rollback si no.
// Los errores que no sean del motor se traducen a *domain.PersistenceError.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, s Session) error) error
}

// CacheInvalidator recibe la señal de invalidación: exactamente una vez por transacción
// confirmada, nunca tras un rollback.
type CacheInvalidator interface {
	TransactionCommitted(ctx context.Context, txn *entity.Transaction)
}

// Recorder métricas del motor.
type Recorder interface {
	TransactionCommitted(t entity.TransactionType, items int, elapsed time.Duration)
	TransactionRejected(t entity.TransactionType, reason string)
	CommitRetried(t entity.TransactionType)
}

type nopInvalidator struct{}

func (nopInvalidator) TransactionCommitted(context.Context, *entity.Transaction) {}

type nopRecorder struct{}

func (nopRecorder) TransactionCommitted(entity.TransactionType, int, time.Duration) {}
func (nopRecorder) TransactionRejected(entity.TransactionType, string)               {}
func (nopRecorder) CommitRetried(entity.TransactionType)                            {}

// Options parámetros del motor.
type Options struct {
	MaxRetries int              // reintentos ante PersistenceError reintentable
	Location   *time.Location   // zona para la fecha del número de referencia
	Now        func() time.Time // reloj inyectable (tests)
}

func (o Options) withDefaults() Options {
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
