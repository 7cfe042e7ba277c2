package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool     *pgxpool.Pool
	isoLevel pgx.TxIsoLevel
}

// NewTxRunner construye el runner con el pool. isolation: read_committed | serializable.
func NewTxRunner(pool *pgxpool.Pool, isolation string) *TxRunner {
	iso := pgx.ReadCommitted
	if isolation == config.IsolationSerializable {
		iso = pgx.Serializable
	}
	return &TxRunner{pool: pool, isoLevel: iso}
}

// Run inicia una transacción, ejecuta fn con una sesión atada a la tx y hace Commit o Rollback.
// Los errores que no son del motor salen como *domain.PersistenceError.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, s ledger.Session) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: r.isoLevel})
	if err != nil {
		return translate("begin", fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, newSession(tx)); err != nil {
		return translate("transaction", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return translate("commit", fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// session repositorios atados a la tx; inválida cuando Run retorna.
type session struct {
	tx           pgx.Tx
	transactions *TransactionRepo
	movements    *StockMovementRepo
	products     *ProductRepo
	suppliers    *SupplierRepo
	references   *ReferenceCounterRepo
}

func newSession(tx pgx.Tx) *session {
	return &session{
		tx:           tx,
		transactions: NewTransactionRepository(tx),
		movements:    NewStockMovementRepository(tx),
		products:     NewProductRepository(tx),
		suppliers:    NewSupplierRepository(tx),
		references:   NewReferenceCounterRepository(tx),
	}
}

func (s *session) Transactions() repository.TransactionRepository    { return s.transactions }
func (s *session) Movements() repository.StockMovementRepository     { return s.movements }
func (s *session) Products() repository.ProductRepository            { return s.products }
func (s *session) Suppliers() repository.SupplierRepository          { return s.suppliers }
func (s *session) References() repository.ReferenceCounterRepository { return s.references }

// LockProducts toma un advisory lock por producto, liberado al terminar la transacción.
// El llamador entrega los IDs ordenados.
func (s *session) LockProducts(ctx context.Context, productIDs []string) error {
	for _, id := range productIDs {
		if _, err := s.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, id); err != nil {
			return fmt.Errorf("lock product %s: %w", id, err)
		}
	}
	return nil
}
