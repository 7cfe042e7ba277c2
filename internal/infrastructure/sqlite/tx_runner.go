package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner unidad de trabajo sobre SQLite. BEGIN IMMEDIATE toma el lock de escritura
// de toda la base, por eso LockProducts no necesita hacer nada.
type TxRunner struct {
	db *sql.DB
}

func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{db: store.db}
}

func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, s ledger.Session) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return translate("begin", fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, newSession(tx)); err != nil {
		return translate("transaction", err)
	}
	if err := tx.Commit(); err != nil {
		return translate("commit", fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

type session struct {
	transactions *TransactionRepo
	movements    *StockMovementRepo
	products     *ProductRepo
	suppliers    *SupplierRepo
	references   *ReferenceCounterRepo
}

func newSession(tx *sql.Tx) *session {
	return &session{
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

func (s *session) LockProducts(context.Context, []string) error { return nil }
