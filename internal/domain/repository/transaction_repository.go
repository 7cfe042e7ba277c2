package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransactionRepository puerto de persistencia de cabeceras y líneas de transacción.
// No expone borrado: las correcciones se hacen con transacciones compensatorias.
type TransactionRepository interface {
	Create(ctx context.Context, txn *entity.Transaction) error
	CreateItems(ctx context.Context, items []*entity.TransactionItem) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	ListItems(ctx context.Context, transactionID string) ([]*entity.TransactionItem, error)
	// LatestReferenceWithPrefix mayor número de referencia (lexicográfico) con el prefijo dado, "" si no hay.
	LatestReferenceWithPrefix(ctx context.Context, prefix string) (string, error)
	// FindReversalOf devuelve la transacción que compensa a id, nil si no existe.
	FindReversalOf(ctx context.Context, id string) (*entity.Transaction, error)
	// UpdateNotes única mutación permitida sobre una cabecera. ErrNotFound si no existe.
	UpdateNotes(ctx context.Context, id, notes string) error
}
