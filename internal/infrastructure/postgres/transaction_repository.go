package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, reference_number, type, transaction_date, COALESCE(supplier_id, ''), user_id,
	notes, total_value, COALESCE(reversal_of, ''), created_at`

// TransactionRepo cabeceras e ítems de transacción (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, reference_number, type, transaction_date, supplier_id, user_id, notes, total_value, reversal_of, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ReferenceNumber, string(t.Type), t.TransactionDate, nullIfEmpty(t.SupplierID), t.UserID,
		t.Notes, t.TotalValue, nullIfEmpty(t.ReversalOf), t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) CreateItems(ctx context.Context, items []*entity.TransactionItem) error {
	query := `
		INSERT INTO transaction_items (id, transaction_id, product_id, quantity, unit_cost, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, it := range items {
		if _, err := r.q.Exec(ctx, query, it.ID, it.TransactionID, it.ProductID, it.Quantity, it.UnitCost, it.UnitPrice); err != nil {
			return fmt.Errorf("insert transaction item: %w", err)
		}
	}
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *TransactionRepo) ListItems(ctx context.Context, transactionID string) ([]*entity.TransactionItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, transaction_id, product_id, quantity, unit_cost, unit_price
		FROM transaction_items WHERE transaction_id = $1 ORDER BY line_seq`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()
	var list []*entity.TransactionItem
	for rows.Next() {
		var it entity.TransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.ProductID, &it.Quantity, &it.UnitCost, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan transaction item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// LatestReferenceWithPrefix orden lexicográfico = orden numérico por el relleno a 4 dígitos.
func (r *TransactionRepo) LatestReferenceWithPrefix(ctx context.Context, prefix string) (string, error) {
	var ref string
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(MAX(reference_number), '') FROM transactions WHERE reference_number LIKE $1 || '%'`,
		prefix,
	).Scan(&ref)
	if err != nil {
		return "", fmt.Errorf("latest reference: %w", err)
	}
	return ref, nil
}

func (r *TransactionRepo) FindReversalOf(ctx context.Context, id string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE reversal_of = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find reversal: %w", err)
	}
	return t, nil
}

func (r *TransactionRepo) UpdateNotes(ctx context.Context, id, notes string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE transactions SET notes = $2 WHERE id = $1`, id, notes)
	if err != nil {
		return fmt.Errorf("update notes: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	var typ string
	if err := row.Scan(&t.ID, &t.ReferenceNumber, &typ, &t.TransactionDate, &t.SupplierID, &t.UserID,
		&t.Notes, &t.TotalValue, &t.ReversalOf, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Type = entity.TransactionType(typ)
	return &t, nil
}
