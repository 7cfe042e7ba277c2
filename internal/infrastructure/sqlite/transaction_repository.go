package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, reference_number, type, transaction_date, COALESCE(supplier_id, ''), user_id,
	notes, total_value, COALESCE(reversal_of, ''), created_at`

// TransactionRepo cabeceras e ítems (usable con *sql.DB o *sql.Tx).
type TransactionRepo struct {
	q Querier
}

func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO transactions (id, reference_number, type, transaction_date, supplier_id, user_id, notes, total_value, reversal_of, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ReferenceNumber, string(t.Type), t.TransactionDate.Format(dateLayout), nullIfEmpty(t.SupplierID),
		t.UserID, t.Notes, t.TotalValue, nullIfEmpty(t.ReversalOf), nanos(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) CreateItems(ctx context.Context, items []*entity.TransactionItem) error {
	for _, it := range items {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO transaction_items (id, transaction_id, product_id, quantity, unit_cost, unit_price)
			VALUES (?, ?, ?, ?, ?, ?)`,
			it.ID, it.TransactionID, it.ProductID, it.Quantity, it.UnitCost, it.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert transaction item: %w", err)
		}
	}
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *TransactionRepo) ListItems(ctx context.Context, transactionID string) ([]*entity.TransactionItem, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, transaction_id, product_id, quantity, unit_cost, unit_price
		FROM transaction_items WHERE transaction_id = ? ORDER BY rowid`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	defer func() { _ = rows.Close() }()
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

func (r *TransactionRepo) LatestReferenceWithPrefix(ctx context.Context, prefix string) (string, error) {
	var ref string
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(reference_number), '') FROM transactions WHERE reference_number LIKE ? || '%'`,
		prefix,
	).Scan(&ref)
	if err != nil {
		return "", fmt.Errorf("latest reference: %w", err)
	}
	return ref, nil
}

func (r *TransactionRepo) FindReversalOf(ctx context.Context, id string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE reversal_of = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find reversal: %w", err)
	}
	return t, nil
}

func (r *TransactionRepo) UpdateNotes(ctx context.Context, id, notes string) error {
	res, err := r.q.ExecContext(ctx, `UPDATE transactions SET notes = ? WHERE id = ?`, notes, id)
	if err != nil {
		return fmt.Errorf("update notes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update notes: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*entity.Transaction, error) {
	var t entity.Transaction
	var typ, date string
	var createdAt int64
	if err := row.Scan(&t.ID, &t.ReferenceNumber, &typ, &date, &t.SupplierID, &t.UserID,
		&t.Notes, &t.TotalValue, &t.ReversalOf, &createdAt); err != nil {
		return nil, err
	}
	d, err := parseDate(date)
	if err != nil {
		return nil, fmt.Errorf("transaction_date %q: %w", date, err)
	}
	t.Type = entity.TransactionType(typ)
	t.TransactionDate = d
	t.CreatedAt = fromNanos(createdAt)
	return &t, nil
}
