package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `m.id, m.seq, m.product_id, m.transaction_id, m.movement_type,
	m.quantity_before, m.quantity_change, m.quantity_after, m.created_at`

// StockMovementRepo libro de movimientos (usable con *sql.DB o *sql.Tx).
type StockMovementRepo struct {
	q Querier
}

func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta el movimiento y completa Seq con el rowid asignado.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO stock_movements (id, product_id, transaction_id, movement_type, quantity_before, quantity_change, quantity_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProductID, m.TransactionID, string(m.MovementType),
		m.QuantityBefore, m.QuantityChange, m.QuantityAfter, nanos(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	m.Seq = seq
	return nil
}

func (r *StockMovementRepo) Latest(ctx context.Context, productID string) (*entity.StockMovement, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+movementColumns+` FROM stock_movements m
		WHERE m.product_id = ? ORDER BY m.created_at DESC, m.seq DESC LIMIT 1`, productID)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest stock movement: %w", err)
	}
	return m, nil
}

func (r *StockMovementRepo) LatestBalances(ctx context.Context, productIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.QueryContext(ctx, `
		SELECT m.product_id, m.quantity_after FROM stock_movements m
		WHERE m.product_id IN (`+placeholders(len(productIDs))+`)
		  AND m.seq = (
			SELECT l.seq FROM stock_movements l
			WHERE l.product_id = m.product_id
			ORDER BY l.created_at DESC, l.seq DESC LIMIT 1
		  )`, toArgs(productIDs)...)
	if err != nil {
		return nil, fmt.Errorf("latest balances: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var id string
		var qty int64
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out[id] = qty
	}
	return out, rows.Err()
}

func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements m
		WHERE m.product_id = ? ORDER BY m.created_at, m.seq`, productID)
}

func (r *StockMovementRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements m
		WHERE m.transaction_id = ? ORDER BY m.seq`, transactionID)
}

func (r *StockMovementRepo) list(ctx context.Context, query, arg string) ([]*entity.StockMovement, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *StockMovementRepo) History(ctx context.Context, productID string, f repository.HistoryFilter) ([]*entity.MovementDetail, int, error) {
	where := `m.product_id = ?`
	args := []any{productID}
	if f.From != nil {
		where += ` AND m.created_at >= ?`
		args = append(args, nanos(*f.From))
	}
	if f.To != nil {
		where += ` AND m.created_at <= ?`
		args = append(args, nanos(*f.To))
	}

	var total int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM stock_movements m WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+movementColumns+`, t.reference_number, t.type, t.transaction_date, t.notes,
			COALESCE(t.supplier_id, ''), COALESCE(s.name, '')
		FROM stock_movements m
		JOIN transactions t ON t.id = m.transaction_id
		LEFT JOIN suppliers s ON s.id = t.supplier_id
		WHERE `+where+`
		ORDER BY m.created_at DESC, m.seq DESC
		LIMIT ? OFFSET ?`, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("history: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var list []*entity.MovementDetail
	for rows.Next() {
		var d entity.MovementDetail
		var mtype, ttype, date string
		var createdAt int64
		m := &d.StockMovement
		if err := rows.Scan(&m.ID, &m.Seq, &m.ProductID, &m.TransactionID, &mtype,
			&m.QuantityBefore, &m.QuantityChange, &m.QuantityAfter, &createdAt,
			&d.ReferenceNumber, &ttype, &date, &d.Notes, &d.SupplierID, &d.SupplierName); err != nil {
			return nil, 0, fmt.Errorf("scan history: %w", err)
		}
		m.MovementType = entity.TransactionType(mtype)
		m.CreatedAt = fromNanos(createdAt)
		d.TransactionType = entity.TransactionType(ttype)
		if d.TransactionDate, err = parseDate(date); err != nil {
			return nil, 0, fmt.Errorf("transaction_date %q: %w", date, err)
		}
		list = append(list, &d)
	}
	return list, total, rows.Err()
}

func (r *StockMovementRepo) ProductIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT DISTINCT product_id FROM stock_movements ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("list ledger products: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanMovement(row rowScanner) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var mtype string
	var createdAt int64
	if err := row.Scan(&m.ID, &m.Seq, &m.ProductID, &m.TransactionID, &mtype,
		&m.QuantityBefore, &m.QuantityChange, &m.QuantityAfter, &createdAt); err != nil {
		return nil, err
	}
	m.MovementType = entity.TransactionType(mtype)
	m.CreatedAt = fromNanos(createdAt)
	return &m, nil
}
