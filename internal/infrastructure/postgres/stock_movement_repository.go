package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `m.id, m.seq, m.product_id, m.transaction_id, m.movement_type,
	m.quantity_before, m.quantity_change, m.quantity_after, m.created_at`

// StockMovementRepo libro de movimientos (append-only, usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta el movimiento y completa Seq.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, transaction_id, movement_type, quantity_before, quantity_change, quantity_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ProductID, m.TransactionID, string(m.MovementType),
		m.QuantityBefore, m.QuantityChange, m.QuantityAfter, m.CreatedAt,
	).Scan(&m.Seq)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

func (r *StockMovementRepo) Latest(ctx context.Context, productID string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements m
		WHERE m.product_id = $1 ORDER BY m.created_at DESC, m.seq DESC LIMIT 1`
	var m entity.StockMovement
	if err := r.q.QueryRow(ctx, query, productID).Scan(movementDest(&m)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest stock movement: %w", err)
	}
	return &m, nil
}

// LatestBalances un solo round-trip con DISTINCT ON.
func (r *StockMovementRepo) LatestBalances(ctx context.Context, productIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT DISTINCT ON (product_id) product_id, quantity_after
		FROM stock_movements
		WHERE product_id = ANY($1)
		ORDER BY product_id, created_at DESC, seq DESC`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("latest balances: %w", err)
	}
	defer rows.Close()
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
		WHERE m.product_id = $1 ORDER BY m.created_at, m.seq`, productID)
}

func (r *StockMovementRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements m
		WHERE m.transaction_id = $1 ORDER BY m.seq`, transactionID)
}

func (r *StockMovementRepo) list(ctx context.Context, query string, arg string) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(movementDest(&m)...); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// History página más reciente primero junto al total de la ventana.
func (r *StockMovementRepo) History(ctx context.Context, productID string, f repository.HistoryFilter) ([]*entity.MovementDetail, int, error) {
	where := `m.product_id = $1
		AND ($2::timestamptz IS NULL OR m.created_at >= $2)
		AND ($3::timestamptz IS NULL OR m.created_at <= $3)`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements m WHERE `+where,
		productID, f.From, f.To).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}

	query := `
		SELECT ` + movementColumns + `, t.reference_number, t.type, t.transaction_date, t.notes,
			COALESCE(t.supplier_id, ''), COALESCE(s.name, '')
		FROM stock_movements m
		JOIN transactions t ON t.id = m.transaction_id
		LEFT JOIN suppliers s ON s.id = t.supplier_id
		WHERE ` + where + `
		ORDER BY m.created_at DESC, m.seq DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, productID, f.From, f.To, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementDetail
	for rows.Next() {
		var d entity.MovementDetail
		var typ string
		dest := append(movementDest(&d.StockMovement),
			&d.ReferenceNumber, &typ, &d.TransactionDate, &d.Notes, &d.SupplierID, &d.SupplierName)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan history: %w", err)
		}
		d.TransactionType = entity.TransactionType(typ)
		list = append(list, &d)
	}
	return list, total, rows.Err()
}

func (r *StockMovementRepo) ProductIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT product_id FROM stock_movements ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("list ledger products: %w", err)
	}
	defer rows.Close()
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

// movementDest destinos de Scan en el orden de movementColumns.
func movementDest(m *entity.StockMovement) []any {
	return []any{&m.ID, &m.Seq, &m.ProductID, &m.TransactionID, (*string)(&m.MovementType),
		&m.QuantityBefore, &m.QuantityChange, &m.QuantityAfter, &m.CreatedAt}
}
