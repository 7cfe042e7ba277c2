package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// BalanceReader resuelve stock actual e historial desde el libro. Solo lectura, sin bloqueos.
type BalanceReader struct {
	movements repository.StockMovementRepository
	products  repository.ProductRepository
}

// NewBalanceReader construye el lector sobre repositorios atados al pool (no a una tx).
func NewBalanceReader(movements repository.StockMovementRepository, products repository.ProductRepository) *BalanceReader {
	return &BalanceReader{movements: movements, products: products}
}

// CurrentStock QuantityAfter del último movimiento del producto, o 0.
func (r *BalanceReader) CurrentStock(ctx context.Context, productID string) (int64, error) {
	if productID == "" {
		return 0, domain.NewValidationError("product_id", "requerido")
	}
	last, err := r.movements.Latest(ctx, productID)
	if err != nil {
		return 0, err
	}
	if last == nil {
		return 0, nil
	}
	return last.QuantityAfter, nil
}

// CurrentStockBatch igual que CurrentStock para N productos; todos los IDs pedidos aparecen.
func (r *BalanceReader) CurrentStockBatch(ctx context.Context, productIDs []string) (map[string]int64, error) {
	return currentBalances(ctx, r.movements, productIDs)
}

// StockLevels stock actual junto al umbral mínimo del catálogo.
func (r *BalanceReader) StockLevels(ctx context.Context, productIDs []string) ([]entity.StockLevel, error) {
	balances, err := r.CurrentStockBatch(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	products, err := r.products.GetMany(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	levels := make([]entity.StockLevel, 0, len(productIDs))
	for _, id := range uniqueIDs(productIDs) {
		level := entity.StockLevel{ProductID: id, Quantity: balances[id]}
		if p, ok := products[id]; ok {
			level.MinStock = p.MinStock
			level.BelowMinimum = level.Quantity < p.MinStock
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// CheckAvailability pre-chequeo fuera de una unidad de trabajo. El resultado puede quedar
// obsoleto antes del commit; el orquestador vuelve a validar bajo bloqueo.
// allowNegative solo aplica a ADJUST.
func (r *BalanceReader) CheckAvailability(ctx context.Context, t entity.TransactionType, items []inventory.StockRequest, allowNegative bool) (AvailabilityResult, error) {
	return NewAvailabilityValidator().Check(ctx, r.movements, t, items, allowNegative && t.AllowsNegative())
}

// HistoryOptions ventana opcional sobre created_at y paginación.
type HistoryOptions struct {
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
	WithBalances bool // recalcula el saldo acumulado de la página
}

// HistoryEntry movimiento del historial. RunningBalance/BalanceVerified solo con WithBalances.
type HistoryEntry struct {
	*entity.MovementDetail
	RunningBalance  int64
	BalanceVerified bool
}

// HistoryPage página de historial, más reciente primero.
type HistoryPage struct {
	ProductID string
	Entries   []HistoryEntry
	Total     int
	Limit     int
	Offset    int
}

// History movimientos del producto, más recientes primero, enriquecidos con su transacción.
func (r *BalanceReader) History(ctx context.Context, productID string, opts HistoryOptions) (*HistoryPage, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, domain.NewValidationError("limit", "limit y offset no pueden ser negativos")
	}
	if opts.From != nil && opts.To != nil && opts.To.Before(*opts.From) {
		return nil, domain.NewValidationError("to", "debe ser posterior a from")
	}
	if opts.Limit == 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}

	details, total, err := r.movements.History(ctx, productID, repository.HistoryFilter{
		From: opts.From, To: opts.To, Limit: opts.Limit, Offset: opts.Offset,
	})
	if err != nil {
		return nil, err
	}
	page := &HistoryPage{
		ProductID: productID,
		Entries:   make([]HistoryEntry, 0, len(details)),
		Total:     total,
		Limit:     opts.Limit,
		Offset:    opts.Offset,
	}
	var verified map[string]inventory.BalancedMovement
	if opts.WithBalances && len(details) > 0 {
		movs := make([]*entity.StockMovement, 0, len(details))
		for _, d := range details {
			movs = append(movs, &d.StockMovement)
		}
		verified = make(map[string]inventory.BalancedMovement, len(movs))
		for _, b := range inventory.RunningBalances(movs) {
			verified[b.ID] = b
		}
	}
	for _, d := range details {
		entry := HistoryEntry{MovementDetail: d}
		if b, ok := verified[d.ID]; ok {
			entry.RunningBalance = b.RunningBalance
			entry.BalanceVerified = b.BalanceVerified
		}
		page.Entries = append(page.Entries, entry)
	}
	return page, nil
}

// RunningBalances expone el recorrido de diagnóstico sobre un conjunto arbitrario de movimientos.
func (r *BalanceReader) RunningBalances(movements []*entity.StockMovement) []inventory.BalancedMovement {
	return inventory.RunningBalances(movements)
}

// currentBalances lee saldos en lote completando con 0 los productos sin movimientos.
func currentBalances(ctx context.Context, movements repository.StockMovementRepository, productIDs []string) (map[string]int64, error) {
	ids := uniqueIDs(productIDs)
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	latest, err := movements.LatestBalances(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = latest[id]
	}
	return out, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
