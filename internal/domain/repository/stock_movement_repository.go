package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// HistoryFilter ventana y paginación para el historial de un producto.
type HistoryFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// StockMovementRepository puerto del libro de movimientos (append-only: no hay Update ni Delete).
type StockMovementRepository interface {
	// Create inserta el movimiento y completa Seq.
	Create(ctx context.Context, movement *entity.StockMovement) error
	// Latest último movimiento del producto por (created_at, seq); nil si no tiene.
	Latest(ctx context.Context, productID string) (*entity.StockMovement, error)
	// LatestBalances QuantityAfter del último movimiento de cada producto; los que no
	// tienen movimientos no aparecen en el mapa.
	LatestBalances(ctx context.Context, productIDs []string) (map[string]int64, error)
	// ListByProduct todos los movimientos del producto en orden ascendente.
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error)
	// History página más reciente primero, enriquecida con la transacción; devuelve también el total.
	History(ctx context.Context, productID string, filter HistoryFilter) ([]*entity.MovementDetail, int, error)
	// ProductIDs productos que tienen al menos un movimiento.
	ProductIDs(ctx context.Context) ([]string, error)
}
