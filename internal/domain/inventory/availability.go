package inventory

import (
	"math"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockRequest cantidad solicitada para un producto dentro de un lote.
type StockRequest struct {
	ProductID string
	Quantity  int64
}

// CheckAvailability proyecta cada ítem sobre el saldo actual y devuelve los que dejarían
// el stock en negativo. Solo OUT, RETURN_OUT y ADJUST pueden fallar; con allowNegative
// nunca falla. Ítems repetidos del mismo producto se proyectan de forma acumulada.
// Una proyección que desborda int64 se satura, así que un desborde hacia abajo
// siempre se reporta como faltante.
func CheckAvailability(
	t entity.TransactionType,
	items []StockRequest,
	balances map[string]int64,
	allowNegative bool,
) []domain.StockShortfall {
	if !t.ReducesStock() || allowNegative {
		return nil
	}
	projected := make(map[string]int64, len(items))
	var failures []domain.StockShortfall
	for _, it := range items {
		current, ok := projected[it.ProductID]
		if !ok {
			current = balances[it.ProductID]
		}
		delta := Delta(t, it.Quantity)
		next, ok := ApplyDelta(current, delta)
		if !ok {
			next = math.MaxInt64
			if delta < 0 {
				next = math.MinInt64
			}
		}
		projected[it.ProductID] = next
		if next < 0 {
			failures = append(failures, domain.StockShortfall{
				ProductID:         it.ProductID,
				CurrentStock:      current,
				RequestedQuantity: abs(delta),
				Shortfall:         abs(next),
			})
		}
	}
	return failures
}
