package inventory

import (
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// BalancedMovement movimiento con el saldo recalculado al recorrer el libro.
type BalancedMovement struct {
	*entity.StockMovement
	RunningBalance  int64
	BalanceVerified bool
}

// SortLedger ordena in-place por (CreatedAt, Seq) ascendente.
func SortLedger(movements []*entity.StockMovement) {
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].Before(movements[j])
	})
}

// RunningBalances ordena una copia de los movimientos de un producto y recalcula el saldo
// acumulado desde el QuantityBefore de la primera fila. BalanceVerified indica si el
// saldo recalculado coincide con el QuantityAfter almacenado. Solo diagnóstico.
func RunningBalances(movements []*entity.StockMovement) []BalancedMovement {
	if len(movements) == 0 {
		return nil
	}
	ordered := make([]*entity.StockMovement, len(movements))
	copy(ordered, movements)
	SortLedger(ordered)

	out := make([]BalancedMovement, 0, len(ordered))
	running := ordered[0].QuantityBefore
	for _, m := range ordered {
		running += m.QuantityChange
		out = append(out, BalancedMovement{
			StockMovement:   m,
			RunningBalance:  running,
			BalanceVerified: running == m.QuantityAfter,
		})
	}
	return out
}
