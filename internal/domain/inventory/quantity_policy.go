package inventory

import (
	"fmt"
	"math"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MaxQuantity tope de cantidad por ítem y de conteo físico.
const MaxQuantity int64 = 1_000_000_000_000

// Delta traduce (tipo, cantidad) al cambio con signo que se registra en el libro.
//
//	IN, RETURN_IN   → +|q|
//	OUT, RETURN_OUT → −|q|
//	ADJUST          → q (el llamador entrega el delta exacto)
//
// Un tipo desconocido es un error de programación: entra en pánico.
func Delta(t entity.TransactionType, quantity int64) int64 {
	switch t {
	case entity.TransactionTypeIN, entity.TransactionTypeReturnIN:
		return abs(quantity)
	case entity.TransactionTypeOUT, entity.TransactionTypeReturnOUT:
		return -abs(quantity)
	case entity.TransactionTypeADJUST:
		return quantity
	}
	panic(fmt.Sprintf("inventory: tipo de transacción desconocido %q", string(t)))
}

// ApplyDelta suma delta al saldo. ok=false si el resultado desborda int64.
func ApplyDelta(balance, delta int64) (after int64, ok bool) {
	after = balance + delta
	if (delta > 0 && after < balance) || (delta < 0 && after > balance) {
		return 0, false
	}
	return after, true
}

// WithinLimit indica si |q| no supera MaxQuantity.
func WithinLimit(q int64) bool {
	return q >= -MaxQuantity && q <= MaxQuantity
}

// abs satura en MaxInt64 para MinInt64.
func abs(n int64) int64 {
	if n == math.MinInt64 {
		return math.MaxInt64
	}
	if n < 0 {
		return -n
	}
	return n
}
