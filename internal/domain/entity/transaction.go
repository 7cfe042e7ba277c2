package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tipo de transacción de inventario.
type TransactionType string

const (
	TransactionTypeIN        TransactionType = "IN"         // entrada (compra a proveedor)
	TransactionTypeOUT       TransactionType = "OUT"        // salida (venta)
	TransactionTypeADJUST    TransactionType = "ADJUST"     // ajuste por conteo físico, delta con signo
	TransactionTypeReturnIN  TransactionType = "RETURN_IN"  // devolución de cliente
	TransactionTypeReturnOUT TransactionType = "RETURN_OUT" // devolución a proveedor
)

// TransactionTypes lista en orden estable, útil para validaciones y métricas.
var TransactionTypes = []TransactionType{
	TransactionTypeIN,
	TransactionTypeOUT,
	TransactionTypeADJUST,
	TransactionTypeReturnIN,
	TransactionTypeReturnOUT,
}

// ParseTransactionType convierte el texto recibido en un tipo conocido.
func ParseTransactionType(s string) (TransactionType, bool) {
	t := TransactionType(s)
	return t, t.Valid()
}

// Valid indica si el tipo es uno de los cinco soportados.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIN, TransactionTypeOUT, TransactionTypeADJUST,
		TransactionTypeReturnIN, TransactionTypeReturnOUT:
		return true
	}
	return false
}

// ReducesStock indica si el tipo puede disminuir el stock (sujeto a validación de disponibilidad).
func (t TransactionType) ReducesStock() bool {
	return t == TransactionTypeOUT || t == TransactionTypeReturnOUT || t == TransactionTypeADJUST
}

// AllowsNegative solo ADJUST: un conteo físico puede mostrar déficit.
func (t TransactionType) AllowsNegative() bool {
	return t == TransactionTypeADJUST
}

// Transaction cabecera de una transacción de inventario. Inmutable tras crearse,
// salvo Notes que puede enmendarse.
type Transaction struct {
	ID              string
	ReferenceNumber string // TXN-YYYYMMDD-NNNN
	Type            TransactionType
	TransactionDate time.Time // fecha de negocio (solo fecha)
	SupplierID      string    // obligatorio en IN
	UserID          string
	Notes           string
	TotalValue      decimal.NullDecimal // ausente si ningún ítem trae costo o precio
	ReversalOf      string              // ID de la transacción que compensa, si aplica
	CreatedAt       time.Time

	Items     []*TransactionItem
	Movements []*StockMovement
}

// TransactionItem línea de una transacción. Se crea junto con la cabecera y nunca se modifica.
type TransactionItem struct {
	ID            string
	TransactionID string
	ProductID     string
	Quantity      int64 // magnitud positiva; en ADJUST es el delta con signo
	UnitCost      decimal.NullDecimal
	UnitPrice     decimal.NullDecimal
}

// ProductIDs devuelve los productos referenciados, sin repetir y en orden de aparición.
func (t *Transaction) ProductIDs() []string {
	seen := make(map[string]struct{}, len(t.Items))
	ids := make([]string, 0, len(t.Items))
	for _, it := range t.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}
