package entity

import "time"

// StockMovement entrada del libro mayor de stock (append-only). Una por (transacción, ítem).
// Invariante: QuantityAfter == QuantityBefore + QuantityChange.
type StockMovement struct {
	ID             string
	Seq            int64 // secuencia de inserción asignada por la BD; desempata CreatedAt
	ProductID      string
	TransactionID  string
	MovementType   TransactionType
	QuantityBefore int64
	QuantityChange int64
	QuantityAfter  int64
	CreatedAt      time.Time
}

// Before indica si m fue creado antes que o en el orden del libro (CreatedAt, Seq).
func (m *StockMovement) Before(o *StockMovement) bool {
	if !m.CreatedAt.Equal(o.CreatedAt) {
		return m.CreatedAt.Before(o.CreatedAt)
	}
	return m.Seq < o.Seq
}

// MovementDetail movimiento enriquecido con datos de su transacción (solo lectura, para historial).
type MovementDetail struct {
	StockMovement
	ReferenceNumber string
	TransactionType TransactionType
	TransactionDate time.Time
	Notes           string
	SupplierID      string
	SupplierName    string
}
