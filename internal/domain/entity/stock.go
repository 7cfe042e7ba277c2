package entity

// StockLevel stock actual derivado del libro (último QuantityAfter) junto al umbral del catálogo.
type StockLevel struct {
	ProductID    string
	Quantity     int64
	MinStock     int64
	BelowMinimum bool
}
