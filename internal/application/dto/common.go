package dto

import "github.com/jhoicas/stock-ledger/internal/domain"

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP. Fields solo en VALIDATION, Shortfalls solo en INSUFFICIENT_STOCK.
type ErrorResponse struct {
	Code       string                  `json:"code"`
	Message    string                  `json:"message"`
	Fields     []domain.FieldError     `json:"fields,omitempty"`
	Shortfalls []domain.StockShortfall `json:"shortfalls,omitempty"`
}
