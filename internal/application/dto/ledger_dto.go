package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// TransactionItemRequest línea del body. En ADJUST quantity es el delta con signo.
type TransactionItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateTransactionRequest body para POST /api/transactions.
type CreateTransactionRequest struct {
	Type            string                   `json:"type"`             // IN, OUT, ADJUST, RETURN_IN, RETURN_OUT
	TransactionDate string                   `json:"transaction_date"` // YYYY-MM-DD
	SupplierID      string                   `json:"supplier_id,omitempty"`
	Notes           string                   `json:"notes,omitempty"`
	Items           []TransactionItemRequest `json:"items"`
}

// ReverseTransactionRequest body para POST /api/transactions/:id/reverse.
type ReverseTransactionRequest struct {
	Notes string `json:"notes,omitempty"`
}

// AmendNotesRequest body para PATCH /api/transactions/:id/notes.
type AmendNotesRequest struct {
	Notes string `json:"notes"`
}

type TransactionItemResponse struct {
	ID        string           `json:"id"`
	ProductID string           `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type StockMovementResponse struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	TransactionID  string    `json:"transaction_id"`
	MovementType   string    `json:"movement_type"`
	QuantityBefore int64     `json:"quantity_before"`
	QuantityChange int64     `json:"quantity_change"`
	QuantityAfter  int64     `json:"quantity_after"`
	CreatedAt      time.Time `json:"created_at"`
}

// TransactionResponse transacción con sus ítems y movimientos.
type TransactionResponse struct {
	ID              string                    `json:"id"`
	ReferenceNumber string                    `json:"reference_number"`
	Type            string                    `json:"type"`
	TransactionDate string                    `json:"transaction_date"`
	SupplierID      string                    `json:"supplier_id,omitempty"`
	UserID          string                    `json:"user_id"`
	Notes           string                    `json:"notes,omitempty"`
	TotalValue      *decimal.Decimal          `json:"total_value,omitempty"`
	ReversalOf      string                    `json:"reversal_of,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
	Items           []TransactionItemResponse `json:"items"`
	Movements       []StockMovementResponse   `json:"movements"`
}

// StockLevelResponse stock actual con umbral mínimo.
type StockLevelResponse struct {
	ProductID    string `json:"product_id"`
	Quantity     int64  `json:"quantity"`
	MinStock     int64  `json:"min_stock"`
	BelowMinimum bool   `json:"below_minimum"`
}

// HistoryQuery query string de GET /api/stock/:productId/history.
type HistoryQuery struct {
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
	From     string `query:"from"` // RFC3339 o YYYY-MM-DD
	To       string `query:"to"`
	Balances bool   `query:"balances"`
}

// HistoryEntryResponse movimiento enriquecido. running_balance solo con balances=true.
type HistoryEntryResponse struct {
	StockMovementResponse
	ReferenceNumber string `json:"reference_number"`
	TransactionType string `json:"transaction_type"`
	TransactionDate string `json:"transaction_date"`
	Notes           string `json:"notes,omitempty"`
	SupplierID      string `json:"supplier_id,omitempty"`
	SupplierName    string `json:"supplier_name,omitempty"`
	RunningBalance  *int64 `json:"running_balance,omitempty"`
	BalanceVerified *bool  `json:"balance_verified,omitempty"`
}

type HistoryResponse struct {
	ProductID string                 `json:"product_id"`
	Entries   []HistoryEntryResponse `json:"entries"`
	PageResponse
}

// AvailabilityItemRequest cantidad (o delta en ADJUST) a verificar.
type AvailabilityItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// AvailabilityRequest body para POST /api/stock/availability.
type AvailabilityRequest struct {
	Type          string                    `json:"type"`
	AllowNegative bool                      `json:"allow_negative,omitempty"`
	Items         []AvailabilityItemRequest `json:"items"`
}

// AvailabilityResponse resultado del pre-chequeo.
type AvailabilityResponse struct {
	Valid      bool                    `json:"valid"`
	Shortfalls []domain.StockShortfall `json:"shortfalls"`
}

type IntegrityErrorResponse struct {
	MovementID string `json:"movement_id"`
	Issue      string `json:"issue"`
	Expected   int64  `json:"expected"`
	Actual     int64  `json:"actual"`
}

type IntegrityReportResponse struct {
	ProductID      string                   `json:"product_id"`
	Valid          bool                     `json:"valid"`
	TotalMovements int                      `json:"total_movements"`
	FinalBalance   int64                    `json:"final_balance"`
	Errors         []IntegrityErrorResponse `json:"errors"`
}

// AdjustmentPlanRequest body para POST /api/stock/:productId/adjustment-plan.
type AdjustmentPlanRequest struct {
	ActualCount int64 `json:"actual_count"`
}

type PhysicalCountRequest struct {
	ProductID   string `json:"product_id"`
	ActualCount int64  `json:"actual_count"`
}

// AdjustmentBatchRequest body para POST /api/stock/adjustment-plan.
type AdjustmentBatchRequest struct {
	Counts []PhysicalCountRequest `json:"counts"`
}

type AdjustmentPlanResponse struct {
	ProductID    string `json:"product_id"`
	CurrentStock int64  `json:"current_stock"`
	ActualStock  int64  `json:"actual_stock"`
	Difference   int64  `json:"difference"`
	Direction    string `json:"direction"` // INCREASE, DECREASE, NO_CHANGE
	Quantity     int64  `json:"quantity"`
}

type AdjustmentSummaryResponse struct {
	Products      int   `json:"products"`
	Increases     int   `json:"increases"`
	Decreases     int   `json:"decreases"`
	Unchanged     int   `json:"unchanged"`
	TotalIncrease int64 `json:"total_increase"`
	TotalDecrease int64 `json:"total_decrease"`
	NetDifference int64 `json:"net_difference"`
}

type AdjustmentBatchResponse struct {
	Plans   []AdjustmentPlanResponse  `json:"plans"`
	Summary AdjustmentSummaryResponse `json:"summary"`
}
