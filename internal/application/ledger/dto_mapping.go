package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

const dateLayout = "2006-01-02"

// FromDTO convierte el body HTTP en la variante tipada. userID viene del token, no del body.
func FromDTO(in dto.CreateTransactionRequest, userID string) (TransactionRequest, error) {
	t, ok := entity.ParseTransactionType(in.Type)
	if !ok {
		return nil, domain.NewValidationError("type", "debe ser IN, OUT, ADJUST, RETURN_IN o RETURN_OUT")
	}
	var date time.Time
	if in.TransactionDate != "" {
		d, err := time.Parse(dateLayout, in.TransactionDate)
		if err != nil {
			return nil, domain.NewValidationError("transaction_date", "formato esperado YYYY-MM-DD")
		}
		date = d
	}
	h := RequestHeader{TransactionDate: date, UserID: userID, SupplierID: in.SupplierID, Notes: in.Notes}

	switch t {
	case entity.TransactionTypeIN:
		req := ReceiptRequest{RequestHeader: h}
		for _, it := range in.Items {
			req.Items = append(req.Items, ReceiptLine{ProductID: it.ProductID, Quantity: it.Quantity, UnitCost: deref(it.UnitCost)})
		}
		return req, nil
	case entity.TransactionTypeOUT:
		req := SaleRequest{RequestHeader: h}
		for _, it := range in.Items {
			req.Items = append(req.Items, SaleLine{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: deref(it.UnitPrice)})
		}
		return req, nil
	case entity.TransactionTypeADJUST:
		req := AdjustmentRequest{RequestHeader: h}
		var fields []domain.FieldError
		for i, it := range in.Items {
			if it.UnitCost != nil || it.UnitPrice != nil {
				fields = append(fields, fieldErr(i, "unit_cost", "los ajustes no llevan costo ni precio"))
			}
			req.Items = append(req.Items, AdjustmentLine{ProductID: it.ProductID, Delta: it.Quantity})
		}
		if len(fields) > 0 {
			return nil, &domain.ValidationError{Fields: fields}
		}
		return req, nil
	case entity.TransactionTypeReturnIN:
		return CustomerReturnRequest{RequestHeader: h, Items: returnLines(in.Items)}, nil
	case entity.TransactionTypeReturnOUT:
		return SupplierReturnRequest{RequestHeader: h, Items: returnLines(in.Items)}, nil
	}
	panic(fmt.Sprintf("ledger: tipo sin variante %q", string(t)))
}

func returnLines(items []dto.TransactionItemRequest) []ReturnLine {
	out := make([]ReturnLine, 0, len(items))
	for _, it := range items {
		out = append(out, ReturnLine{
			ProductID: it.ProductID, Quantity: it.Quantity,
			UnitCost: nullable(it.UnitCost), UnitPrice: nullable(it.UnitPrice),
		})
	}
	return out
}

// AvailabilityFromDTO tipo e ítems para el pre-chequeo de disponibilidad.
func AvailabilityFromDTO(in dto.AvailabilityRequest) (entity.TransactionType, []inventory.StockRequest, error) {
	t, ok := entity.ParseTransactionType(in.Type)
	if !ok {
		return "", nil, domain.NewValidationError("type", "debe ser IN, OUT, ADJUST, RETURN_IN o RETURN_OUT")
	}
	if len(in.Items) == 0 {
		return "", nil, domain.NewValidationError("items", "debe incluir al menos un ítem")
	}
	var fields []domain.FieldError
	items := make([]inventory.StockRequest, 0, len(in.Items))
	for i, it := range in.Items {
		if it.ProductID == "" {
			fields = append(fields, fieldErr(i, "product_id", "requerido"))
		}
		if !inventory.WithinLimit(it.Quantity) {
			fields = append(fields, fieldErr(i, "quantity", limitMessage))
		}
		items = append(items, inventory.StockRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if len(fields) > 0 {
		return "", nil, &domain.ValidationError{Fields: fields}
	}
	return t, items, nil
}

// ToTransactionResponse entidad → respuesta HTTP.
func ToTransactionResponse(t *entity.Transaction) dto.TransactionResponse {
	out := dto.TransactionResponse{
		ID:              t.ID,
		ReferenceNumber: t.ReferenceNumber,
		Type:            string(t.Type),
		TransactionDate: t.TransactionDate.Format(dateLayout),
		SupplierID:      t.SupplierID,
		UserID:          t.UserID,
		Notes:           t.Notes,
		TotalValue:      pointer(t.TotalValue),
		ReversalOf:      t.ReversalOf,
		CreatedAt:       t.CreatedAt,
		Items:           make([]dto.TransactionItemResponse, 0, len(t.Items)),
		Movements:       make([]dto.StockMovementResponse, 0, len(t.Movements)),
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, dto.TransactionItemResponse{
			ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity,
			UnitCost: pointer(it.UnitCost), UnitPrice: pointer(it.UnitPrice),
		})
	}
	for _, m := range t.Movements {
		out.Movements = append(out.Movements, toMovementResponse(m))
	}
	return out
}

func toMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		TransactionID:  m.TransactionID,
		MovementType:   string(m.MovementType),
		QuantityBefore: m.QuantityBefore,
		QuantityChange: m.QuantityChange,
		QuantityAfter:  m.QuantityAfter,
		CreatedAt:      m.CreatedAt,
	}
}

func ToStockLevelResponses(levels []entity.StockLevel) []dto.StockLevelResponse {
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, dto.StockLevelResponse{
			ProductID: l.ProductID, Quantity: l.Quantity, MinStock: l.MinStock, BelowMinimum: l.BelowMinimum,
		})
	}
	return out
}

// ToHistoryResponse withBalances decide si se exponen running_balance y balance_verified.
func ToHistoryResponse(p *HistoryPage, withBalances bool) dto.HistoryResponse {
	out := dto.HistoryResponse{
		ProductID:    p.ProductID,
		Entries:      make([]dto.HistoryEntryResponse, 0, len(p.Entries)),
		PageResponse: dto.PageResponse{Limit: p.Limit, Offset: p.Offset, Total: p.Total},
	}
	for _, e := range p.Entries {
		entry := dto.HistoryEntryResponse{
			StockMovementResponse: toMovementResponse(&e.StockMovement),
			ReferenceNumber:       e.ReferenceNumber,
			TransactionType:       string(e.TransactionType),
			TransactionDate:       e.TransactionDate.Format(dateLayout),
			Notes:                 e.Notes,
			SupplierID:            e.SupplierID,
			SupplierName:          e.SupplierName,
		}
		if withBalances {
			rb, ok := e.RunningBalance, e.BalanceVerified
			entry.RunningBalance, entry.BalanceVerified = &rb, &ok
		}
		out.Entries = append(out.Entries, entry)
	}
	return out
}

func ToIntegrityResponse(r inventory.IntegrityReport) dto.IntegrityReportResponse {
	out := dto.IntegrityReportResponse{
		ProductID:      r.ProductID,
		Valid:          r.Valid,
		TotalMovements: r.TotalMovements,
		FinalBalance:   r.FinalBalance,
		Errors:         make([]dto.IntegrityErrorResponse, 0, len(r.Errors)),
	}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, dto.IntegrityErrorResponse{
			MovementID: e.MovementID, Issue: string(e.Issue), Expected: e.Expected, Actual: e.Actual,
		})
	}
	return out
}

func ToAdjustmentPlanResponse(p inventory.AdjustmentPlan) dto.AdjustmentPlanResponse {
	return dto.AdjustmentPlanResponse{
		ProductID:    p.ProductID,
		CurrentStock: p.CurrentStock,
		ActualStock:  p.ActualStock,
		Difference:   p.Difference,
		Direction:    string(p.Direction),
		Quantity:     p.Quantity,
	}
}

func ToAdjustmentBatchResponse(b *AdjustmentBatch) dto.AdjustmentBatchResponse {
	out := dto.AdjustmentBatchResponse{
		Plans: make([]dto.AdjustmentPlanResponse, 0, len(b.Plans)),
		Summary: dto.AdjustmentSummaryResponse{
			Products:      b.Summary.Products,
			Increases:     b.Summary.Increases,
			Decreases:     b.Summary.Decreases,
			Unchanged:     b.Summary.Unchanged,
			TotalIncrease: b.Summary.TotalIncrease,
			TotalDecrease: b.Summary.TotalDecrease,
			NetDifference: b.Summary.NetDifference,
		},
	}
	for _, p := range b.Plans {
		out.Plans = append(out.Plans, ToAdjustmentPlanResponse(p))
	}
	return out
}

func deref(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func pointer(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
