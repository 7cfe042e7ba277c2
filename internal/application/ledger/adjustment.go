package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// PhysicalCount conteo físico de un producto.
type PhysicalCount struct {
	ProductID   string
	ActualCount int64
}

// AdjustmentBatch planes por producto más el resumen del lote.
type AdjustmentBatch struct {
	Plans   []inventory.AdjustmentPlan
	Summary inventory.AdjustmentSummary
}

// AdjustmentCalculator compara el libro contra conteos físicos. No escribe nada: el
// resultado sirve para precargar un AdjustmentRequest.
type AdjustmentCalculator struct {
	movements repository.StockMovementRepository
}

func NewAdjustmentCalculator(movements repository.StockMovementRepository) *AdjustmentCalculator {
	return &AdjustmentCalculator{movements: movements}
}

func (c *AdjustmentCalculator) CalculateAdjustment(ctx context.Context, productID string, actualCount int64) (inventory.AdjustmentPlan, error) {
	batch, err := c.CalculateAdjustmentBatch(ctx, []PhysicalCount{{ProductID: productID, ActualCount: actualCount}})
	if err != nil {
		return inventory.AdjustmentPlan{}, err
	}
	return batch.Plans[0], nil
}

// CalculateAdjustmentBatch un plan por conteo, en el mismo orden recibido.
func (c *AdjustmentCalculator) CalculateAdjustmentBatch(ctx context.Context, counts []PhysicalCount) (*AdjustmentBatch, error) {
	if len(counts) == 0 {
		return nil, domain.NewValidationError("counts", "debe incluir al menos un conteo")
	}
	var fields []domain.FieldError
	ids := make([]string, 0, len(counts))
	for i, cnt := range counts {
		if cnt.ProductID == "" {
			fields = append(fields, domain.FieldError{Field: fmt.Sprintf("counts[%d].product_id", i), Message: "requerido"})
		}
		switch {
		case cnt.ActualCount < 0:
			fields = append(fields, domain.FieldError{Field: fmt.Sprintf("counts[%d].actual_count", i), Message: "no puede ser negativo"})
		case cnt.ActualCount > inventory.MaxQuantity:
			fields = append(fields, domain.FieldError{Field: fmt.Sprintf("counts[%d].actual_count", i), Message: limitMessage})
		}
		ids = append(ids, cnt.ProductID)
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}
	balances, err := currentBalances(ctx, c.movements, ids)
	if err != nil {
		return nil, err
	}
	plans := make([]inventory.AdjustmentPlan, 0, len(counts))
	for _, cnt := range counts {
		plans = append(plans, inventory.PlanAdjustment(cnt.ProductID, balances[cnt.ProductID], cnt.ActualCount))
	}
	return &AdjustmentBatch{Plans: plans, Summary: inventory.Summarize(plans)}, nil
}

// ToRequest arma el ADJUST con los planes que tienen diferencia. ok=false si no hay nada que ajustar.
func (b *AdjustmentBatch) ToRequest(header RequestHeader) (AdjustmentRequest, bool) {
	req := AdjustmentRequest{RequestHeader: header}
	for _, p := range b.Plans {
		if p.Difference != 0 {
			req.Items = append(req.Items, AdjustmentLine{ProductID: p.ProductID, Delta: p.Difference})
		}
	}
	return req, len(req.Items) > 0
}
