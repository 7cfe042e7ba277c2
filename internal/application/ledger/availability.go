package ledger

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// AvailabilityResult resultado de la validación de disponibilidad.
type AvailabilityResult struct {
	Valid  bool
	Errors []domain.StockShortfall
}

// Err convierte un resultado inválido en *domain.InsufficientStockError.
func (r AvailabilityResult) Err() error {
	if r.Valid {
		return nil
	}
	return &domain.InsufficientStockError{Items: r.Errors}
}

// AvailabilityValidator determina si un lote dejaría algún producto en negativo.
type AvailabilityValidator struct{}

// NewAvailabilityValidator construye el validador.
func NewAvailabilityValidator() *AvailabilityValidator {
	return &AvailabilityValidator{}
}

// Check lee en un solo lote los saldos de los productos referenciados y proyecta cada ítem.
// movements puede estar atado al pool (pre-chequeo) o a la sesión (dentro de la unidad de trabajo).
func (v *AvailabilityValidator) Check(
	ctx context.Context,
	movements repository.StockMovementRepository,
	t entity.TransactionType,
	items []inventory.StockRequest,
	allowNegative bool,
) (AvailabilityResult, error) {
	if !t.Valid() {
		return AvailabilityResult{}, domain.NewValidationError("type", "tipo de transacción desconocido")
	}
	if !t.ReducesStock() || allowNegative {
		return AvailabilityResult{Valid: true}, nil
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	balances, err := currentBalances(ctx, movements, ids)
	if err != nil {
		return AvailabilityResult{}, err
	}
	failures := inventory.CheckAvailability(t, items, balances, allowNegative)
	return AvailabilityResult{Valid: len(failures) == 0, Errors: failures}, nil
}

func stockRequests(items []*entity.TransactionItem) []inventory.StockRequest {
	out := make([]inventory.StockRequest, 0, len(items))
	for _, it := range items {
		out = append(out, inventory.StockRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}
