package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// MovementWriter recalcula before/after en el momento del commit y agrega filas al libro.
// Solo opera con una Session activa.
type MovementWriter struct{}

// NewMovementWriter construye el escritor.
func NewMovementWriter() *MovementWriter {
	return &MovementWriter{}
}

// Write agrega un StockMovement por ítem de txn. Revalida la disponibilidad con el saldo
// leído dentro de la sesión y aborta toda la unidad de trabajo si algún producto queda en
// negativo sin allowNegative. Un saldo que desborda int64 aborta con ValidationError.
func (w *MovementWriter) Write(
	ctx context.Context,
	s Session,
	txn *entity.Transaction,
	allowNegative bool,
	now func() time.Time,
) ([]*entity.StockMovement, error) {
	movements := make([]*entity.StockMovement, 0, len(txn.Items))
	var failures []domain.StockShortfall
	for i, item := range txn.Items {
		last, err := s.Movements().Latest(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		createdAt := now()
		var before int64
		if last != nil {
			before = last.QuantityAfter
			// El libro se ordena por creación: nunca antes que el movimiento previo.
			if createdAt.Before(last.CreatedAt) {
				createdAt = last.CreatedAt
			}
		}
		delta := inventory.Delta(txn.Type, item.Quantity)
		after, ok := inventory.ApplyDelta(before, delta)
		if !ok {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "el saldo resultante excede el máximo representable")
		}
		if txn.Type.ReducesStock() && !allowNegative && after < 0 {
			failures = append(failures, domain.StockShortfall{
				ProductID:         item.ProductID,
				CurrentStock:      before,
				RequestedQuantity: absInt(delta),
				Shortfall:         -after,
			})
			continue
		}
		if len(failures) > 0 {
			continue
		}
		mov := &entity.StockMovement{
			ID:             uuid.New().String(),
			ProductID:      item.ProductID,
			TransactionID:  txn.ID,
			MovementType:   txn.Type,
			QuantityBefore: before,
			QuantityChange: delta,
			QuantityAfter:  after,
			CreatedAt:      createdAt,
		}
		if err := s.Movements().Create(ctx, mov); err != nil {
			return nil, err
		}
		movements = append(movements, mov)
	}
	if len(failures) > 0 {
		return nil, &domain.InsufficientStockError{Items: failures}
	}
	return movements, nil
}

func absInt(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
