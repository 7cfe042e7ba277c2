package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ReversalRequest pide compensar una transacción confirmada.
type ReversalRequest struct {
	TransactionID string
	UserID        string
	Notes         string
}

// ReverseTransactionUseCase crea la transacción compensatoria por la misma vía que
// cualquier otra; el libro nunca se borra ni se edita.
type ReverseTransactionUseCase struct {
	creator *CreateTransactionUseCase
}

// NewReverseTransactionUseCase reutiliza el orquestador.
func NewReverseTransactionUseCase(creator *CreateTransactionUseCase) *ReverseTransactionUseCase {
	return &ReverseTransactionUseCase{creator: creator}
}

// ReverseTransaction emite movimientos con los deltas invertidos. Una transacción solo
// puede revertirse una vez; domain.ErrNotFound si no existe.
func (uc *ReverseTransactionUseCase) ReverseTransaction(ctx context.Context, in ReversalRequest) (*entity.Transaction, error) {
	var fields []domain.FieldError
	if in.TransactionID == "" {
		fields = append(fields, domain.FieldError{Field: "transaction_id", Message: "requerido"})
	}
	if in.UserID == "" {
		fields = append(fields, domain.FieldError{Field: "user_id", Message: "requerido"})
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	var t entity.TransactionType
	return uc.creator.commit(ctx, &t, func(ctx context.Context, s Session) (*entity.Transaction, error) {
		orig, err := s.Transactions().GetByID(ctx, in.TransactionID)
		if err != nil {
			return nil, err
		}
		if orig == nil {
			return nil, domain.ErrNotFound
		}
		t = ReversalType(orig.Type)
		prev, err := s.Transactions().FindReversalOf(ctx, orig.ID)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			return nil, domain.NewValidationError("transaction_id",
				fmt.Sprintf("ya fue revertida por %s", prev.ReferenceNumber))
		}
		items, err := s.Transactions().ListItems(ctx, orig.ID)
		if err != nil {
			return nil, err
		}
		orig.Items = items
		return compensating(orig, in, uc.creator.opts.Now().In(uc.creator.opts.Location)), nil
	})
}

// ReversalType tipo de la transacción compensatoria.
func ReversalType(t entity.TransactionType) entity.TransactionType {
	switch t {
	case entity.TransactionTypeIN, entity.TransactionTypeReturnIN:
		return entity.TransactionTypeReturnOUT
	case entity.TransactionTypeOUT, entity.TransactionTypeReturnOUT:
		return entity.TransactionTypeReturnIN
	case entity.TransactionTypeADJUST:
		return entity.TransactionTypeADJUST
	}
	panic(fmt.Sprintf("ledger: tipo de transacción desconocido %q", string(t)))
}

func compensating(orig *entity.Transaction, in ReversalRequest, now time.Time) *entity.Transaction {
	notes := in.Notes
	if notes == "" {
		notes = "Reversión de " + orig.ReferenceNumber
	}
	txn := &entity.Transaction{
		Type:            ReversalType(orig.Type),
		TransactionDate: dateOnly(now),
		SupplierID:      orig.SupplierID,
		UserID:          in.UserID,
		Notes:           notes,
		ReversalOf:      orig.ID,
	}
	for _, it := range orig.Items {
		qty := it.Quantity
		if orig.Type == entity.TransactionTypeADJUST {
			qty = -qty
		}
		txn.Items = append(txn.Items, &entity.TransactionItem{
			ProductID: it.ProductID,
			Quantity:  qty,
			UnitCost:  it.UnitCost,
			UnitPrice: it.UnitPrice,
		})
	}
	return txn
}
