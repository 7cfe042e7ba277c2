package ledger

import (
	"context"
	"unicode/utf8"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const maxNotesLength = 2000

// TransactionQueryUseCase lectura de transacciones y enmienda de notas.
type TransactionQueryUseCase struct {
	transactions repository.TransactionRepository
	movements    repository.StockMovementRepository
}

// NewTransactionQueryUseCase construye el caso de uso sobre repositorios del pool.
func NewTransactionQueryUseCase(transactions repository.TransactionRepository, movements repository.StockMovementRepository) *TransactionQueryUseCase {
	return &TransactionQueryUseCase{transactions: transactions, movements: movements}
}

// GetTransaction cabecera con ítems y movimientos.
func (uc *TransactionQueryUseCase) GetTransaction(ctx context.Context, id string) (*entity.Transaction, error) {
	txn, err := uc.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, domain.ErrNotFound
	}
	if txn.Items, err = uc.transactions.ListItems(ctx, id); err != nil {
		return nil, err
	}
	if txn.Movements, err = uc.movements.ListByTransaction(ctx, id); err != nil {
		return nil, err
	}
	return txn, nil
}

// AmendNotes única modificación permitida sobre una transacción confirmada.
func (uc *TransactionQueryUseCase) AmendNotes(ctx context.Context, id, notes string) (*entity.Transaction, error) {
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return nil, domain.NewValidationError("notes", "máximo 2000 caracteres")
	}
	if err := uc.transactions.UpdateNotes(ctx, id, notes); err != nil {
		return nil, err
	}
	return uc.GetTransaction(ctx, id)
}
