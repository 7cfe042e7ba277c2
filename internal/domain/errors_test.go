package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

func TestKindOf_DespachaPorTipoNoPorTexto(t *testing.T) {
	var err error = fmt.Errorf("crear transacción: %w", &domain.InsufficientStockError{
		Items: []domain.StockShortfall{{ProductID: "p1", CurrentStock: 50, RequestedQuantity: 60, Shortfall: 10}},
	})
	assert.Equal(t, domain.KindInsufficientStock, domain.KindOf(err))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, int64(10), ise.Items[0].Shortfall)

	assert.Equal(t, domain.KindValidation, domain.KindOf(domain.NewValidationError("items", "requerido")))
	assert.Equal(t, domain.ErrorKind(0), domain.KindOf(errors.New("otro")))
}

func TestValidationError_Mensaje(t *testing.T) {
	err := &domain.ValidationError{Fields: []domain.FieldError{
		{Field: "supplier_id", Message: "requerido"},
		{Field: "items[0].unit_cost", Message: "debe ser positivo"},
	}}
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "supplier_id: requerido")
	assert.Contains(t, err.Error(), "items[0].unit_cost: debe ser positivo")
}

func TestPersistenceError_UnwrapDoble(t *testing.T) {
	cause := errors.New("conexión cerrada")
	err := &domain.PersistenceError{Op: "commit", Err: cause, Retryable: true}
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.True(t, domain.IsRetryable(fmt.Errorf("run: %w", err)))
	assert.False(t, domain.IsRetryable(&domain.PersistenceError{Op: "x"}))
	assert.Equal(t, "PERSISTENCE", domain.KindPersistence.String())
}
