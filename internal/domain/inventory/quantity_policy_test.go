package inventory_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestDelta(t *testing.T) {
	cases := []struct {
		name string
		typ  entity.TransactionType
		qty  int64
		want int64
	}{
		{"IN suma", entity.TransactionTypeIN, 10, 10},
		{"IN ignora signo", entity.TransactionTypeIN, -10, 10},
		{"RETURN_IN suma", entity.TransactionTypeReturnIN, 3, 3},
		{"OUT resta", entity.TransactionTypeOUT, 25, -25},
		{"OUT con signo negativo resta igual", entity.TransactionTypeOUT, -25, -25},
		{"RETURN_OUT resta", entity.TransactionTypeReturnOUT, 4, -4},
		{"ADJUST positivo", entity.TransactionTypeADJUST, 5, 5},
		{"ADJUST negativo", entity.TransactionTypeADJUST, -7, -7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, inventory.Delta(tc.typ, tc.qty))
		})
	}
}

// Un tipo desconocido es un error de programación, no de usuario.
func TestDelta_TipoDesconocidoEntraEnPanico(t *testing.T) {
	assert.Panics(t, func() {
		inventory.Delta(entity.TransactionType("TRANSFER"), 1)
	})
}

func TestDelta_MinInt64NoCambiaDeSigno(t *testing.T) {
	assert.Equal(t, int64(math.MaxInt64), inventory.Delta(entity.TransactionTypeIN, math.MinInt64))
	assert.Equal(t, int64(-math.MaxInt64), inventory.Delta(entity.TransactionTypeOUT, math.MinInt64))
}

func TestApplyDelta(t *testing.T) {
	cases := []struct {
		name           string
		balance, delta int64
		want           int64
		ok             bool
	}{
		{"suma normal", 10, 5, 15, true},
		{"resta a negativo", 3, -5, -2, true},
		{"tope exacto", math.MaxInt64 - 1, 1, math.MaxInt64, true},
		{"desborde hacia arriba", math.MaxInt64, 1, 0, false},
		{"desborde hacia abajo", math.MinInt64 + 2, -3, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := inventory.ApplyDelta(tc.balance, tc.delta)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWithinLimit(t *testing.T) {
	assert.True(t, inventory.WithinLimit(inventory.MaxQuantity))
	assert.True(t, inventory.WithinLimit(-inventory.MaxQuantity))
	assert.False(t, inventory.WithinLimit(inventory.MaxQuantity+1))
	assert.False(t, inventory.WithinLimit(math.MinInt64))
}
