package ledger_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestGetTransaction(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, receipt(in(prodA, 50, "20"), in(prodB, 30, "15")))

	got, err := f.queries.GetTransaction(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ReferenceNumber, got.ReferenceNumber)
	assert.Equal(t, entity.TransactionTypeIN, got.Type)
	assert.True(t, businessDate.Equal(got.TransactionDate))
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Items, 2)
	assert.Equal(t, prodA, got.Items[0].ProductID)
	assert.Equal(t, "20", got.Items[0].UnitCost.Decimal.String())
	assert.False(t, got.Items[0].UnitPrice.Valid)
	require.Len(t, got.Movements, 2)
	assert.Less(t, got.Movements[0].Seq, got.Movements[1].Seq)
	assert.Equal(t, "1750", got.TotalValue.Decimal.String())

	_, err = f.queries.GetTransaction(f.ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAmendNotes(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, receipt(in(prodA, 1, "1")))

	got, err := f.queries.AmendNotes(f.ctx, created.ID, "factura 123")
	require.NoError(t, err)
	assert.Equal(t, "factura 123", got.Notes)
	assert.Equal(t, created.ReferenceNumber, got.ReferenceNumber)

	_, err = f.queries.AmendNotes(f.ctx, "no-existe", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.queries.AmendNotes(f.ctx, created.ID, strings.Repeat("a", 2001))
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

// El libro no admite modificaciones directas sobre los movimientos.
func TestStockMovements_AppendOnly(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, receipt(in(prodA, 1, "1")))

	_, err := f.store.DB().ExecContext(f.ctx, `UPDATE stock_movements SET quantity_after = 99`)
	assert.Error(t, err)
	_, err = f.store.DB().ExecContext(f.ctx, `DELETE FROM stock_movements`)
	assert.Error(t, err)
	assert.Equal(t, int64(1), f.stock(t, prodA))
}
