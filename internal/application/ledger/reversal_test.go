package ledger_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestReversalType(t *testing.T) {
	cases := map[entity.TransactionType]entity.TransactionType{
		entity.TransactionTypeIN:        entity.TransactionTypeReturnOUT,
		entity.TransactionTypeOUT:       entity.TransactionTypeReturnIN,
		entity.TransactionTypeReturnIN:  entity.TransactionTypeReturnOUT,
		entity.TransactionTypeReturnOUT: entity.TransactionTypeReturnIN,
		entity.TransactionTypeADJUST:    entity.TransactionTypeADJUST,
	}
	for orig, want := range cases {
		assert.Equal(t, want, ledger.ReversalType(orig), string(orig))
	}
	assert.Panics(t, func() { ledger.ReversalType("TRANSFER") })
}

func TestReverseTransaction_Receipt(t *testing.T) {
	f := newFixture(t)
	orig := f.mustCreate(t, receipt(in(prodA, 10, "5"), in(prodB, 4, "2")))

	rev, err := f.reverse.ReverseTransaction(f.ctx, ledger.ReversalRequest{TransactionID: orig.ID, UserID: "admin-1"})
	require.NoError(t, err)

	assert.Equal(t, entity.TransactionTypeReturnOUT, rev.Type)
	assert.Equal(t, orig.ID, rev.ReversalOf)
	assert.Equal(t, supplierID, rev.SupplierID)
	assert.Equal(t, "admin-1", rev.UserID)
	assert.Equal(t, "Reversión de "+orig.ReferenceNumber, rev.Notes)
	assert.Equal(t, "TXN-20240115-0002", rev.ReferenceNumber)
	require.Len(t, rev.Items, 2)
	assert.True(t, rev.TotalValue.Valid)
	assert.True(t, orig.TotalValue.Decimal.Equal(rev.TotalValue.Decimal))

	assert.Equal(t, int64(0), f.stock(t, prodA))
	assert.Equal(t, int64(0), f.stock(t, prodB))
	assert.Equal(t, 2, f.inval.Count())

	// El historial original queda intacto
	got, err := f.queries.GetTransaction(f.ctx, orig.ID)
	require.NoError(t, err)
	assert.Len(t, got.Movements, 2)
}

func TestReverseTransaction_OnlyOnce(t *testing.T) {
	f := newFixture(t)
	orig := f.mustCreate(t, receipt(in(prodA, 10, "5")))
	first, err := f.reverse.ReverseTransaction(f.ctx, ledger.ReversalRequest{TransactionID: orig.ID, UserID: testUserID})
	require.NoError(t, err)
	before := f.rowCounts(t)

	_, err = f.reverse.ReverseTransaction(f.ctx, ledger.ReversalRequest{TransactionID: orig.ID, UserID: testUserID})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "transaction_id", ve.Fields[0].Field)
	assert.Contains(t, ve.Fields[0].Message, first.ReferenceNumber)
	assert.Equal(t, before, f.rowCounts(t))

	// El rechazo queda etiquetado con el tipo de la compensación
	assert.Equal(t, 1, f.recorder.rejected["VALIDATION"])
	assert.Equal(t, []entity.TransactionType{entity.TransactionTypeReturnOUT}, f.recorder.rejectedTypes)
}

func TestReverseTransaction_AdjustNegatesDelta(t *testing.T) {
	f := newFixture(t)
	orig := f.mustCreate(t, adjustment(ledger.AdjustmentLine{ProductID: prodA, Delta: -5}))

	rev, err := f.reverse.ReverseTransaction(f.ctx, ledger.ReversalRequest{TransactionID: orig.ID, UserID: testUserID, Notes: "conteo repetido"})
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionTypeADJUST, rev.Type)
	assert.Equal(t, int64(5), rev.Items[0].Quantity)
	assert.Equal(t, "conteo repetido", rev.Notes)
	assert.Equal(t, int64(0), f.stock(t, prodA))
}

// Revertir una entrada cuyo stock ya se vendió no puede dejar el libro en negativo.
func TestReverseTransaction_RespectsAvailability(t *testing.T) {
	f := newFixture(t)
	orig := f.mustCreate(t, receipt(in(prodA, 10, "5")))
	f.mustCreate(t, sale(out(prodA, 8, "9")))

	_, err := f.reverse.ReverseTransaction(f.ctx, ledger.ReversalRequest{TransactionID: orig.ID, UserID: testUserID})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, int64(8), ise.Items[0].Shortfall)
	assert.Equal(t, int64(2), f.stock(t, prodA))
}

func TestReverseTransaction_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.reverse.ReverseTransaction(f.ctx, ledger.ReversalRequest{TransactionID: "no-existe", UserID: testUserID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, f.recorder.rejected["NOT_FOUND"])
	assert.Zero(t, f.recorder.rejected["OTHER"])

	_, err = f.reverse.ReverseTransaction(f.ctx, ledger.ReversalRequest{})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)
}

// Una transacción inexistente es un error del llamador: se registra como warn.
func TestReverseTransaction_NotFoundLogsWarning(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	create := ledger.NewCreateTransactionUseCase(f.runner, f.inval, f.recorder, zerolog.New(&buf), ledger.Options{})

	_, err := ledger.NewReverseTransactionUseCase(create).ReverseTransaction(f.ctx,
		ledger.ReversalRequest{TransactionID: "no-existe", UserID: testUserID})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"reason":"NOT_FOUND"`)
	assert.NotContains(t, buf.String(), `"level":"error"`)
}
