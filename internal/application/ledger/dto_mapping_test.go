package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// ─── Body HTTP → variante tipada ─────────────────────────────────────────────

func TestFromDTO_Variants(t *testing.T) {
	body := dto.CreateTransactionRequest{
		TransactionDate: "2024-01-15",
		SupplierID:      supplierID,
		Notes:           "nota",
		Items:           []dto.TransactionItemRequest{{ProductID: prodA, Quantity: 5, UnitCost: dec("2.5"), UnitPrice: dec("4")}},
	}

	body.Type = "IN"
	req, err := ledger.FromDTO(body, testUserID)
	require.NoError(t, err)
	receipt, ok := req.(ledger.ReceiptRequest)
	require.True(t, ok)
	assert.Equal(t, testUserID, receipt.UserID)
	assert.True(t, businessDate.Equal(receipt.TransactionDate))
	assert.Equal(t, "2.5", receipt.Items[0].UnitCost.String())

	body.Type = "OUT"
	req, err = ledger.FromDTO(body, testUserID)
	require.NoError(t, err)
	saleReq, ok := req.(ledger.SaleRequest)
	require.True(t, ok)
	assert.Equal(t, "4", saleReq.Items[0].UnitPrice.String())

	body.Type = "RETURN_IN"
	req, err = ledger.FromDTO(body, testUserID)
	require.NoError(t, err)
	ret, ok := req.(ledger.CustomerReturnRequest)
	require.True(t, ok)
	assert.True(t, ret.Items[0].UnitCost.Valid)

	body.Type = "RETURN_OUT"
	req, err = ledger.FromDTO(body, testUserID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionTypeReturnOUT, req.Type())
}

func TestFromDTO_Adjust(t *testing.T) {
	body := dto.CreateTransactionRequest{
		Type:            "ADJUST",
		TransactionDate: "2024-01-15",
		Items:           []dto.TransactionItemRequest{{ProductID: prodA, Quantity: -3}},
	}
	req, err := ledger.FromDTO(body, testUserID)
	require.NoError(t, err)
	adj, ok := req.(ledger.AdjustmentRequest)
	require.True(t, ok)
	assert.Equal(t, []ledger.AdjustmentLine{{ProductID: prodA, Delta: -3}}, adj.Items)

	body.Items[0].UnitCost = dec("1")
	_, err = ledger.FromDTO(body, testUserID)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[0].unit_cost", ve.Fields[0].Field)
}

func TestFromDTO_Invalid(t *testing.T) {
	_, err := ledger.FromDTO(dto.CreateTransactionRequest{Type: "TRANSFER"}, testUserID)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "type", ve.Fields[0].Field)

	_, err = ledger.FromDTO(dto.CreateTransactionRequest{Type: "IN", TransactionDate: "15/01/2024"}, testUserID)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "transaction_date", ve.Fields[0].Field)
}

func TestAvailabilityFromDTO(t *testing.T) {
	typ, items, err := ledger.AvailabilityFromDTO(dto.AvailabilityRequest{
		Type:  "OUT",
		Items: []dto.AvailabilityItemRequest{{ProductID: prodA, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionTypeOUT, typ)
	assert.Equal(t, []inventory.StockRequest{{ProductID: prodA, Quantity: 2}}, items)

	_, _, err = ledger.AvailabilityFromDTO(dto.AvailabilityRequest{Type: "OUT"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, _, err = ledger.AvailabilityFromDTO(dto.AvailabilityRequest{Type: "OUT", Items: []dto.AvailabilityItemRequest{{Quantity: 1}}})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[0].product_id", ve.Fields[0].Field)

	// Cantidades fuera del tope se rechazan antes de proyectar
	_, _, err = ledger.AvailabilityFromDTO(dto.AvailabilityRequest{Type: "OUT", Items: []dto.AvailabilityItemRequest{{ProductID: prodA, Quantity: inventory.MaxQuantity + 1}}})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[0].quantity", ve.Fields[0].Field)
}

// ─── Entidad → respuesta ─────────────────────────────────────────────────────

func TestToTransactionResponse(t *testing.T) {
	created := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	txn := &entity.Transaction{
		ID: "t1", ReferenceNumber: "TXN-20240115-0001", Type: entity.TransactionTypeIN,
		TransactionDate: businessDate, SupplierID: supplierID, UserID: testUserID,
		TotalValue: decimal.NewNullDecimal(decimal.RequireFromString("12.5")),
		CreatedAt:  created,
		Items: []*entity.TransactionItem{{
			ID: "i1", ProductID: prodA, Quantity: 5,
			UnitCost: decimal.NewNullDecimal(decimal.RequireFromString("2.5")),
		}},
		Movements: []*entity.StockMovement{{
			ID: "m1", ProductID: prodA, TransactionID: "t1", MovementType: entity.TransactionTypeIN,
			QuantityChange: 5, QuantityAfter: 5, CreatedAt: created,
		}},
	}

	got := ledger.ToTransactionResponse(txn)
	assert.Equal(t, "2024-01-15", got.TransactionDate)
	assert.Equal(t, "IN", got.Type)
	require.NotNil(t, got.TotalValue)
	assert.Equal(t, "12.5", got.TotalValue.String())
	require.Len(t, got.Items, 1)
	assert.Nil(t, got.Items[0].UnitPrice)
	require.Len(t, got.Movements, 1)
	assert.Equal(t, int64(5), got.Movements[0].QuantityAfter)
}

func TestToHistoryResponse_BalancesOnlyWhenRequested(t *testing.T) {
	page := &ledger.HistoryPage{
		ProductID: prodA, Total: 1, Limit: 50,
		Entries: []ledger.HistoryEntry{{
			MovementDetail: &entity.MovementDetail{
				StockMovement:   entity.StockMovement{ID: "m1", ProductID: prodA, QuantityChange: 3, QuantityAfter: 3},
				ReferenceNumber: "TXN-20240115-0001",
				TransactionType: entity.TransactionTypeIN,
				TransactionDate: businessDate,
			},
			RunningBalance:  3,
			BalanceVerified: true,
		}},
	}

	plain := ledger.ToHistoryResponse(page, false)
	assert.Nil(t, plain.Entries[0].RunningBalance)
	assert.Nil(t, plain.Entries[0].BalanceVerified)
	assert.Equal(t, 1, plain.Total)

	withBalances := ledger.ToHistoryResponse(page, true)
	require.NotNil(t, withBalances.Entries[0].RunningBalance)
	assert.Equal(t, int64(3), *withBalances.Entries[0].RunningBalance)
	assert.True(t, *withBalances.Entries[0].BalanceVerified)
	assert.Equal(t, "2024-01-15", withBalances.Entries[0].TransactionDate)
}
