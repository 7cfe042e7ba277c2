package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// MoneyScale decimales que admiten costos y precios; coincide con NUMERIC(18, 4).
const MoneyScale = 4

// TransactionRequest variante etiquetada: un tipo concreto por tipo de transacción.
// Es sellada (método no exportado), así que un tipo nuevo obliga a tocar toEntity.
type TransactionRequest interface {
	Type() entity.TransactionType
	header() RequestHeader
	validate() []domain.FieldError
}

// RequestHeader datos comunes de la cabecera.
type RequestHeader struct {
	TransactionDate time.Time
	UserID          string
	SupplierID      string // obligatorio en ReceiptRequest, opcional en el resto
	Notes           string
}

// ReceiptRequest entrada (IN): proveedor obligatorio y costo unitario positivo.
type ReceiptRequest struct {
	RequestHeader
	Items []ReceiptLine
}

type ReceiptLine struct {
	ProductID string
	Quantity  int64
	UnitCost  decimal.Decimal
}

// SaleRequest salida (OUT): precio unitario positivo.
type SaleRequest struct {
	RequestHeader
	Items []SaleLine
}

type SaleLine struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// AdjustmentRequest ajuste (ADJUST): delta con signo distinto de cero, sin precio.
type AdjustmentRequest struct {
	RequestHeader
	Items []AdjustmentLine
}

type AdjustmentLine struct {
	ProductID string
	Delta     int64
}

// CustomerReturnRequest devolución de cliente (RETURN_IN).
type CustomerReturnRequest struct {
	RequestHeader
	Items []ReturnLine
}

// SupplierReturnRequest devolución a proveedor (RETURN_OUT).
type SupplierReturnRequest struct {
	RequestHeader
	Items []ReturnLine
}

// ReturnLine costo y precio opcionales.
type ReturnLine struct {
	ProductID string
	Quantity  int64
	UnitCost  decimal.NullDecimal
	UnitPrice decimal.NullDecimal
}

func (ReceiptRequest) Type() entity.TransactionType        { return entity.TransactionTypeIN }
func (SaleRequest) Type() entity.TransactionType           { return entity.TransactionTypeOUT }
func (AdjustmentRequest) Type() entity.TransactionType     { return entity.TransactionTypeADJUST }
func (CustomerReturnRequest) Type() entity.TransactionType { return entity.TransactionTypeReturnIN }
func (SupplierReturnRequest) Type() entity.TransactionType { return entity.TransactionTypeReturnOUT }

func (r ReceiptRequest) header() RequestHeader        { return r.RequestHeader }
func (r SaleRequest) header() RequestHeader           { return r.RequestHeader }
func (r AdjustmentRequest) header() RequestHeader     { return r.RequestHeader }
func (r CustomerReturnRequest) header() RequestHeader { return r.RequestHeader }
func (r SupplierReturnRequest) header() RequestHeader { return r.RequestHeader }

func (r ReceiptRequest) validate() []domain.FieldError {
	errs := r.RequestHeader.validate(len(r.Items))
	if r.SupplierID == "" {
		errs = append(errs, domain.FieldError{Field: "supplier_id", Message: "requerido para entradas"})
	}
	for i, it := range r.Items {
		errs = append(errs, validateLine(i, it.ProductID, it.Quantity)...)
		if !it.UnitCost.IsPositive() {
			errs = append(errs, fieldErr(i, "unit_cost", "debe ser mayor que cero"))
		} else if !validScale(it.UnitCost) {
			errs = append(errs, fieldErr(i, "unit_cost", scaleMessage))
		}
	}
	return errs
}

func (r SaleRequest) validate() []domain.FieldError {
	errs := r.RequestHeader.validate(len(r.Items))
	for i, it := range r.Items {
		errs = append(errs, validateLine(i, it.ProductID, it.Quantity)...)
		if !it.UnitPrice.IsPositive() {
			errs = append(errs, fieldErr(i, "unit_price", "debe ser mayor que cero"))
		} else if !validScale(it.UnitPrice) {
			errs = append(errs, fieldErr(i, "unit_price", scaleMessage))
		}
	}
	return errs
}

func (r AdjustmentRequest) validate() []domain.FieldError {
	errs := r.RequestHeader.validate(len(r.Items))
	for i, it := range r.Items {
		if it.ProductID == "" {
			errs = append(errs, fieldErr(i, "product_id", "requerido"))
		}
		switch {
		case it.Delta == 0:
			errs = append(errs, fieldErr(i, "quantity", "el ajuste no puede ser cero"))
		case !inventory.WithinLimit(it.Delta):
			errs = append(errs, fieldErr(i, "quantity", limitMessage))
		}
	}
	return errs
}

func (r CustomerReturnRequest) validate() []domain.FieldError {
	return validateReturn(r.RequestHeader, r.Items)
}

func (r SupplierReturnRequest) validate() []domain.FieldError {
	return validateReturn(r.RequestHeader, r.Items)
}

func validateReturn(h RequestHeader, items []ReturnLine) []domain.FieldError {
	errs := h.validate(len(items))
	for i, it := range items {
		errs = append(errs, validateLine(i, it.ProductID, it.Quantity)...)
		errs = append(errs, validateOptionalMoney(i, "unit_cost", it.UnitCost)...)
		errs = append(errs, validateOptionalMoney(i, "unit_price", it.UnitPrice)...)
	}
	return errs
}

func (h RequestHeader) validate(items int) []domain.FieldError {
	var errs []domain.FieldError
	if h.UserID == "" {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "requerido"})
	}
	if h.TransactionDate.IsZero() {
		errs = append(errs, domain.FieldError{Field: "transaction_date", Message: "requerida"})
	}
	if items == 0 {
		errs = append(errs, domain.FieldError{Field: "items", Message: "debe incluir al menos un ítem"})
	}
	return errs
}

func validateLine(i int, productID string, qty int64) []domain.FieldError {
	var errs []domain.FieldError
	if productID == "" {
		errs = append(errs, fieldErr(i, "product_id", "requerido"))
	}
	switch {
	case qty <= 0:
		errs = append(errs, fieldErr(i, "quantity", "debe ser mayor que cero"))
	case qty > inventory.MaxQuantity:
		errs = append(errs, fieldErr(i, "quantity", limitMessage))
	}
	return errs
}

func validateOptionalMoney(i int, field string, d decimal.NullDecimal) []domain.FieldError {
	switch {
	case !d.Valid:
		return nil
	case d.Decimal.IsNegative():
		return []domain.FieldError{fieldErr(i, field, "no puede ser negativo")}
	case !validScale(d.Decimal):
		return []domain.FieldError{fieldErr(i, field, scaleMessage)}
	}
	return nil
}

var (
	limitMessage = fmt.Sprintf("no puede superar %d unidades", inventory.MaxQuantity)
	scaleMessage = fmt.Sprintf("admite como máximo %d decimales", MoneyScale)
)

// validScale rechaza valores que la base redondearía en silencio.
func validScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

func fieldErr(i int, field, msg string) domain.FieldError {
	return domain.FieldError{Field: fmt.Sprintf("items[%d].%s", i, field), Message: msg}
}

// toEntity valida la forma del payload y lo baja a la entidad (sin IDs ni referencia).
func toEntity(req TransactionRequest) (*entity.Transaction, error) {
	if req == nil {
		return nil, domain.NewValidationError("type", "requerido")
	}
	if errs := req.validate(); len(errs) > 0 {
		return nil, &domain.ValidationError{Fields: errs}
	}
	h := req.header()
	txn := &entity.Transaction{
		Type:            req.Type(),
		TransactionDate: dateOnly(h.TransactionDate),
		SupplierID:      h.SupplierID,
		UserID:          h.UserID,
		Notes:           h.Notes,
	}
	switch r := req.(type) {
	case ReceiptRequest:
		for _, it := range r.Items {
			txn.Items = append(txn.Items, &entity.TransactionItem{
				ProductID: it.ProductID, Quantity: it.Quantity,
				UnitCost: decimal.NewNullDecimal(it.UnitCost),
			})
		}
	case SaleRequest:
		for _, it := range r.Items {
			txn.Items = append(txn.Items, &entity.TransactionItem{
				ProductID: it.ProductID, Quantity: it.Quantity,
				UnitPrice: decimal.NewNullDecimal(it.UnitPrice),
			})
		}
	case AdjustmentRequest:
		for _, it := range r.Items {
			txn.Items = append(txn.Items, &entity.TransactionItem{ProductID: it.ProductID, Quantity: it.Delta})
		}
	case CustomerReturnRequest:
		txn.Items = returnItems(r.Items)
	case SupplierReturnRequest:
		txn.Items = returnItems(r.Items)
	default:
		panic(fmt.Sprintf("ledger: variante de transacción no soportada %T", req))
	}
	return txn, nil
}

func returnItems(lines []ReturnLine) []*entity.TransactionItem {
	items := make([]*entity.TransactionItem, 0, len(lines))
	for _, it := range lines {
		items = append(items, &entity.TransactionItem{
			ProductID: it.ProductID, Quantity: it.Quantity,
			UnitCost: it.UnitCost, UnitPrice: it.UnitPrice,
		})
	}
	return items
}

// withIdentity asigna IDs nuevos (uno por intento) a cabecera e ítems sobre una copia.
func withIdentity(base *entity.Transaction) *entity.Transaction {
	txn := *base
	txn.ID = uuid.New().String()
	txn.ReferenceNumber = ""
	txn.Movements = nil
	txn.Items = make([]*entity.TransactionItem, len(base.Items))
	for i, it := range base.Items {
		item := *it
		item.ID = uuid.New().String()
		item.TransactionID = txn.ID
		txn.Items[i] = &item
	}
	return &txn
}

// totalValue Σ cantidad × (costo ?? precio ?? 0); ausente si ningún ítem trae costo ni precio.
func totalValue(items []*entity.TransactionItem) decimal.NullDecimal {
	total := decimal.Zero
	priced := false
	for _, it := range items {
		var unit decimal.Decimal
		switch {
		case it.UnitCost.Valid:
			unit = it.UnitCost.Decimal
		case it.UnitPrice.Valid:
			unit = it.UnitPrice.Decimal
		default:
			continue
		}
		priced = true
		total = total.Add(decimal.NewFromInt(it.Quantity).Mul(unit))
	}
	if !priced {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(total)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
