package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrPersistence       = errors.New("error de persistencia")
)

// ErrorKind clasifica los errores del motor para despacharlos sin comparar mensajes.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindInsufficientStock
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindPersistence:
		return "PERSISTENCE"
	}
	return "UNKNOWN"
}

// EngineError es implementado por los tres errores tipados del motor.
type EngineError interface {
	error
	Kind() ErrorKind
}

// KindOf devuelve la clase del error o 0 si no es un error del motor.
func KindOf(err error) ErrorKind {
	var ee EngineError
	if errors.As(err, &ee) {
		return ee.Kind()
	}
	return 0
}

// FieldError detalle de validación por campo (ej. "items[0].unit_cost").
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError payload mal formado o regla por tipo violada. Se detecta antes de escribir.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError atajo para un único campo.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Kind() ErrorKind { return KindValidation }
func (e *ValidationError) Unwrap() error   { return ErrInvalidInput }

// StockShortfall un producto que quedaría en negativo.
type StockShortfall struct {
	ProductID         string `json:"product_id"`
	CurrentStock      int64  `json:"current_stock"`
	RequestedQuantity int64  `json:"requested_quantity"`
	Shortfall         int64  `json:"shortfall"`
}

// InsufficientStockError agrega todos los productos que quedarían en negativo.
type InsufficientStockError struct {
	Items []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		parts = append(parts, fmt.Sprintf("%s (disponible %d, solicitado %d, faltante %d)",
			it.ProductID, it.CurrentStock, it.RequestedQuantity, it.Shortfall))
	}
	return ErrInsufficientStock.Error() + ": " + strings.Join(parts, ", ")
}

func (e *InsufficientStockError) Kind() ErrorKind { return KindInsufficientStock }
func (e *InsufficientStockError) Unwrap() error   { return ErrInsufficientStock }

// PersistenceError fallo de la capa de almacenamiento. Retryable indica conflictos
// de concurrencia (serialización, deadlock, colisión de número de referencia).
type PersistenceError struct {
	Op        string
	Err       error
	Retryable bool
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return ErrPersistence.Error() + " (" + e.Op + ")"
	}
	return ErrPersistence.Error() + " (" + e.Op + "): " + e.Err.Error()
}

func (e *PersistenceError) Kind() ErrorKind { return KindPersistence }

// Unwrap permite errors.Is tanto con ErrPersistence como con la causa original.
func (e *PersistenceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPersistence}
	}
	return []error{ErrPersistence, e.Err}
}

// IsRetryable indica si err es un PersistenceError reintentable.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Retryable
}
