package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository lectura del catálogo de productos (el motor no lo modifica).
type ProductRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetMany devuelve los productos encontrados indexados por ID.
	GetMany(ctx context.Context, ids []string) (map[string]*entity.Product, error)
}

// SupplierRepository lectura del componente de proveedores.
type SupplierRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
}
