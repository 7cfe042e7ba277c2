package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CatalogSeeder carga productos y proveedores de referencia (herramienta de carga inicial).
// El motor nunca escribe en el catálogo.
type CatalogSeeder struct {
	q Querier
}

func NewCatalogSeeder(q Querier) *CatalogSeeder {
	return &CatalogSeeder{q: q}
}

// SeedProduct inserta o actualiza un producto por ID.
func (s *CatalogSeeder) SeedProduct(ctx context.Context, p entity.Product) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO products (id, sku, name, min_stock) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET sku = EXCLUDED.sku, name = EXCLUDED.name, min_stock = EXCLUDED.min_stock`,
		p.ID, p.SKU, p.Name, p.MinStock)
	if err != nil {
		return fmt.Errorf("seed product: %w", err)
	}
	return nil
}

// SeedSupplier inserta o actualiza un proveedor por ID.
func (s *CatalogSeeder) SeedSupplier(ctx context.Context, sup entity.Supplier) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO suppliers (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, sup.ID, sup.Name)
	if err != nil {
		return fmt.Errorf("seed supplier: %w", err)
	}
	return nil
}
