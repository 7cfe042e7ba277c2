package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Catalog filas leídas de un CSV de catálogo.
type Catalog struct {
	Products  []entity.Product
	Suppliers []entity.Supplier
}

// ParseCatalogCSV lee filas "kind,id,sku,name,min_stock" con encabezado. kind es
// product o supplier; los proveedores ignoran sku y min_stock. latin1 decodifica
// exportaciones en ISO-8859-1.
func ParseCatalogCSV(r io.Reader, latin1 bool) (*Catalog, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	cat := &Catalog{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		kind, id, name := strings.ToLower(strings.TrimSpace(rec[0])), strings.TrimSpace(rec[1]), strings.TrimSpace(rec[3])
		if id == "" || name == "" {
			return nil, fmt.Errorf("línea %d: id y name son requeridos", line)
		}
		switch kind {
		case "product":
			var minStock int64
			if v := strings.TrimSpace(rec[4]); v != "" {
				n, err := strconv.ParseInt(v, 10, 64)
				if err != nil || n < 0 {
					return nil, fmt.Errorf("línea %d: min_stock inválido %q", line, v)
				}
				minStock = n
			}
			sku := strings.TrimSpace(rec[2])
			if sku == "" {
				sku = id
			}
			cat.Products = append(cat.Products, entity.Product{ID: id, SKU: sku, Name: name, MinStock: minStock})
		case "supplier":
			cat.Suppliers = append(cat.Suppliers, entity.Supplier{ID: id, Name: name})
		default:
			return nil, fmt.Errorf("línea %d: kind desconocido %q", line, rec[0])
		}
	}
	return cat, nil
}

// Seed carga proveedores y productos con el seeder del backend.
func (c *Catalog) Seed(ctx context.Context, s CatalogSeeder) error {
	for _, sup := range c.Suppliers {
		if err := s.SeedSupplier(ctx, sup); err != nil {
			return err
		}
	}
	for _, p := range c.Products {
		if err := s.SeedProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
