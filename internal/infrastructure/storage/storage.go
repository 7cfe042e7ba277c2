// Package storage elige el backend del libro (PostgreSQL o SQLite) según la configuración
// y entrega los puertos que consumen los casos de uso.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/sqlite"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// CatalogSeeder carga inicial del catálogo; lo implementan sqlite.Store y postgres.CatalogSeeder.
type CatalogSeeder interface {
	SeedProduct(ctx context.Context, p entity.Product) error
	SeedSupplier(ctx context.Context, s entity.Supplier) error
}

// Backend puertos atados al pool (lecturas) más el TxRunner para escrituras.
type Backend struct {
	Driver       string
	Runner       ledger.TxRunner
	Transactions repository.TransactionRepository
	Movements    repository.StockMovementRepository
	Products     repository.ProductRepository
	Catalog      CatalogSeeder
	close        func()
}

// Close libera el pool o el archivo.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open conecta, aplica el esquema y arma los repositorios del driver configurado.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	switch cfg.Ledger.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Str("isolation", cfg.Ledger.Isolation).Msg("libro sobre PostgreSQL")
		return &Backend{
			Driver:       cfg.Ledger.Driver,
			Runner:       postgres.NewTxRunner(pool, cfg.Ledger.Isolation),
			Transactions: postgres.NewTransactionRepository(pool),
			Movements:    postgres.NewStockMovementRepository(pool),
			Products:     postgres.NewProductRepository(pool),
			Catalog:      postgres.NewCatalogSeeder(pool),
			close:        pool.Close,
		}, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Ledger.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", store.Path()).Msg("libro sobre SQLite")
		return &Backend{
			Driver:       cfg.Ledger.Driver,
			Runner:       sqlite.NewTxRunner(store),
			Transactions: sqlite.NewTransactionRepository(store.DB()),
			Movements:    sqlite.NewStockMovementRepository(store.DB()),
			Products:     sqlite.NewProductRepository(store.DB()),
			Catalog:      store,
			close:        func() { _ = store.Close() },
		}, nil
	}
	return nil, fmt.Errorf("driver de almacenamiento no soportado: %q", cfg.Ledger.Driver)
}
