package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/storage"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Ledger: config.LedgerConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "ledger.db"),
	}}

	b, err := storage.Open(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Catalog.SeedProduct(ctx, entity.Product{ID: "p1", SKU: "P1", Name: "Uno"}))
	p, err := b.Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, p)

	ids, err := b.Movements.ProductIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), &config.Config{Ledger: config.LedgerConfig{Driver: "mysql"}}, zerolog.Nop())
	assert.Error(t, err)
}
