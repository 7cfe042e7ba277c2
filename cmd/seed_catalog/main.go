// seed_catalog carga productos y proveedores de referencia desde un CSV
// (kind,id,sku,name,min_stock) en el backend configurado por LEDGER_DRIVER.
//
// Uso: go run ./cmd/seed_catalog [-latin1] [ruta/catalogo.csv]
// Por defecto busca catalogo.csv en el directorio actual.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/storage"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	latin1 := flag.Bool("latin1", false, "el archivo viene en ISO-8859-1")
	flag.Parse()
	path := "catalogo.csv"
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "seed_catalog"})

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("abrir catálogo")
	}
	defer f.Close()

	cat, err := storage.ParseCatalogCSV(f, *latin1)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("leer catálogo")
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento del libro")
	}
	defer backend.Close()

	if err := cat.Seed(ctx, backend.Catalog); err != nil {
		log.Fatal().Err(err).Msg("cargar catálogo")
	}
	log.Info().Int("products", len(cat.Products)).Int("suppliers", len(cat.Suppliers)).Msg("catálogo cargado")
}
