// ledger_audit recorre el libro de cada producto con movimientos y reporta las filas que
// rompen la cadena de saldos. No repara nada.
//
// Uso: go run ./cmd/ledger_audit [-product ID] [-concurrency N]
// Sale con código 2 si encuentra inconsistencias.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/storage"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	productID := flag.String("product", "", "auditar solo este producto")
	concurrency := flag.Int("concurrency", 4, "productos auditados en paralelo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewWithWriter(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "ledger_audit"}, os.Stderr)

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento del libro")
	}
	defer backend.Close()

	auditor := ledger.NewIntegrityAuditor(backend.Movements, log.Component("audit"))
	var reports []inventory.IntegrityReport
	if *productID != "" {
		r, err := auditor.VerifyIntegrity(ctx, *productID)
		if err != nil {
			log.Fatal().Err(err).Msg("auditar producto")
		}
		reports = append(reports, r)
	} else {
		reports, err = auditor.VerifyAll(ctx, *concurrency)
		if err != nil {
			log.Fatal().Err(err).Msg("auditar libro")
		}
	}

	out := make([]any, 0, len(reports))
	invalid := 0
	for _, r := range reports {
		if !r.Valid {
			invalid++
		}
		out = append(out, ledger.ToIntegrityResponse(r))
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("escribir reporte")
	}
	log.Info().Int("products", len(reports)).Int("invalid", invalid).Msg("auditoría terminada")
	if invalid > 0 {
		backend.Close()
		os.Exit(2)
	}
}
