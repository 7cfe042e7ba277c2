package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// IntegrityAuditor verifica la continuidad de saldos del libro. Solo diagnostica.
type IntegrityAuditor struct {
	movements repository.StockMovementRepository
	log       zerolog.Logger
}

func NewIntegrityAuditor(movements repository.StockMovementRepository, log zerolog.Logger) *IntegrityAuditor {
	return &IntegrityAuditor{movements: movements, log: log}
}

// VerifyIntegrity audita todos los movimientos de un producto.
func (a *IntegrityAuditor) VerifyIntegrity(ctx context.Context, productID string) (inventory.IntegrityReport, error) {
	if productID == "" {
		return inventory.IntegrityReport{}, domain.NewValidationError("product_id", "requerido")
	}
	movs, err := a.movements.ListByProduct(ctx, productID)
	if err != nil {
		return inventory.IntegrityReport{}, err
	}
	report := inventory.VerifyChain(productID, movs)
	if !report.Valid {
		a.log.Warn().Str("product_id", productID).Int("errors", len(report.Errors)).Msg("cadena de saldos inconsistente")
	}
	return report, nil
}

// VerifyAll audita cada producto con movimientos, con a lo sumo concurrency en paralelo.
// Los reportes salen ordenados por ProductID.
func (a *IntegrityAuditor) VerifyAll(ctx context.Context, concurrency int) ([]inventory.IntegrityReport, error) {
	ids, err := a.movements.ProductIDs(ctx)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = 1
	}
	var mu sync.Mutex
	reports := make([]inventory.IntegrityReport, 0, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, id := range ids {
		g.Go(func() error {
			r, err := a.VerifyIntegrity(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			reports = append(reports, r)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].ProductID < reports[j].ProductID })
	return reports, nil
}
