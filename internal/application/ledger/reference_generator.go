package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ReferenceGenerator produce TXN-YYYYMMDD-NNNN con secuencia estrictamente creciente por día.
// Siempre corre dentro de la sesión que crea la cabecera: el contador del día queda
// bloqueado hasta el commit y un rollback también revierte el incremento.
type ReferenceGenerator struct {
	loc *time.Location
}

// NewReferenceGenerator usa loc para decidir el día calendario (UTC si es nil).
func NewReferenceGenerator(loc *time.Location) *ReferenceGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &ReferenceGenerator{loc: loc}
}

// Generate busca la mayor referencia del día, la incrementa y la reserva en el contador atómico.
func (g *ReferenceGenerator) Generate(ctx context.Context, s Session, createdAt time.Time) (string, error) {
	day := inventory.ReferenceDay(createdAt, g.loc)
	latest, err := s.Transactions().LatestReferenceWithPrefix(ctx, inventory.ReferenceDayPrefix(day))
	if err != nil {
		return "", err
	}
	floor, err := inventory.NextReferenceSequence(latest)
	if err != nil {
		return "", &domain.PersistenceError{Op: "reference_number", Err: err}
	}
	seq, err := s.References().Allocate(ctx, day, floor)
	if err != nil {
		return "", err
	}
	ref, err := inventory.FormatReference(day, seq)
	if err != nil {
		if errors.Is(err, inventory.ErrReferenceSequenceExhausted) {
			return "", &domain.PersistenceError{Op: "reference_number", Err: err}
		}
		return "", err
	}
	return ref, nil
}
