package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ReferenceCounterRepository = (*ReferenceCounterRepo)(nil)

// ReferenceCounterRepo contador por día. El upsert bloquea la fila hasta el fin de la tx.
type ReferenceCounterRepo struct {
	q Querier
}

func NewReferenceCounterRepository(q Querier) *ReferenceCounterRepo {
	return &ReferenceCounterRepo{q: q}
}

func (r *ReferenceCounterRepo) Allocate(ctx context.Context, day string, floor int) (int, error) {
	var seq int
	err := r.q.QueryRow(ctx, `
		INSERT INTO reference_counters (day, last_value) VALUES ($1, $2)
		ON CONFLICT (day) DO UPDATE
			SET last_value = GREATEST(reference_counters.last_value + 1, EXCLUDED.last_value)
		RETURNING last_value`, day, floor).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("allocate reference: %w", err)
	}
	return seq, nil
}
