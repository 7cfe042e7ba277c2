package sqlite

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ReferenceCounterRepository = (*ReferenceCounterRepo)(nil)

// ReferenceCounterRepo contador por día.
type ReferenceCounterRepo struct {
	q Querier
}

func NewReferenceCounterRepository(q Querier) *ReferenceCounterRepo {
	return &ReferenceCounterRepo{q: q}
}

func (r *ReferenceCounterRepo) Allocate(ctx context.Context, day string, floor int) (int, error) {
	var seq int
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO reference_counters (day, last_value) VALUES (?, ?)
		ON CONFLICT (day) DO UPDATE
			SET last_value = MAX(reference_counters.last_value + 1, excluded.last_value)
		RETURNING last_value`, day, floor).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("allocate reference: %w", err)
	}
	return seq, nil
}
