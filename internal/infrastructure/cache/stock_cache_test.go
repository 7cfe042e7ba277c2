package cache_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
)

// fakeSource cuenta las consultas al libro. duringRead simula un commit concurrente.
type fakeSource struct {
	levels     map[string]int64
	calls      [][]string
	duringRead func()
}

func (f *fakeSource) StockLevels(_ context.Context, ids []string) ([]entity.StockLevel, error) {
	f.calls = append(f.calls, append([]string(nil), ids...))
	if f.duringRead != nil {
		f.duringRead()
		f.duringRead = nil
	}
	out := make([]entity.StockLevel, 0, len(ids))
	for _, id := range ids {
		out = append(out, entity.StockLevel{ProductID: id, Quantity: f.levels[id]})
	}
	return out, nil
}

func TestStockLevelCache_HitsAndInvalidation(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{levels: map[string]int64{"p1": 10, "p2": 5}}
	c, err := cache.NewStockLevelCache(src, 16, zerolog.Nop())
	require.NoError(t, err)

	levels, err := c.StockLevels(ctx, []string{"p1", "p2"})
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, int64(10), levels[0].Quantity)
	assert.Len(t, src.calls, 1)

	// Segunda lectura: todo desde la caché
	_, err = c.StockLevels(ctx, []string{"p2", "p1"})
	require.NoError(t, err)
	assert.Len(t, src.calls, 1)
	assert.Equal(t, 2, c.Len())

	// Commit que toca p1: solo p1 vuelve al libro
	src.levels["p1"] = 7
	c.TransactionCommitted(ctx, &entity.Transaction{Items: []*entity.TransactionItem{{ProductID: "p1"}}})
	levels, err = c.StockLevels(ctx, []string{"p1", "p2"})
	require.NoError(t, err)
	require.Len(t, src.calls, 2)
	assert.Equal(t, []string{"p1"}, src.calls[1])
	assert.Equal(t, int64(7), levels[0].Quantity)
	assert.Equal(t, int64(5), levels[1].Quantity)
}

// Una lectura que se cruza con un commit devuelve su resultado pero no lo guarda.
func TestStockLevelCache_ReadRacingCommitIsNotCached(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{levels: map[string]int64{"p1": 10}}
	c, err := cache.NewStockLevelCache(src, 16, zerolog.Nop())
	require.NoError(t, err)

	src.duringRead = func() {
		c.TransactionCommitted(ctx, &entity.Transaction{Items: []*entity.TransactionItem{{ProductID: "p1"}}})
		src.levels["p1"] = 4
	}
	levels, err := c.StockLevels(ctx, []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), levels[0].Quantity)
	assert.Zero(t, c.Len())

	levels, err = c.StockLevels(ctx, []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), levels[0].Quantity)
	assert.Equal(t, 1, c.Len())
	assert.Len(t, src.calls, 2)
}

// Lecturas y commits concurrentes: al terminar, la caché refleja el último valor.
func TestStockLevelCache_ConcurrentReadsAndCommits(t *testing.T) {
	ctx := context.Background()
	src := &lockedSource{level: 0}
	c, err := cache.NewStockLevelCache(src, 16, zerolog.Nop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = c.StockLevels(ctx, []string{"p1"})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				src.bump()
				c.TransactionCommitted(ctx, &entity.Transaction{Items: []*entity.TransactionItem{{ProductID: "p1"}}})
			}
		}()
	}
	wg.Wait()

	levels, err := c.StockLevels(ctx, []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, int64(8*50), levels[0].Quantity)
}

// lockedSource nivel que sube con cada commit simulado.
type lockedSource struct {
	mu    sync.Mutex
	level int64
}

func (s *lockedSource) bump() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level++
}

func (s *lockedSource) StockLevels(_ context.Context, ids []string) ([]entity.StockLevel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.StockLevel, 0, len(ids))
	for _, id := range ids {
		out = append(out, entity.StockLevel{ProductID: id, Quantity: s.level})
	}
	return out, nil
}

func TestNewStockLevelCache_InvalidSize(t *testing.T) {
	_, err := cache.NewStockLevelCache(&fakeSource{}, 0, zerolog.Nop())
	assert.Error(t, err)
}
