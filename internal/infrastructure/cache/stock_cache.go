package cache

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ ledger.CacheInvalidator = (*StockLevelCache)(nil)

// StockLevelSource origen de los niveles de stock (ledger.BalanceReader).
type StockLevelSource interface {
	StockLevels(ctx context.Context, productIDs []string) ([]entity.StockLevel, error)
}

// StockLevelCache caché LRU de niveles de stock por producto. Se purga con la señal de
// invalidación que emite el orquestador tras cada commit.
type StockLevelCache struct {
	source StockLevelSource
	lru    *lru.Cache[string, entity.StockLevel]
	// mu protege gen y hace atómicos "comparar gen + Add" e "incrementar gen + Remove".
	// gen se incrementa en cada invalidación; una lectura que empezó antes no se guarda.
	mu  sync.Mutex
	gen uint64
	log zerolog.Logger
}

// NewStockLevelCache size debe ser > 0.
func NewStockLevelCache(source StockLevelSource, size int, log zerolog.Logger) (*StockLevelCache, error) {
	c, err := lru.New[string, entity.StockLevel](size)
	if err != nil {
		return nil, fmt.Errorf("stock cache: %w", err)
	}
	return &StockLevelCache{source: source, lru: c, log: log}, nil
}

// StockLevels sirve desde la caché y consulta solo los productos ausentes.
func (c *StockLevelCache) StockLevels(ctx context.Context, productIDs []string) ([]entity.StockLevel, error) {
	gen := c.generation()
	hits := make(map[string]entity.StockLevel, len(productIDs))
	var misses []string
	for _, id := range productIDs {
		if lvl, ok := c.lru.Get(id); ok {
			hits[id] = lvl
			continue
		}
		misses = append(misses, id)
	}
	if len(misses) > 0 {
		fetched, err := c.source.StockLevels(ctx, misses)
		if err != nil {
			return nil, err
		}
		for _, lvl := range fetched {
			hits[lvl.ProductID] = lvl
		}
		c.storeIfCurrent(gen, fetched)
	}

	out := make([]entity.StockLevel, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, id := range productIDs {
		lvl, ok := hits[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, lvl)
	}
	return out, nil
}

// TransactionCommitted descarta los productos tocados por la transacción.
func (c *StockLevelCache) TransactionCommitted(_ context.Context, txn *entity.Transaction) {
	c.mu.Lock()
	c.gen++
	for _, id := range txn.ProductIDs() {
		c.lru.Remove(id)
	}
	c.mu.Unlock()
	c.log.Debug().Str("reference", txn.ReferenceNumber).Msg("caché de stock invalidada")
}

func (c *StockLevelCache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// storeIfCurrent guarda la lectura solo si ninguna invalidación ocurrió desde gen.
func (c *StockLevelCache) storeIfCurrent(gen uint64, fetched []entity.StockLevel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	for _, lvl := range fetched {
		c.lru.Add(lvl.ProductID, lvl)
	}
}

// Len entradas vigentes.
func (c *StockLevelCache) Len() int { return c.lru.Len() }
