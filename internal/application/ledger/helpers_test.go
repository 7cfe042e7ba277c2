package ledger_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/sqlite"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	prodA      = "prod-a"
	prodB      = "prod-b"
	prodC      = "prod-c"
	supplierID = "sup-1"
	testUserID = "user-1"
)

var businessDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

// testClock avanza 1ms en cada lectura para que el orden de creación sea determinista.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock { return &testClock{now: start} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// countingInvalidator registra cada señal de invalidación recibida.
type countingInvalidator struct {
	mu  sync.Mutex
	got []*entity.Transaction
}

func (c *countingInvalidator) TransactionCommitted(_ context.Context, txn *entity.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, txn)
}

func (c *countingInvalidator) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

// countingRecorder cuenta eventos de métricas.
type countingRecorder struct {
	mu            sync.Mutex
	committed     int
	rejected      map[string]int
	rejectedTypes []entity.TransactionType
	retried       int
}

func (r *countingRecorder) TransactionCommitted(entity.TransactionType, int, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed++
}

func (r *countingRecorder) TransactionRejected(t entity.TransactionType, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejectedTypes = append(r.rejectedTypes, t)
	if r.rejected == nil {
		r.rejected = map[string]int{}
	}
	r.rejected[reason]++
}

func (r *countingRecorder) CommitRetried(entity.TransactionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retried++
}

type fixture struct {
	ctx      context.Context
	store    *sqlite.Store
	runner   ledger.TxRunner
	clock    *testClock
	inval    *countingInvalidator
	recorder *countingRecorder
	create   *ledger.CreateTransactionUseCase
	reverse  *ledger.ReverseTransactionUseCase
	queries  *ledger.TransactionQueryUseCase
	reader   *ledger.BalanceReader
	auditor  *ledger.IntegrityAuditor
	adjust   *ledger.AdjustmentCalculator
}

type fixtureOption func(*ledger.Options, *ledger.TxRunner)

func withLocation(loc *time.Location) fixtureOption {
	return func(o *ledger.Options, _ *ledger.TxRunner) { o.Location = loc }
}

func withRunner(wrap func(ledger.TxRunner) ledger.TxRunner) fixtureOption {
	return func(_ *ledger.Options, r *ledger.TxRunner) { *r = wrap(*r) }
}

// newFixture abre una base SQLite temporal con catálogo mínimo y arma los casos de uso.
func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	for _, p := range []entity.Product{
		{ID: prodA, SKU: "A-001", Name: "Producto A", MinStock: 10},
		{ID: prodB, SKU: "B-001", Name: "Producto B"},
		{ID: prodC, SKU: "C-001", Name: "Producto C"},
	} {
		require.NoError(t, store.SeedProduct(ctx, p))
	}
	require.NoError(t, store.SeedSupplier(ctx, entity.Supplier{ID: supplierID, Name: "Proveedor Uno"}))

	clock := newTestClock(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))
	options := ledger.Options{MaxRetries: 2, Now: clock.Now}
	var runner ledger.TxRunner = sqlite.NewTxRunner(store)
	for _, o := range opts {
		o(&options, &runner)
	}

	inval := &countingInvalidator{}
	recorder := &countingRecorder{}
	create := ledger.NewCreateTransactionUseCase(runner, inval, recorder, zerolog.Nop(), options)
	movements := sqlite.NewStockMovementRepository(store.DB())
	return &fixture{
		ctx:      ctx,
		store:    store,
		runner:   runner,
		clock:    clock,
		inval:    inval,
		recorder: recorder,
		create:   create,
		reverse:  ledger.NewReverseTransactionUseCase(create),
		queries:  ledger.NewTransactionQueryUseCase(sqlite.NewTransactionRepository(store.DB()), movements),
		reader:   ledger.NewBalanceReader(movements, sqlite.NewProductRepository(store.DB())),
		auditor:  ledger.NewIntegrityAuditor(movements, zerolog.Nop()),
		adjust:   ledger.NewAdjustmentCalculator(movements),
	}
}

func header(supplier string) ledger.RequestHeader {
	return ledger.RequestHeader{TransactionDate: businessDate, UserID: testUserID, SupplierID: supplier}
}

func receipt(lines ...ledger.ReceiptLine) ledger.ReceiptRequest {
	return ledger.ReceiptRequest{RequestHeader: header(supplierID), Items: lines}
}

func in(productID string, qty int64, cost string) ledger.ReceiptLine {
	return ledger.ReceiptLine{ProductID: productID, Quantity: qty, UnitCost: decimal.RequireFromString(cost)}
}

func sale(lines ...ledger.SaleLine) ledger.SaleRequest {
	return ledger.SaleRequest{RequestHeader: header(""), Items: lines}
}

func out(productID string, qty int64, price string) ledger.SaleLine {
	return ledger.SaleLine{ProductID: productID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func adjustment(lines ...ledger.AdjustmentLine) ledger.AdjustmentRequest {
	return ledger.AdjustmentRequest{RequestHeader: header(""), Items: lines}
}

// mustCreate registra la transacción y falla el test si no se confirma.
func (f *fixture) mustCreate(t *testing.T, req ledger.TransactionRequest) *entity.Transaction {
	t.Helper()
	txn, err := f.create.CreateTransaction(f.ctx, req)
	require.NoError(t, err)
	return txn
}

func (f *fixture) stock(t *testing.T, productID string) int64 {
	t.Helper()
	q, err := f.reader.CurrentStock(f.ctx, productID)
	require.NoError(t, err)
	return q
}

func (f *fixture) countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.store.DB().QueryRowContext(f.ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

// rowCounts transacciones, ítems y movimientos persistidos.
func (f *fixture) rowCounts(t *testing.T) [3]int {
	t.Helper()
	return [3]int{f.countRows(t, "transactions"), f.countRows(t, "transaction_items"), f.countRows(t, "stock_movements")}
}
