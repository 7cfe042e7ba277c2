package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

//go:embed schema.sql
var schemaSQL string

const dateLayout = "2006-01-02"

// Querier lo implementan *sql.DB y *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store libro sobre un archivo SQLite (desarrollo local y tests).
// Una sola conexión y BEGIN IMMEDIATE: los escritores quedan serializados.
type Store struct {
	db   *sql.DB
	path string
}

// Open abre (o crea) la base en path y aplica el esquema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "stock_ledger.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	dsn := "file:" + path +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// DB conexión para repositorios de lectura fuera de una unidad de trabajo.
func (s *Store) DB() *sql.DB { return s.db }

// Path archivo de la base.
func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

// SeedProduct inserta o actualiza un producto del catálogo.
func (s *Store) SeedProduct(ctx context.Context, p entity.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, sku, name, min_stock) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET sku = excluded.sku, name = excluded.name, min_stock = excluded.min_stock`,
		p.ID, p.SKU, p.Name, p.MinStock)
	if err != nil {
		return fmt.Errorf("seed product: %w", err)
	}
	return nil
}

// SeedSupplier inserta o actualiza un proveedor.
func (s *Store) SeedSupplier(ctx context.Context, sup entity.Supplier) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, name) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name`, sup.ID, sup.Name)
	if err != nil {
		return fmt.Errorf("seed supplier: %w", err)
	}
	return nil
}

// isRetryable base ocupada o colisión de unicidad (número de referencia, doble reversión).
func isRetryable(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.KindOf(err) != 0 || errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err, Retryable: isRetryable(err)}
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nanos(t time.Time) int64 { return t.UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
