package postgres

import (
	"context"
	"embed"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/fingerprint/integration/database/pg"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations exposes the embedded goose migrations for pg.Migrate.
var Migrations fs.FS = mustSub(migrationsFS, "migrations")

func mustSub(fsys embed.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Storage implements every store contract of the fingerprint module on top
// of a pgx connection pool: binding.Store, urlregistry.Store, tracker.Store,
// and hitcount.Store, plus the reporting reads used by admin-style UIs.
type Storage struct {
	pool *pgxpool.Pool
}

// New creates a storage backed by pool. The schema must be migrated first
// (see Migrations and pg.Migrate).
func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// querier abstracts over the pool and an in-flight transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// db returns the transaction carried by ctx when present, the pool otherwise.
func (s *Storage) db(ctx context.Context) querier {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}
