// Package migrations embeds the goose SQL migrations so the binary can apply them on startup.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed goose_sql/*.sql
var FS embed.FS

const dir = "goose_sql"

// Up applies all pending migrations.
func Up(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// openDB is swapped in tests to observe the handle's lifecycle.
var openDB = stdlib.OpenDBFromPool

// UpFromPool applies pending migrations over a database/sql handle borrowed from pool.
// The handle is closed afterwards; the pool stays open.
func UpFromPool(ctx context.Context, pool *pgxpool.Pool) error {
	db := openDB(pool)
	defer db.Close()
	return Up(ctx, db)
}
