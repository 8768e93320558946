package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(FS, dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		data, err := fs.ReadFile(FS, dir+"/"+e.Name())
		require.NoError(t, err)
		body := string(data)
		assert.True(t, strings.Contains(body, "-- +goose Up"), "%s lacks an Up section", e.Name())
		assert.True(t, strings.Contains(body, "-- +goose Down"), "%s lacks a Down section", e.Name())
	}
}

// Go ints are 64-bit; narrower columns would reject values the memory backend accepts.
func TestResourceIntColumnsAreBigint(t *testing.T) {
	data, err := fs.ReadFile(FS, dir+"/00001_resources.sql")
	require.NoError(t, err)
	body := string(data)
	for _, col := range []string{"resource_type", "file_columns"} {
		assert.Regexp(t, `(?m)^\s*`+col+`\s+BIGINT\b`, body, col)
	}
}

func TestUpFromPool_ClosesHandleKeepsPool(t *testing.T) {
	ctx := context.Background()
	// nothing listens on port 1; the pool connects lazily so New succeeds
	pool, err := pgxpool.New(ctx, "postgres://u:p@127.0.0.1:1/db?connect_timeout=1")
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	var opened *sql.DB
	orig := openDB
	openDB = func(p *pgxpool.Pool, opts ...stdlib.OptionOpenDB) *sql.DB {
		opened = orig(p, opts...)
		return opened
	}
	t.Cleanup(func() { openDB = orig })

	err = UpFromPool(ctx, pool)
	require.Error(t, err)
	require.NotNil(t, opened)

	pingErr := opened.PingContext(ctx)
	require.Error(t, pingErr)
	assert.Contains(t, pingErr.Error(), "database is closed")

	// the pool itself was not closed by the handle
	_, acqErr := pool.Acquire(ctx)
	require.Error(t, acqErr)
	assert.NotContains(t, acqErr.Error(), "closed pool")
}
