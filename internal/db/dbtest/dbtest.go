// Package dbtest opens the Postgres database used by repository tests.
// Tests that use it are skipped unless TEST_DB_DSN is set.
package dbtest

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/nekogravitycat/coworking-ledger/internal/db"
)

// lockKey serializes test packages that share the database.
const lockKey = 7_300_411

var (
	migrateOnce sync.Once
	migrateErr  error
)

// Open returns a pool on a migrated, empty database. The database stays
// reserved for the calling test until it finishes.
func Open(t testing.TB) *pgxpool.Pool {
	t.Helper()

	// Package tests run two or three levels below the repository root.
	for _, path := range []string{"../../.env", "../../../.env"} {
		_ = godotenv.Load(path)
	}

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	migrateOnce.Do(func() {
		_, migrateErr = db.Migrate(dsn)
	})
	if migrateErr != nil {
		t.Fatalf("migrate test database: %v", migrateErr)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn, 24)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		t.Fatalf("acquire lock connection: %v", err)
	}
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", lockKey); err != nil {
		conn.Release()
		pool.Close()
		t.Fatalf("lock test database: %v", err)
	}

	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", lockKey)
		conn.Release()
		pool.Close()
	})

	Reset(t, pool)
	return pool
}

// Reset empties every table.
func Reset(t testing.TB, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		"TRUNCATE public.payments, public.invoice_lines, public.bookings, public.invoices, public.rooms, public.members CASCADE")
	if err != nil {
		t.Fatalf("reset test database: %v", err)
	}
}
