// Package testdb opens migrated in-memory databases for repository tests.
package testdb

import (
	"context"
	"os"
	"testing"

	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/migrations"
)

// Open returns an in-memory SQLite connection with every migration applied.
// The connection is closed when the test ends.
func Open(tb testing.TB) database.Connection {
	tb.Helper()

	ctx := context.Background()
	conn, err := sqlite.OpenMemory(ctx)
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = conn.Close() })

	if err := migrations.Run(ctx, conn, nil); err != nil {
		tb.Fatalf("run migrations: %v", err)
	}
	return conn
}

// OpenPostgres connects to TEST_DATABASE_URL and applies migrations. The
// test is skipped when the variable is unset.
func OpenPostgres(tb testing.TB) database.Connection {
	tb.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		tb.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	conn, err := database.NewConnection(ctx, database.Config{URL: url})
	if err != nil {
		tb.Fatalf("connect postgres: %v", err)
	}
	tb.Cleanup(func() { _ = conn.Close() })

	if err := migrations.Run(ctx, conn, nil); err != nil {
		tb.Fatalf("run migrations: %v", err)
	}
	return conn
}
