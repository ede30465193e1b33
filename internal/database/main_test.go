package database

import (
	"context"
	"testing"

	"github.com/surrealdb/surrealdb.go"

	"github.com/nfrund/authweb/internal/config"
	"github.com/nfrund/authweb/internal/testutils"
)

// setupTestDB connects to the database named by .env.test, applies the
// schema and registers cleanup of every user record. Tests are skipped in
// short mode or when no database is reachable.
func setupTestDB(t *testing.T) (*surrealdb.DB, config.Provider) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := testutils.ConfigForTests(t)
	if cfg.GetDBURL() == "" {
		t.Skip("SURREAL_URL not set")
	}

	ctx := context.Background()
	conn := NewConnection(cfg)
	if err := conn.Connect(ctx); err != nil {
		t.Skipf("database not reachable: %v", err)
	}
	db, err := conn.DB()
	if err != nil {
		t.Fatalf("connection not usable: %v", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		_ = Execute(context.Background(), db, "DELETE user", nil)
		_ = conn.Close(context.Background())
	})
	return db, cfg
}
