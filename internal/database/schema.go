package database

import (
	"context"
	"log/slog"

	"github.com/surrealdb/surrealdb.go"
)

// schema is applied at startup. Every statement is idempotent.
const schema = `
DEFINE TABLE IF NOT EXISTS user SCHEMALESS;
DEFINE INDEX IF NOT EXISTS user_email_unique ON TABLE user FIELDS email UNIQUE;
DEFINE INDEX IF NOT EXISTS user_reset_token ON TABLE user FIELDS resetToken;
`

// EnsureSchema defines the user table and its indexes. The unique email
// index is what makes concurrent sign-ups with one address impossible.
func EnsureSchema(ctx context.Context, db *surrealdb.DB) error {
	if err := Execute(ctx, db, schema, nil); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Database schema ensured", "event", "db_schema_ready")
	return nil
}
