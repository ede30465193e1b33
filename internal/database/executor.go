package database

import (
	"context"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Query executes a raw SurrealQL query with parameters and returns multiple results.
// It's a generic function that can unmarshal results into any type T.
//
// Example:
//
//	query := "SELECT * FROM user WHERE active = $active"
//	users, err := Query[User](ctx, db, query, map[string]any{"active": true})
func Query[T any](ctx context.Context, db *surrealdb.DB, query string, params map[string]any) ([]T, error) {
	queryResults, err := surrealdb.Query[[]T](ctx, db, query, params)
	if err != nil {
		return nil, classify(err, query)
	}
	if len(*queryResults) == 0 {
		return nil, nil
	}
	return (*queryResults)[0].Result, nil
}

// QueryOne executes a query and returns a single result.
// If no results are found, it returns nil, nil.
//
// Example:
//
//	query := "SELECT * FROM user WHERE email = $email"
//	user, err := QueryOne[User](ctx, db, query, map[string]any{"email": "test@example.com"})
func QueryOne[T any](ctx context.Context, db *surrealdb.DB, query string, params map[string]any) (*T, error) {
	// Ensure we're only getting one result for SELECT queries.
	// CREATE/UPDATE/DELETE statements don't support LIMIT.
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") && !hasLimitClause(query) {
		query += " LIMIT 1"
	}

	// Reuse the Query helper to avoid duplicating logic for handling results.
	results, err := Query[T](ctx, db, query, params)
	if err != nil {
		return nil, err // Error is already wrapped by the Query function
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// Execute runs a query whose results are not needed (DEFINE, UPDATE, DELETE, etc.).
//
// Example:
//
//	err := Execute(ctx, db, "UPDATE $id SET name = $name", map[string]any{
//	    "id":   domain.NewUserRecordID("123"),
//	    "name": "New Name",
//	})
func Execute(ctx context.Context, db *surrealdb.DB, query string, params map[string]any) error {
	// Use the underlying Query method but discard the results. We only care about the error.
	if _, err := surrealdb.Query[any](ctx, db, query, params); err != nil {
		return classify(err, query)
	}
	return nil
}

// classify wraps a driver error in a DBError, flagging unique index violations.
func classify(err error, query string) error {
	kind := ErrQueryFailed
	if isUniqueViolation(err) {
		kind = ErrUniqueViolation
	}
	return NewDBError(kind, "query execution failed").WithQuery(query).Wrap(err)
}

// hasLimitClause checks if the query already has a LIMIT clause
func hasLimitClause(query string) bool {
	// Simple check for LIMIT keyword (case insensitive)
	query = " " + strings.ToUpper(query) + " "
	return strings.Contains(query, " LIMIT ")
}
