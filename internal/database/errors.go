package database

import (
	"errors"
	"fmt"
	"strings"
)

// Common database errors that can be checked using errors.Is()
var (
	// ErrNotConnected is returned when no healthy connection is available.
	ErrNotConnected = errors.New("database not connected")

	// ErrQueryFailed is returned when a query execution fails.
	ErrQueryFailed = errors.New("query execution failed")

	// ErrUniqueViolation is returned when a write collides with a unique index.
	ErrUniqueViolation = errors.New("unique index violation")
)

// DBError represents a database error with additional context.
type DBError struct {
	// The sentinel classifying the failure.
	kind error

	// The underlying error that was returned by the database driver.
	err error

	// Additional context about where the error occurred.
	context string

	// The query that was being executed when the error occurred.
	query string
}

// NewDBError creates a new DBError of the given kind. The context should
// describe what operation was being performed when the error occurred.
func NewDBError(kind error, context string) *DBError {
	return &DBError{kind: kind, context: context}
}

// Wrap records the driver error that caused e.
func (e *DBError) Wrap(err error) *DBError {
	e.err = err
	return e
}

// WithQuery adds query information to the error.
func (e *DBError) WithQuery(query string) *DBError {
	e.query = query
	return e
}

// Error returns the error message. Query parameters are never included since
// they may carry password hashes or token digests.
func (e *DBError) Error() string {
	msg := e.context
	if e.query != "" {
		msg = fmt.Sprintf("%s\nQuery: %s", msg, strings.TrimSpace(e.query))
	}
	if e.err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.err)
	}
	return msg
}

// Unwrap returns the underlying driver error.
func (e *DBError) Unwrap() error {
	return e.err
}

// Is matches the error's kind as well as anything in its chain.
func (e *DBError) Is(target error) bool {
	return e.kind != nil && e.kind == target
}

// isUniqueViolation reports whether err is SurrealDB's rejection of a
// duplicate value on a UNIQUE index.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "already contains") && strings.Contains(msg, "index")
}
