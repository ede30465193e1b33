package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/surrealdb/surrealdb.go"

	"github.com/nfrund/authweb/internal/config"
)

// Connection manages a single authenticated SurrealDB session.
type Connection struct {
	cfg     config.Provider
	conn    *surrealdb.DB
	mu      sync.RWMutex
	healthy bool
}

// NewConnection creates an unconnected Connection. Call Connect before use.
func NewConnection(cfg config.Provider) *Connection {
	return &Connection{cfg: cfg}
}

// Connect dials the database, signs in and selects the namespace and database.
// Calling Connect on an open connection is a no-op.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	dbURL := c.cfg.GetDBURL()
	slog.DebugContext(ctx, "Attempting to connect to database", "event", "db_connect_attempt", "db_url", redactDBURL(dbURL))

	conn, err := surrealdb.FromEndpointURLString(ctx, dbURL)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create database connection", "event", "db_connect_failure",
			"db_url", redactDBURL(dbURL),
			"error", err,
		)
		return NewDBError(ErrNotConnected, "failed to connect to database at "+redactDBURL(dbURL)).Wrap(err)
	}

	authData := &surrealdb.Auth{
		Username: c.cfg.GetDBUser(),
		Password: c.cfg.GetDBPass(),
	}
	if _, err = conn.SignIn(ctx, authData); err != nil {
		conn.Close(ctx)
		slog.ErrorContext(ctx, "Failed to sign in to database", "event", "db_auth_failure",
			"db_url", redactDBURL(dbURL),
			"user", c.cfg.GetDBUser(),
			"error", err,
		)
		return fmt.Errorf("failed to sign in: %w", err)
	}

	if err = conn.Use(ctx, c.cfg.GetDBNs(), c.cfg.GetDBDb()); err != nil {
		conn.Close(ctx)
		slog.ErrorContext(ctx, "Failed to use namespace/database", "event", "db_namespace_failure",
			"namespace", c.cfg.GetDBNs(),
			"database", c.cfg.GetDBDb(),
			"error", err,
		)
		return fmt.Errorf("failed to use namespace/db: %w", err)
	}

	c.conn = conn
	c.healthy = true
	slog.InfoContext(ctx, "Database connection established", "event", "db_connect_success",
		"db_url", redactDBURL(dbURL),
		"namespace", c.cfg.GetDBNs(),
		"database", c.cfg.GetDBDb(),
	)
	return nil
}

// DB returns the underlying database connection if it's healthy.
func (c *Connection) DB() (*surrealdb.DB, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil || !c.healthy {
		return nil, NewDBError(ErrNotConnected, "database not connected or unhealthy")
	}
	return c.conn, nil
}

// Ping asks the server for its version and records the outcome as the
// connection's health.
func (c *Connection) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		c.healthy = false
		return NewDBError(ErrNotConnected, "no active database connection")
	}
	if _, err := c.conn.Version(ctx); err != nil {
		c.healthy = false
		return fmt.Errorf("database health check failed for %s: %w", redactDBURL(c.cfg.GetDBURL()), err)
	}
	c.healthy = true
	return nil
}

// IsHealthy returns the status recorded by the last Connect or Ping.
func (c *Connection) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

// Close shuts down the connection. It is safe to call more than once.
func (c *Connection) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.healthy = false
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close(ctx)
	c.conn = nil
	return err
}

// HealthCheck reports whether the database still answers.
func (c *Connection) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx)
}

// Shutdown closes the connection when the owning container shuts down.
func (c *Connection) Shutdown(ctx context.Context) error {
	return c.Close(ctx)
}

// redactDBURL parses a database URL and returns it with the password redacted.
func redactDBURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	return parsedURL.Redacted()
}
