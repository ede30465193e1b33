// Package app assembles the application's services in a dependency
// injection container and runs them.
package app

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/nfrund/authweb/internal/audit"
	"github.com/nfrund/authweb/internal/auth"
	"github.com/nfrund/authweb/internal/config"
	"github.com/nfrund/authweb/internal/server"
)

// App owns the service container.
type App struct {
	cfg      config.Provider
	injector *do.RootScope
}

// New registers every service provider. Services are built lazily on
// first use, so commands only connect to what they need.
func New(cfg config.Provider) *App {
	injector := do.New(Infrastructure, Web)
	do.ProvideValue(injector, cfg)
	return &App{cfg: cfg, injector: injector}
}

// Injector exposes the container, for tests and diagnostics.
func (a *App) Injector() do.Injector {
	return a.injector
}

// Serve starts the audit subscriber and the HTTP server and blocks until
// ctx is canceled.
func (a *App) Serve(ctx context.Context) error {
	subscriber, err := do.Invoke[*audit.Subscriber](a.injector)
	if err != nil {
		return err
	}
	if err := subscriber.Start(ctx); err != nil {
		return err
	}

	srv, err := do.Invoke[*server.Server](a.injector)
	if err != nil {
		return err
	}
	return srv.Start(ctx, ":"+a.cfg.GetPort())
}

// PruneExpiredTokens clears every reset token that has already expired.
func (a *App) PruneExpiredTokens(ctx context.Context) (int, error) {
	svc, err := do.Invoke[*auth.Service](a.injector)
	if err != nil {
		return 0, err
	}
	return svc.PruneExpiredTokens(ctx)
}

// Shutdown stops every service the container built, in reverse
// dependency order.
func (a *App) Shutdown(ctx context.Context) error {
	report := a.injector.ShutdownWithContext(ctx)
	if report != nil && !report.Succeed {
		slog.Error("Shutdown finished with errors", "report", report.Error())
		return report
	}
	return nil
}
