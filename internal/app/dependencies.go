package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"

	"github.com/nfrund/authweb/internal/audit"
	"github.com/nfrund/authweb/internal/auth"
	"github.com/nfrund/authweb/internal/config"
	"github.com/nfrund/authweb/internal/database"
	"github.com/nfrund/authweb/internal/domain"
	"github.com/nfrund/authweb/internal/email"
	"github.com/nfrund/authweb/internal/metrics"
	"github.com/nfrund/authweb/internal/pubsub"
	"github.com/nfrund/authweb/internal/rendering"
	"github.com/nfrund/authweb/internal/server"
	"github.com/nfrund/authweb/internal/session"
	"github.com/nfrund/authweb/internal/storage"
	"github.com/nfrund/authweb/web"
)

const connectTimeout = 15 * time.Second

// Infrastructure provides the database, mail and event bus services.
var Infrastructure = do.Package(
	do.Lazy(provideConnection),
	do.Lazy(provideUserRepository),
	do.Lazy(provideEmailSender),
	do.Lazy(provideBus),
	do.Lazy(provideRegistry),
	do.Lazy(provideMetrics),
)

// Web provides the account service and everything the HTTP layer needs.
var Web = do.Package(
	do.Lazy(provideHasher),
	do.Lazy(provideAuthService),
	do.Lazy(provideAuditSubscriber),
	do.Lazy(provideSessionStore),
	do.Lazy(providePageStore),
	do.Lazy(provideRenderer),
	do.Lazy(provideServer),
)

func provideConnection(i do.Injector) (*database.Connection, error) {
	cfg := do.MustInvoke[config.Provider](i)
	conn := database.NewConnection(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}

	db, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}
	return conn, nil
}

func provideUserRepository(i do.Injector) (domain.UserRepository, error) {
	conn, err := do.Invoke[*database.Connection](i)
	if err != nil {
		return nil, err
	}
	db, err := conn.DB()
	if err != nil {
		return nil, err
	}
	return database.NewUserStore(db, do.MustInvoke[config.Provider](i)), nil
}

func provideEmailSender(i do.Injector) (domain.EmailSender, error) {
	return email.NewEmailService(do.MustInvoke[config.Provider](i))
}

func provideBus(i do.Injector) (*pubsub.WatermillBridge, error) {
	return pubsub.NewWatermillBridge(), nil
}

func provideRegistry(i do.Injector) (*prometheus.Registry, error) {
	return metrics.NewRegistry(), nil
}

func provideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(do.MustInvoke[*prometheus.Registry](i)), nil
}

func provideHasher(i do.Injector) (auth.PasswordHasher, error) {
	return auth.NewBcryptHasher(do.MustInvoke[config.Provider](i).GetBcryptCost()), nil
}

func provideAuthService(i do.Injector) (*auth.Service, error) {
	cfg := do.MustInvoke[config.Provider](i)

	users, err := do.Invoke[domain.UserRepository](i)
	if err != nil {
		return nil, err
	}
	mailer, err := do.Invoke[domain.EmailSender](i)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email service: %w", err)
	}

	return auth.NewService(users, do.MustInvoke[auth.PasswordHasher](i), mailer, do.MustInvoke[*pubsub.WatermillBridge](i), auth.Options{
		BaseURL:     cfg.GetAppBaseURL(),
		TokenTTL:    cfg.GetResetTokenTTL(),
		MailTimeout: cfg.GetMailTimeout(),
	}), nil
}

func provideAuditSubscriber(i do.Injector) (*audit.Subscriber, error) {
	return audit.NewSubscriber(do.MustInvoke[*pubsub.WatermillBridge](i), do.MustInvoke[*metrics.Metrics](i)), nil
}

func provideSessionStore(i do.Injector) (sessions.Store, error) {
	return session.NewStore(do.MustInvoke[config.Provider](i))
}

func providePageStore(i do.Injector) (*storage.PageStore, error) {
	return storage.NewEmbeddedPageStore(web.Public()), nil
}

func provideRenderer(i do.Injector) (rendering.Renderer, error) {
	return rendering.NewUniversalRenderer(), nil
}

func provideServer(i do.Injector) (*server.Server, error) {
	svc, err := do.Invoke[*auth.Service](i)
	if err != nil {
		return nil, err
	}
	sessionStore, err := do.Invoke[sessions.Store](i)
	if err != nil {
		return nil, err
	}
	conn := do.MustInvoke[*database.Connection](i)

	return server.New(server.Dependencies{
		Users:    do.MustInvoke[domain.UserRepository](i),
		Auth:     svc,
		Pages:    do.MustInvoke[*storage.PageStore](i),
		Renderer: do.MustInvoke[rendering.Renderer](i),
		Sessions: sessionStore,
		Registry: do.MustInvoke[*prometheus.Registry](i),
		Static:   web.Static(),
		Health:   conn.Ping,
	}), nil
}
