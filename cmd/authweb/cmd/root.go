package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nfrund/authweb/internal/app"
	"github.com/nfrund/authweb/internal/config"
	"github.com/nfrund/authweb/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "authweb",
	Short: "Account registration, login and password reset web app",
	Long: `authweb serves a small server-rendered site with signup, login,
session-based authentication and email password reset, backed by SurrealDB.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration, installs the logger and builds the
// application container.
func bootstrap() (*app.App, error) {
	cfg := config.New()
	logging.New()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.New(cfg), nil
}

// shutdown releases the container's services once a command finishes.
func shutdown(a *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = a.Shutdown(ctx)
}
