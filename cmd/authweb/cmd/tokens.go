package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nfrund/authweb/internal/database"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Manage password reset tokens",
}

var pruneTimeout time.Duration

var tokensPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Clear expired password reset tokens",
	Long: `Removes reset tokens whose expiry has passed. Expired tokens are already
rejected at use time; pruning only keeps the user records tidy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer shutdown(a)

		ctx, cancel := pruneContext(cmd.Context(), pruneTimeout)
		defer cancel()

		n, err := a.PruneExpiredTokens(ctx)
		if err != nil {
			return fmt.Errorf("failed to prune reset tokens: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired reset token(s)\n", n)
		return nil
	},
}

// pruneContext bounds the whole run by timeout and lets the store's write use
// all of it instead of its shorter per-call default.
func pruneContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx := database.WithExecuteTimeout(parent, timeout)
	return context.WithTimeout(ctx, timeout)
}

func init() {
	tokensPruneCmd.Flags().DurationVar(&pruneTimeout, "timeout", 30*time.Second, "maximum time to spend pruning")
	tokensCmd.AddCommand(tokensPruneCmd)
	rootCmd.AddCommand(tokensCmd)
}
