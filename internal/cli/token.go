package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bizdash/internal/authz"
	"bizdash/internal/config"
	"bizdash/internal/middleware"
)

func newTokenCommand(load func() (*config.Config, error)) *cobra.Command {
	var (
		userID int
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API token with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roleID, err := authz.ParseRole(role)
			if err != nil {
				return err
			}
			if userID <= 0 {
				return fmt.Errorf("--user must be positive")
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			tok, err := middleware.IssueToken([]byte(cfg.Auth.JWTSecret), userID, roleID, ttl)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().IntVarP(&userID, "user", "u", 0, "user id claim")
	cmd.Flags().StringVarP(&role, "role", "r", "operations", "consultant|operations|auditor|management|admin or a role id")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
