package cli

import (
	"github.com/spf13/cobra"

	"bizdash/internal/app"
	"bizdash/internal/config"
)

func newServeCommand(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return app.Run(cfg)
		},
	}
}
