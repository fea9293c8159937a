// Package cli provides the scheduler command line: the HTTP server, a
// terminal summary, a JSON import into the local table and a token helper.
package cli

import (
	"github.com/spf13/cobra"

	"bizdash/internal/config"
)

// loadConfigFunc is a function variable so tests can supply a config.
var loadConfigFunc = config.LoadConfig

func NewRootCommand(version string) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:     "scheduler",
		Short:   "Business dashboard scheduler",
		Version: version,
		// usage on errors hides the actual failure
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to config.yaml")

	load := func() (*config.Config, error) { return loadConfigFunc(configPath) }

	root.AddCommand(
		newServeCommand(load),
		newSummaryCommand(load),
		newImportCommand(load),
		newTokenCommand(load),
	)
	return root
}
