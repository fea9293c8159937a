package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"bizdash/internal/app"
	"bizdash/internal/config"
	"bizdash/internal/models"
	"bizdash/internal/repositories"
	"bizdash/internal/upstream"
)

type itemUpserter interface {
	Upsert(ctx context.Context, it models.SchedulerItem) error
}

// openRepoFunc is replaced in tests.
var openRepoFunc = openRepo

func openRepo(cfg *config.Config) (itemUpserter, func(), error) {
	db, err := app.OpenDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		return nil, nil, fmt.Errorf("import needs database.url")
	}
	loc, err := cfg.Location()
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repositories.NewSchedulerItemRepository(db, loc), func() { _ = db.Close() }, nil
}

func newImportCommand(load func() (*config.Config, error)) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load an exported item list into the local scheduler table",
		Long: `Import reads a JSON export of the remote scheduler API (a bare array or an
object with an "items" or "data" array) and upserts every valid item by id.
Malformed items are reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			items, err := upstream.DecodeItems(body, loc)
			if err != nil {
				return err
			}

			repo, closeRepo, err := openRepoFunc(cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			imported, skipped := 0, 0
			for _, it := range items {
				if verr := it.Validate(); verr != nil {
					log.Printf("[import][skip] %v", verr)
					skipped++
					continue
				}
				if err := repo.Upsert(cmd.Context(), it); err != nil {
					return fmt.Errorf("upsert %s: %w", it.ID, err)
				}
				imported++
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items, skipped %d.\n", imported, skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON export to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
