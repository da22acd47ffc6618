package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"MoviesApp/internal/config"
	"MoviesApp/internal/database"
	"MoviesApp/internal/movies"
)

func newMigrateCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply the embedded Postgres schema to STORE_DSN and optionally seed the catalog. Seeding happens at most once per database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewStoreConfig()
			if err != nil {
				return err
			}
			if cfg.DSN == "" {
				return errors.New("STORE_DSN is required")
			}

			ctx := cmd.Context()
			db, err := database.Open(ctx, cfg.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")

			if !seed {
				return nil
			}
			n, err := movies.NewPostgresStore(db).Seed(ctx, movies.DefaultSeed())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d movies\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "insert the default catalog unless it was seeded before")

	return cmd
}
