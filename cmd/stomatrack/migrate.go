package main

import (
	"stomatrack/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := repository.NewDB(cfg.Database.Driver, cfg.Database.URL, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.MigrateDB(db, cfg.Database.Driver, logger); err != nil {
				return err
			}
			logger.Info("Migrations complete", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}
