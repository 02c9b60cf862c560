package main

import (
	"fmt"

	"github.com/goliatone/go-messenger/adapters/zaplogger"
	sqlstore "github.com/goliatone/go-messenger/store/sql"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply report store migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := opts.loadConfig(ctx)
			if err != nil {
				return err
			}
			logger, err := zaplogger.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			client, err := sqlstore.Open(cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			if err := sqlstore.Migrate(ctx, client, cfg.Database.Driver); err != nil {
				return err
			}
			logger.Info("migrations applied", "driver", cfg.Database.Driver, "dialect", sqlstore.MigrationDialect(cfg.Database.Driver))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return err
		},
	}
}
