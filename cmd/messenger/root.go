package main

import (
	"context"
	"strings"

	"github.com/goliatone/go-messenger/core"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFiles    []string
	logLevel    string
	development bool
	dbDriver    string
	dbDSN       string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "messenger",
		Short:         "Shortcut iteration reports and Slack notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files to read; process environment wins")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.BoolVar(&opts.development, "dev", false, "human readable development logging")
	flags.StringVar(&opts.dbDriver, "db-driver", "", "database driver (sqlite3 or postgres)")
	flags.StringVar(&opts.dbDSN, "db-dsn", "", "database connection string")

	cmd.AddCommand(
		newServeCommand(opts),
		newReportCommand(opts),
		newMigrateCommand(opts),
	)
	return cmd
}

// runtimeConfig holds the flag overrides; zero values leave lower layers in
// place.
func (o *rootOptions) runtimeConfig() core.Config {
	var cfg core.Config
	cfg.Log.Level = strings.TrimSpace(o.logLevel)
	cfg.Log.Development = o.development
	cfg.Database.Driver = strings.TrimSpace(o.dbDriver)
	cfg.Database.DSN = strings.TrimSpace(o.dbDSN)
	return cfg
}

func (o *rootOptions) loadConfig(ctx context.Context, overrides ...func(*core.Config)) (core.Config, error) {
	runtime := o.runtimeConfig()
	for _, override := range overrides {
		if override != nil {
			override(&runtime)
		}
	}
	provider := core.NewCfgxConfigProvider(core.NewEnvConfigLoader(o.envFiles...))
	return core.LoadConfig(ctx, provider, nil, runtime)
}
