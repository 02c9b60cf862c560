package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goliatone/go-messenger/core"
	"github.com/goliatone/go-messenger/httpapi"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		addr             string
		logNotifications bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the webhook receiver and the report API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := opts.loadConfig(ctx, func(runtime *core.Config) {
				runtime.HTTP.Addr = strings.TrimSpace(addr)
			})
			if err != nil {
				return err
			}
			a, err := bootstrap(ctx, cfg, appNeeds{
				tracker:          true,
				database:         true,
				webhooks:         true,
				logNotifications: logNotifications,
			})
			if err != nil {
				return err
			}
			defer a.Close()

			api := httpapi.NewServer(httpapi.Dependencies{
				ServiceName: cfg.ServiceName,
				Commands:    a.facade.Commands(),
				Queries:     a.facade.Queries(),
				Logger:      a.provider.GetLogger("messenger.http"),
				// live builds fetch every story in the iteration
				RequestTimeout: 4 * cfg.RequestTimeout(),
			})
			return runServer(ctx, a, api.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from MESSENGER_HTTP_ADDR)")
	cmd.Flags().BoolVar(&logNotifications, "log-notifications", false, "log webhook notifications instead of posting to Slack")
	return cmd
}

func runServer(ctx context.Context, a *app, handler http.Handler) error {
	server := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
