package main

import (
	"context"
	"errors"

	messenger "github.com/goliatone/go-messenger"
	"github.com/goliatone/go-messenger/adapters/gocommand"
	"github.com/goliatone/go-messenger/adapters/zaplogger"
	"github.com/goliatone/go-messenger/core"
	"github.com/goliatone/go-messenger/notify"
	"github.com/goliatone/go-messenger/shortcut"
	sqlstore "github.com/goliatone/go-messenger/store/sql"
	"github.com/goliatone/go-messenger/webhooks"
	persistence "github.com/goliatone/go-persistence-bun"
)

// appNeeds selects which collaborators a command wires. Each one checks its
// own credentials, so a command only fails on settings it actually uses.
type appNeeds struct {
	tracker          bool
	database         bool
	webhooks         bool
	logNotifications bool
}

type app struct {
	cfg      core.Config
	logger   *zaplogger.Logger
	provider *zaplogger.Provider
	client   *persistence.Client
	facade   *messenger.Facade
	subs     *gocommand.Subscriptions
}

func bootstrap(ctx context.Context, cfg core.Config, needs appNeeds) (_ *app, err error) {
	logger, err := zaplogger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:      cfg,
		logger:   logger,
		provider: zaplogger.NewProvider(logger),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	serviceOpts := []messenger.Option{
		messenger.WithLoggerProvider(a.provider),
	}
	if needs.tracker {
		tracker, err := shortcut.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		serviceOpts = append(serviceOpts, messenger.WithTrackerClient(tracker))
	}
	if needs.database {
		store, err := a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		serviceOpts = append(serviceOpts, messenger.WithReportStore(store))
	}

	service, err := messenger.NewService(cfg, serviceOpts...)
	if err != nil {
		return nil, err
	}

	var facadeOpts []messenger.FacadeOption
	if needs.webhooks {
		dispatcher, err := a.webhookDispatcher(needs.logNotifications)
		if err != nil {
			return nil, err
		}
		facadeOpts = append(facadeOpts, messenger.WithWebhookHandler(dispatcher))
	}
	a.facade, err = messenger.NewFacade(service, facadeOpts...)
	if err != nil {
		return nil, err
	}
	a.subs, err = a.facade.Register(gocommand.NewRegistryAdapter(nil))
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) (core.ReportStore, error) {
	client, err := sqlstore.Open(a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.client = client
	if err := sqlstore.Migrate(ctx, client, a.cfg.Database.Driver); err != nil {
		return nil, err
	}
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client, sqlstore.WithReportCache(a.cfg.ReportCacheTTL()))
	if err != nil {
		return nil, err
	}
	return factory.ReportStore(), nil
}

func (a *app) webhookDispatcher(logNotifications bool) (*webhooks.Dispatcher, error) {
	var notifier core.Notifier
	if logNotifications {
		notifier = notify.NewLogNotifier(a.provider.GetLogger("messenger.notify"))
	} else {
		slack, err := notify.NewSlackNotifier(a.cfg)
		if err != nil {
			return nil, err
		}
		notifier = slack
	}
	logger := a.provider.GetLogger("messenger.webhooks")
	return webhooks.NewDispatcher(
		webhooks.NewSignatureVerifier(a.cfg, logger),
		notifier,
		webhooks.WithRules(webhooks.DefaultRules(a.cfg.Slack)...),
		webhooks.WithLogger(logger),
	), nil
}

func (a *app) Close() error {
	if a == nil {
		return nil
	}
	if a.subs != nil {
		a.subs.Close()
	}
	var errs []error
	if a.client != nil {
		errs = append(errs, a.client.Close())
	}
	if a.logger != nil {
		// stderr/stdout sinks reject fsync on some platforms
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}
