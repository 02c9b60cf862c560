package webhooks

import (
	"context"
	"errors"
	"net/http"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-messenger/core"
)

type Dispatcher struct {
	verifier SignatureVerifier
	notifier core.Notifier
	rules    []Rule
	logger   core.Logger
}

type DispatcherOption func(*Dispatcher)

func WithRules(rules ...Rule) DispatcherOption {
	return func(d *Dispatcher) {
		filtered := make([]Rule, 0, len(rules))
		for _, rule := range rules {
			if rule != nil {
				filtered = append(filtered, rule)
			}
		}
		d.rules = filtered
	}
}

func WithLogger(logger core.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func NewDispatcher(verifier SignatureVerifier, notifier core.Notifier, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		verifier: verifier,
		notifier: notifier,
		rules:    DefaultRules(core.SlackConfig{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	d.logger = glog.Ensure(d.logger)
	if d.verifier.Logger == nil {
		d.verifier.Logger = d.logger
	}
	return d
}

// Handle processes one delivery. Notification failures do not stop the
// remaining actions; they are joined into a single error after every action
// was evaluated.
func (d *Dispatcher) Handle(ctx context.Context, req core.InboundRequest) (core.InboundResult, error) {
	if d == nil {
		return core.InboundResult{StatusCode: http.StatusInternalServerError}, core.NewConfigError("webhooks", "dispatcher is not configured")
	}
	startedAt := time.Now()
	logger := d.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}

	status, err := d.verifier.Check(ctx, req)
	metadata := map[string]any{"signature": string(status)}
	if err != nil {
		logger.Warn("webhook rejected", "reason", "signature", "source", req.Source)
		return core.InboundResult{Accepted: false, StatusCode: http.StatusUnauthorized, Metadata: metadata}, err
	}

	payload, err := DecodePayload(req.Body)
	if err != nil {
		logger.Warn("webhook rejected", "reason", "payload", "error", err.Error())
		return core.InboundResult{Accepted: false, StatusCode: http.StatusBadRequest, Metadata: metadata}, err
	}
	metadata["actions"] = len(payload.Actions)
	if len(payload.Actions) == 0 {
		metadata["notifications"] = 0
		return core.InboundResult{Accepted: true, StatusCode: http.StatusOK, Metadata: metadata}, nil
	}

	refs := ResolveReferences(payload.References)
	sent := 0
	var failures []error
	for _, action := range payload.Actions {
		for _, rule := range d.rules {
			notification, ok := rule.Match(action, refs)
			if !ok {
				continue
			}
			if err := d.notify(ctx, notification); err != nil {
				logger.Error("webhook notification failed",
					"rule", rule.Name(),
					"story_id", action.ID.String(),
					"channel", notification.Channel,
					"error", err.Error(),
				)
				failures = append(failures, err)
				continue
			}
			sent++
		}
	}

	metadata["notifications"] = sent
	metadata["duration_ms"] = time.Since(startedAt).Milliseconds()
	if len(failures) > 0 {
		metadata["failed_notifications"] = len(failures)
		return core.InboundResult{Accepted: true, StatusCode: http.StatusBadGateway, Metadata: metadata},
			dispatchError(errors.Join(failures...), len(failures))
	}
	logger.Info("webhook processed", core.FlattenFields(metadata)...)
	return core.InboundResult{Accepted: true, StatusCode: http.StatusOK, Metadata: metadata}, nil
}

func (d *Dispatcher) notify(ctx context.Context, notification core.Notification) error {
	if d.notifier == nil {
		return core.NewConfigError("notifier", "notifier is not configured")
	}
	return d.notifier.Notify(ctx, notification)
}

var _ core.InboundHandler = (*Dispatcher)(nil)
