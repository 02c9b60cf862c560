package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-messenger/core"
)

type ReportCreator interface {
	CreateReport(ctx context.Context, req core.CreateReportRequest) (core.IterationReport, error)
}

type CreateReportCommand struct {
	service ReportCreator
}

func NewCreateReportCommand(service ReportCreator) *CreateReportCommand {
	return &CreateReportCommand{service: service}
}

func (c *CreateReportCommand) Execute(ctx context.Context, msg CreateReportMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: report service is required")
	}
	out, err := c.service.CreateReport(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

// DispatchWebhookCommand runs one delivery through the webhook handler. The
// result is stored even when the handler fails so callers can answer with
// its status code.
type DispatchWebhookCommand struct {
	handler core.InboundHandler
}

func NewDispatchWebhookCommand(handler core.InboundHandler) *DispatchWebhookCommand {
	return &DispatchWebhookCommand{handler: handler}
}

func (c *DispatchWebhookCommand) Execute(ctx context.Context, msg DispatchWebhookMessage) error {
	if c == nil || c.handler == nil {
		return commandDependencyError("command: webhook handler is required")
	}
	out, err := c.handler.Handle(ctx, msg.Request)
	storeResult(ctx, out)
	return err
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
