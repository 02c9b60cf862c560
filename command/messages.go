package command

import (
	"strings"

	"github.com/goliatone/go-messenger/core"
)

const (
	TypeCreateReport    = "messenger.command.report.create"
	TypeDispatchWebhook = "messenger.command.webhook.dispatch"
)

type CreateReportMessage struct {
	Request core.CreateReportRequest
}

func (CreateReportMessage) Type() string { return TypeCreateReport }

func (m CreateReportMessage) Validate() error {
	if strings.TrimSpace(m.Request.IterationName) == "" {
		return commandValidationError("iteration_name", "This field is required.")
	}
	return nil
}

type DispatchWebhookMessage struct {
	Request core.InboundRequest
}

func (DispatchWebhookMessage) Type() string { return TypeDispatchWebhook }

func (m DispatchWebhookMessage) Validate() error {
	if len(m.Request.Body) == 0 {
		return commandInvalidInputError("command: webhook body is required")
	}
	return nil
}
