package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[CreateReportMessage]    = (*CreateReportCommand)(nil)
	_ gocmd.Commander[DispatchWebhookMessage] = (*DispatchWebhookCommand)(nil)
)
