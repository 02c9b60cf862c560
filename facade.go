package messenger

import (
	"fmt"

	"github.com/goliatone/go-messenger/adapters/gocommand"
	messengercommand "github.com/goliatone/go-messenger/command"
	"github.com/goliatone/go-messenger/core"
	messengerquery "github.com/goliatone/go-messenger/query"
)

type ReportService interface {
	messengercommand.ReportCreator
	messengerquery.ReportBuilder
	messengerquery.ReportReader
}

type Commands struct {
	CreateReport    *messengercommand.CreateReportCommand
	DispatchWebhook *messengercommand.DispatchWebhookCommand
}

type Queries struct {
	BuildReport     *messengerquery.BuildReportQuery
	GetReport       *messengerquery.GetReportQuery
	GetReportDetail *messengerquery.GetReportDetailQuery
	ListReports     *messengerquery.ListReportsQuery
}

type Facade struct {
	service  ReportService
	webhooks core.InboundHandler
	commands Commands
	queries  Queries
}

type FacadeOption func(*Facade)

// WithWebhookHandler wires the webhook dispatch command. Without it the
// command is left nil.
func WithWebhookHandler(handler core.InboundHandler) FacadeOption {
	return func(f *Facade) {
		f.webhooks = handler
	}
}

func NewFacade(service ReportService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("messenger: report service is required")
	}
	facade := &Facade{service: service}
	for _, opt := range opts {
		if opt != nil {
			opt(facade)
		}
	}

	facade.commands = Commands{
		CreateReport: messengercommand.NewCreateReportCommand(service),
	}
	if facade.webhooks != nil {
		facade.commands.DispatchWebhook = messengercommand.NewDispatchWebhookCommand(facade.webhooks)
	}
	facade.queries = Queries{
		BuildReport:     messengerquery.NewBuildReportQuery(service),
		GetReport:       messengerquery.NewGetReportQuery(service),
		GetReportDetail: messengerquery.NewGetReportDetailQuery(service),
		ListReports:     messengerquery.NewListReportsQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() ReportService {
	if f == nil {
		return nil
	}
	return f.service
}

// Register subscribes every handler on the go-command dispatcher so callers
// can use gocommand.Dispatch and gocommand.Query. Close the returned
// subscriptions to detach them.
func (f *Facade) Register(adapter *gocommand.RegistryAdapter) (*gocommand.Subscriptions, error) {
	if f == nil {
		return nil, fmt.Errorf("messenger: facade is nil")
	}
	if adapter == nil {
		adapter = gocommand.NewRegistryAdapter(nil)
	}
	subs := &gocommand.Subscriptions{}
	register := []func() error{
		func() error {
			return subs.Add(gocommand.RegisterAndSubscribe[messengercommand.CreateReportMessage](adapter, f.commands.CreateReport))
		},
		func() error {
			return subs.Add(gocommand.RegisterAndSubscribeQuery[messengerquery.BuildReportMessage, core.ReportDetail](adapter, f.queries.BuildReport))
		},
		func() error {
			return subs.Add(gocommand.RegisterAndSubscribeQuery[messengerquery.GetReportMessage, core.IterationReport](adapter, f.queries.GetReport))
		},
		func() error {
			return subs.Add(gocommand.RegisterAndSubscribeQuery[messengerquery.GetReportDetailMessage, core.ReportDetail](adapter, f.queries.GetReportDetail))
		},
		func() error {
			return subs.Add(gocommand.RegisterAndSubscribeQuery[messengerquery.ListReportsMessage, core.ReportPage](adapter, f.queries.ListReports))
		},
	}
	if f.commands.DispatchWebhook != nil {
		register = append(register, func() error {
			return subs.Add(gocommand.RegisterAndSubscribe[messengercommand.DispatchWebhookMessage](adapter, f.commands.DispatchWebhook))
		})
	}
	for _, fn := range register {
		if err := fn(); err != nil {
			subs.Close()
			return nil, err
		}
	}
	return subs, nil
}
