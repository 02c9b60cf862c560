// Package messenger builds Shortcut iteration reports and turns Shortcut
// webhook deliveries into Slack notifications.
package messenger

import "github.com/goliatone/go-messenger/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type IterationReport = core.IterationReport
type IterationData = core.IterationData
type ReportDetail = core.ReportDetail
type ReportFilter = core.ReportFilter
type ReportPage = core.ReportPage
type CreateReportRequest = core.CreateReportRequest

var (
	WithLogger         = core.WithLogger
	WithLoggerProvider = core.WithLoggerProvider
	WithErrorMapper    = core.WithErrorMapper
	WithTrackerClient  = core.WithTrackerClient
	WithReportStore    = core.WithReportStore
	WithClock          = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}
