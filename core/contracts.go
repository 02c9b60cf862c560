package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// InboundRequest is a transport-neutral inbound delivery, such as a webhook
// POST. Header lookups are case-insensitive.
type InboundRequest struct {
	Source   string
	Headers  map[string]string
	Body     []byte
	Metadata map[string]any
}

type InboundResult struct {
	Accepted   bool
	StatusCode int
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// TrackerClient reads iteration data from the project tracker.
type TrackerClient interface {
	GetIterationByName(ctx context.Context, name string) (Iteration, error)
	ListIterationStories(ctx context.Context, iterationID ID) ([]Story, error)
	GetStoryWithHistory(ctx context.Context, storyID ID) (Story, error)
	ListLabels(ctx context.Context) ([]Label, error)
}

type ReportStore interface {
	Create(ctx context.Context, report IterationReport) (IterationReport, error)
	Get(ctx context.Context, id string) (IterationReport, error)
	List(ctx context.Context, filter ReportFilter) (ReportPage, error)
}

type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

type InboundHandler interface {
	Handle(ctx context.Context, req InboundRequest) (InboundResult, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
