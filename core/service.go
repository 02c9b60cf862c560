package core

import (
	"context"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type ReportService interface {
	FetchIterationData(ctx context.Context, iterationName string) (IterationData, error)
	BuildReport(ctx context.Context, iterationName string) (ReportDetail, error)
	CreateReport(ctx context.Context, req CreateReportRequest) (IterationReport, error)
	GetReport(ctx context.Context, id string) (IterationReport, error)
	GetReportDetail(ctx context.Context, id string) (ReportDetail, error)
	ListReports(ctx context.Context, filter ReportFilter) (ReportPage, error)
}

// ReportDetail pairs a snapshot with its classification and summary. Report
// is empty when the detail was built live instead of loaded from the store.
type ReportDetail struct {
	Report   IterationReport   `json:"report"`
	Analysis IterationAnalysis `json:"analysis"`
	Summary  ReportSummary     `json:"summary"`
}

type Service struct {
	config         Config
	logger         Logger
	loggerProvider LoggerProvider
	errorMapper    ErrorMapper
	tracker        TrackerClient
	reports        ReportStore
	clock          func() time.Time
}

type ServiceDependencies struct {
	Logger         Logger
	LoggerProvider LoggerProvider
	ErrorMapper    ErrorMapper
	Tracker        TrackerClient
	ReportStore    ReportStore
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("messenger", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("messenger.reports"); named != nil {
			logger = glog.Ensure(named)
		}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = MapError
	}
	if builder.clock == nil {
		builder.clock = func() time.Time { return time.Now().UTC() }
	}
	if err := cfg.Validate(); err != nil {
		return nil, builder.errorMapper(err)
	}

	return &Service{
		config:         cfg,
		logger:         logger,
		loggerProvider: provider,
		errorMapper:    builder.errorMapper,
		tracker:        builder.tracker,
		reports:        builder.reportStore,
		clock:          builder.clock,
	}, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:         s.logger,
		LoggerProvider: s.loggerProvider,
		ErrorMapper:    s.errorMapper,
		Tracker:        s.tracker,
		ReportStore:    s.reports,
	}
}

// FetchIterationData resolves the iteration by exact name and collects its
// stories, each with full history, plus the workspace labels. Calls are
// sequential and any failure aborts the fetch.
func (s *Service) FetchIterationData(ctx context.Context, iterationName string) (data IterationData, err error) {
	startedAt := time.Now()
	fields := map[string]any{"iteration_name": iterationName}
	defer func() {
		fields["stories"] = len(data.Stories)
		s.observeOperation(ctx, startedAt, "fetch_iteration_data", err, fields)
	}()

	if s == nil || s.tracker == nil {
		return IterationData{}, s.mapError(NewConfigError("tracker", "tracker client is not configured"))
	}
	// Names are matched as given; surrounding whitespace is part of the name.
	if strings.TrimSpace(iterationName) == "" {
		return IterationData{}, s.mapError(newReportValidationError("iteration_name", "This field is required."))
	}

	iteration, err := s.tracker.GetIterationByName(ctx, iterationName)
	if err != nil {
		return IterationData{}, s.mapError(err)
	}
	fields["iteration_id"] = iteration.ID.String()

	summaries, err := s.tracker.ListIterationStories(ctx, iteration.ID)
	if err != nil {
		return IterationData{}, s.mapError(err)
	}
	stories := make([]Story, 0, len(summaries))
	for _, summary := range summaries {
		story, storyErr := s.tracker.GetStoryWithHistory(ctx, summary.ID)
		if storyErr != nil {
			return IterationData{}, s.mapError(storyErr)
		}
		stories = append(stories, story)
	}

	labels, err := s.tracker.ListLabels(ctx)
	if err != nil {
		return IterationData{}, s.mapError(err)
	}

	return IterationData{
		Iteration: iteration,
		Stories:   stories,
		Labels:    labels,
	}, nil
}

// BuildReport fetches and classifies an iteration without persisting it.
func (s *Service) BuildReport(ctx context.Context, iterationName string) (ReportDetail, error) {
	data, err := s.FetchIterationData(ctx, iterationName)
	if err != nil {
		return ReportDetail{}, err
	}
	return s.detailFor(IterationReport{}, data)
}

// CreateReport snapshots the current tracker state of an iteration. An
// unknown iteration is reported as a field error on iteration_name.
func (s *Service) CreateReport(ctx context.Context, req CreateReportRequest) (report IterationReport, err error) {
	startedAt := time.Now()
	name := req.IterationName
	defer func() {
		s.observeOperation(ctx, startedAt, "create_report", err, map[string]any{
			"iteration_name": name,
			"report_id":      report.ID,
		})
	}()

	if s == nil || s.reports == nil {
		return IterationReport{}, s.mapError(NewConfigError("report_store", "report store is not configured"))
	}
	data, err := s.FetchIterationData(ctx, name)
	if err != nil {
		if IsIterationNotFound(err) {
			return IterationReport{}, s.mapError(newReportValidationError("iteration_name", iterationNotFoundFieldMessage))
		}
		return IterationReport{}, err
	}

	created, err := s.reports.Create(ctx, IterationReport{
		IterationName: name,
		IterationData: data,
		CreatedAt:     s.clock(),
	})
	if err != nil {
		return IterationReport{}, s.mapError(err)
	}
	return created, nil
}

func (s *Service) GetReport(ctx context.Context, id string) (IterationReport, error) {
	if s == nil || s.reports == nil {
		return IterationReport{}, s.mapError(NewConfigError("report_store", "report store is not configured"))
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return IterationReport{}, s.mapError(newReportValidationError("id", "This field is required."))
	}
	report, err := s.reports.Get(ctx, id)
	if err != nil {
		return IterationReport{}, s.mapError(err)
	}
	return report, nil
}

// GetReportDetail recomputes classifications and summary from a stored
// snapshot; results are never persisted.
func (s *Service) GetReportDetail(ctx context.Context, id string) (ReportDetail, error) {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return ReportDetail{}, err
	}
	return s.detailFor(report, report.IterationData)
}

func (s *Service) ListReports(ctx context.Context, filter ReportFilter) (ReportPage, error) {
	if s == nil || s.reports == nil {
		return ReportPage{}, s.mapError(NewConfigError("report_store", "report store is not configured"))
	}
	filter.IterationName = strings.TrimSpace(filter.IterationName)
	if filter.Limit < 0 || filter.Offset < 0 {
		return ReportPage{}, s.mapError(newReportValidationError("limit", "limit and offset must not be negative"))
	}
	page, err := s.reports.List(ctx, filter)
	if err != nil {
		return ReportPage{}, s.mapError(err)
	}
	return page, nil
}

func (s *Service) detailFor(report IterationReport, data IterationData) (ReportDetail, error) {
	analysis, err := ClassifyIteration(data)
	if err != nil {
		return ReportDetail{}, s.mapError(err)
	}
	return ReportDetail{
		Report:   report,
		Analysis: analysis,
		Summary:  SummarizeReport(analysis),
	}, nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return MapError(err)
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}
