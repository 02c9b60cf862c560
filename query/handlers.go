package query

import (
	"context"

	"github.com/goliatone/go-messenger/core"
)

type ReportBuilder interface {
	BuildReport(ctx context.Context, iterationName string) (core.ReportDetail, error)
}

type ReportReader interface {
	GetReport(ctx context.Context, id string) (core.IterationReport, error)
	GetReportDetail(ctx context.Context, id string) (core.ReportDetail, error)
	ListReports(ctx context.Context, filter core.ReportFilter) (core.ReportPage, error)
}

// BuildReportQuery fetches live tracker data and analyses it without
// persisting a snapshot.
type BuildReportQuery struct {
	builder ReportBuilder
}

func NewBuildReportQuery(builder ReportBuilder) *BuildReportQuery {
	return &BuildReportQuery{builder: builder}
}

func (q *BuildReportQuery) Query(ctx context.Context, msg BuildReportMessage) (core.ReportDetail, error) {
	if q == nil || q.builder == nil {
		return core.ReportDetail{}, queryDependencyError("query: report builder is required")
	}
	return q.builder.BuildReport(ctx, msg.IterationName)
}

type GetReportQuery struct {
	reader ReportReader
}

func NewGetReportQuery(reader ReportReader) *GetReportQuery {
	return &GetReportQuery{reader: reader}
}

func (q *GetReportQuery) Query(ctx context.Context, msg GetReportMessage) (core.IterationReport, error) {
	if q == nil || q.reader == nil {
		return core.IterationReport{}, queryDependencyError("query: report reader is required")
	}
	return q.reader.GetReport(ctx, msg.ReportID)
}

type GetReportDetailQuery struct {
	reader ReportReader
}

func NewGetReportDetailQuery(reader ReportReader) *GetReportDetailQuery {
	return &GetReportDetailQuery{reader: reader}
}

func (q *GetReportDetailQuery) Query(ctx context.Context, msg GetReportDetailMessage) (core.ReportDetail, error) {
	if q == nil || q.reader == nil {
		return core.ReportDetail{}, queryDependencyError("query: report reader is required")
	}
	return q.reader.GetReportDetail(ctx, msg.ReportID)
}

type ListReportsQuery struct {
	reader ReportReader
}

func NewListReportsQuery(reader ReportReader) *ListReportsQuery {
	return &ListReportsQuery{reader: reader}
}

func (q *ListReportsQuery) Query(ctx context.Context, msg ListReportsMessage) (core.ReportPage, error) {
	if q == nil || q.reader == nil {
		return core.ReportPage{}, queryDependencyError("query: report reader is required")
	}
	return q.reader.ListReports(ctx, msg.Filter)
}
