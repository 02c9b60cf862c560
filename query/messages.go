package query

import (
	"strings"

	"github.com/goliatone/go-messenger/core"
)

const (
	TypeBuildReport     = "messenger.query.report.build"
	TypeGetReport       = "messenger.query.report.get"
	TypeGetReportDetail = "messenger.query.report.detail"
	TypeListReports     = "messenger.query.report.list"
)

type BuildReportMessage struct {
	IterationName string
}

func (BuildReportMessage) Type() string { return TypeBuildReport }

func (m BuildReportMessage) Validate() error {
	if strings.TrimSpace(m.IterationName) == "" {
		return queryValidationError("iteration_name", "This field is required.")
	}
	return nil
}

type GetReportMessage struct {
	ReportID string
}

func (GetReportMessage) Type() string { return TypeGetReport }

func (m GetReportMessage) Validate() error {
	if strings.TrimSpace(m.ReportID) == "" {
		return queryValidationError("id", "This field is required.")
	}
	return nil
}

type GetReportDetailMessage struct {
	ReportID string
}

func (GetReportDetailMessage) Type() string { return TypeGetReportDetail }

func (m GetReportDetailMessage) Validate() error {
	if strings.TrimSpace(m.ReportID) == "" {
		return queryValidationError("id", "This field is required.")
	}
	return nil
}

type ListReportsMessage struct {
	Filter core.ReportFilter
}

func (ListReportsMessage) Type() string { return TypeListReports }

func (m ListReportsMessage) Validate() error {
	if m.Filter.Limit < 0 {
		return queryValidationError("limit", "limit must be >= 0")
	}
	if m.Filter.Offset < 0 {
		return queryValidationError("offset", "offset must be >= 0")
	}
	return nil
}
