package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-messenger/core"
)

var (
	_ gocmd.Querier[BuildReportMessage, core.ReportDetail]     = (*BuildReportQuery)(nil)
	_ gocmd.Querier[GetReportMessage, core.IterationReport]    = (*GetReportQuery)(nil)
	_ gocmd.Querier[GetReportDetailMessage, core.ReportDetail] = (*GetReportDetailQuery)(nil)
	_ gocmd.Querier[ListReportsMessage, core.ReportPage]       = (*ListReportsQuery)(nil)

	_ ReportBuilder = (*core.Service)(nil)
	_ ReportReader  = (*core.Service)(nil)
)
