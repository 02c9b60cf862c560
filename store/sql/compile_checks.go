package sqlstore

import "github.com/goliatone/go-messenger/core"

var (
	_ core.ReportStore = (*ReportStore)(nil)
	_ core.ReportStore = (*CachedReportStore)(nil)
)
