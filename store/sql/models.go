package sqlstore

import (
	"strings"
	"time"

	"github.com/goliatone/go-messenger/core"
	"github.com/uptrace/bun"
)

// reportRecord is an immutable iteration snapshot. The raw tracker data is
// stored as JSON and re-analysed on read.
type reportRecord struct {
	bun.BaseModel `bun:"table:iteration_reports,alias:ir"`

	ID            string             `bun:"id,pk"`
	IterationName string             `bun:"iteration_name,notnull"`
	IterationData core.IterationData `bun:"iteration_data,type:jsonb,notnull"`
	CreatedAt     time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func newReportRecord(report core.IterationReport, id string, now time.Time) *reportRecord {
	createdAt := report.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return &reportRecord{
		ID:            id,
		IterationName: strings.TrimSpace(report.IterationName),
		IterationData: report.IterationData,
		CreatedAt:     createdAt.UTC(),
	}
}

func (r *reportRecord) toDomain() core.IterationReport {
	if r == nil {
		return core.IterationReport{}
	}
	return core.IterationReport{
		ID:            r.ID,
		IterationName: r.IterationName,
		IterationData: r.IterationData,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}
