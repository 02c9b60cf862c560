package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-messenger/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const defaultReportPageSize = 25

type ReportStore struct {
	db   *bun.DB
	repo repository.Repository[*reportRecord]
	now  func() time.Time
}

func NewReportStore(db *bun.DB) (*ReportStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*reportRecord](db, reportHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid report repository wiring: %w", err)
		}
	}
	return &ReportStore{
		db:   db,
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *ReportStore) Create(ctx context.Context, report core.IterationReport) (core.IterationReport, error) {
	if s == nil || s.repo == nil {
		return core.IterationReport{}, fmt.Errorf("sqlstore: report store is not configured")
	}
	if strings.TrimSpace(report.IterationName) == "" {
		return core.IterationReport{}, core.NewConfigError("iteration_name", "This field is required.")
	}
	id := strings.TrimSpace(report.ID)
	if id == "" {
		id = uuid.NewString()
	}
	created, err := s.repo.Create(ctx, newReportRecord(report, id, s.now()))
	if err != nil {
		return core.IterationReport{}, err
	}
	return created.toDomain(), nil
}

func (s *ReportStore) Get(ctx context.Context, id string) (core.IterationReport, error) {
	if s == nil || s.db == nil {
		return core.IterationReport{}, fmt.Errorf("sqlstore: report store is not configured")
	}
	id = strings.TrimSpace(id)
	record := &reportRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.IterationReport{}, core.NewReportNotFoundError(id)
		}
		return core.IterationReport{}, err
	}
	return record.toDomain(), nil
}

// List returns snapshots newest first.
func (s *ReportStore) List(ctx context.Context, filter core.ReportFilter) (core.ReportPage, error) {
	if s == nil || s.repo == nil {
		return core.ReportPage{}, fmt.Errorf("sqlstore: report store is not configured")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultReportPageSize
	}
	offset := max(filter.Offset, 0)

	selectors := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
		repository.OrderBy("id ASC"),
		repository.SelectPaginate(limit, offset),
	}
	if name := strings.TrimSpace(filter.IterationName); name != "" {
		selectors = append(selectors, repository.SelectBy("iteration_name", "=", name))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.ReportPage{}, err
	}
	items := make([]core.IterationReport, 0, len(records))
	for _, record := range records {
		items = append(items, record.toDomain())
	}
	return core.ReportPage{Items: items, Total: total}, nil
}
