package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-messenger/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const reportCacheKeyPrefix = "go-messenger::iteration_report::v1"

// CachedReportStore serves snapshot reads from a cache. Snapshots never change
// after creation so entries are only evicted by TTL. Listing always hits the
// base store.
type CachedReportStore struct {
	base  core.ReportStore
	cache repositorycache.CacheService
}

func NewCachedReportStore(base core.ReportStore, cacheService repositorycache.CacheService) (*CachedReportStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base report store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: report cache service is required")
	}
	return &CachedReportStore{base: base, cache: cacheService}, nil
}

// ReportCacheKey returns go-messenger::iteration_report::v1::<id> with the id
// URL-path escaped.
func ReportCacheKey(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", fmt.Errorf("sqlstore: report id is required")
	}
	return reportCacheKeyPrefix + "::" + url.PathEscape(trimmed), nil
}

func (s *CachedReportStore) Create(ctx context.Context, report core.IterationReport) (core.IterationReport, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.IterationReport{}, fmt.Errorf("sqlstore: cached report store is not configured")
	}
	created, err := s.base.Create(ctx, report)
	if err != nil {
		return core.IterationReport{}, err
	}
	key, err := ReportCacheKey(created.ID)
	if err != nil {
		return core.IterationReport{}, err
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		return core.IterationReport{}, err
	}
	return created, nil
}

func (s *CachedReportStore) Get(ctx context.Context, id string) (core.IterationReport, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.IterationReport{}, fmt.Errorf("sqlstore: cached report store is not configured")
	}
	key, err := ReportCacheKey(id)
	if err != nil {
		return core.IterationReport{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) (core.IterationReport, error) {
		return s.base.Get(ctx, strings.TrimSpace(id))
	})
}

func (s *CachedReportStore) List(ctx context.Context, filter core.ReportFilter) (core.ReportPage, error) {
	if s == nil || s.base == nil {
		return core.ReportPage{}, fmt.Errorf("sqlstore: cached report store is not configured")
	}
	return s.base.List(ctx, filter)
}
