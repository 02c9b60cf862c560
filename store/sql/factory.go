package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/goliatone/go-messenger/core"
	messengermigrations "github.com/goliatone/go-messenger/migrations"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const defaultPingTimeout = 5 * time.Second

type persistenceConfig struct {
	driver string
	server string
	debug  bool
}

func (c persistenceConfig) GetDebug() bool {
	return c.debug
}

func (c persistenceConfig) GetDriver() string {
	return c.driver
}

func (c persistenceConfig) GetServer() string {
	return c.server
}

func (c persistenceConfig) GetPingTimeout() time.Duration {
	return defaultPingTimeout
}

func (c persistenceConfig) GetOtelIdentifier() string {
	return "go-messenger"
}

// Open connects to the configured database. Supported drivers are sqlite3
// and postgres.
func Open(cfg core.DatabaseConfig) (*persistence.Client, error) {
	driver := strings.TrimSpace(strings.ToLower(cfg.Driver))
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, core.NewConfigError("database.dsn", "database dsn is required")
	}

	var dialect schema.Dialect
	switch driver {
	case core.DatabaseDriverSQLite:
		dialect = sqlitedialect.New()
	case core.DatabaseDriverPostgres:
		dialect = pgdialect.New()
	default:
		return nil, core.NewConfigError("database.driver", fmt.Sprintf("unsupported database driver %q", cfg.Driver))
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == core.DatabaseDriverSQLite && isMemoryDSN(dsn) {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(persistenceConfig{
		driver: driver,
		server: dsn,
		debug:  cfg.Debug,
	}, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	return client, nil
}

// Migrate registers the embedded migrations for the client's dialect and
// applies them.
func Migrate(ctx context.Context, client *persistence.Client, driver string) error {
	if client == nil {
		return fmt.Errorf("sqlstore: persistence client is required")
	}
	err := messengermigrations.Register(ctx, MigrationDialect(driver), func(_ context.Context, _ string, fsys fs.FS) error {
		client.RegisterSQLMigrations(fsys)
		return nil
	})
	if err != nil {
		return err
	}
	return client.Migrate(ctx)
}

// MigrationDialect maps a database driver name to its migration tree.
func MigrationDialect(driver string) string {
	if strings.TrimSpace(strings.ToLower(driver)) == core.DatabaseDriverPostgres {
		return messengermigrations.DialectPostgres
	}
	return messengermigrations.DialectSQLite
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

type RepositoryFactory struct {
	db       *bun.DB
	cacheTTL time.Duration

	reportStore       *ReportStore
	cachedReportStore *CachedReportStore
}

type FactoryOption func(*RepositoryFactory)

// WithReportCache enables the snapshot read cache. A non-positive ttl
// leaves it disabled.
func WithReportCache(ttl time.Duration) FactoryOption {
	return func(f *RepositoryFactory) {
		f.cacheTTL = ttl
	}
}

func NewRepositoryFactory(opts ...FactoryOption) *RepositoryFactory {
	factory := &RepositoryFactory{}
	for _, opt := range opts {
		if opt != nil {
			opt(factory)
		}
	}
	return factory
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.reportStore != nil {
		return nil
	}
	reportStore, err := NewReportStore(f.db)
	if err != nil {
		return err
	}
	f.reportStore = reportStore

	if f.cacheTTL > 0 {
		config := repositorycache.DefaultConfig()
		config.TTL = f.cacheTTL
		cacheService, err := repositorycache.NewCacheService(config)
		if err != nil {
			return fmt.Errorf("sqlstore: new report cache service: %w", err)
		}
		cached, err := NewCachedReportStore(reportStore, cacheService)
		if err != nil {
			return err
		}
		f.cachedReportStore = cached
	}
	return nil
}

// ReportStore returns the cached store when a cache was configured.
func (f *RepositoryFactory) ReportStore() core.ReportStore {
	if f == nil {
		return nil
	}
	if f.cachedReportStore != nil {
		return f.cachedReportStore
	}
	if f.reportStore == nil {
		return nil
	}
	return f.reportStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
