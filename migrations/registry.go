// Package migrations resolves the embedded report store migrations for each
// SQL dialect.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	messenger "github.com/goliatone/go-messenger"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	embeddedRoot = "data/sql/migrations"
)

// DialectFS is the migration directory served for one SQL dialect.
type DialectFS struct {
	Dialect string
	Path    string
	FS      fs.FS
}

// RegisterFunc receives the migration tree of a single dialect.
type RegisterFunc func(ctx context.Context, dialect string, fsys fs.FS) error

// Filesystems resolves the embedded migration tree, or the first non-nil
// source, into one filesystem per dialect. Postgres files sit at the root and
// sqlite files under sqlite/. Each must hold at least one *.up.sql file.
func Filesystems(sources ...fs.FS) ([]DialectFS, error) {
	root := messenger.GetMigrationsFS()
	if len(sources) > 0 && sources[0] != nil {
		root = sources[0]
	}

	base, basePath, err := migrationsRoot(root)
	if err != nil {
		return nil, err
	}
	sqliteFS, err := fs.Sub(base, DialectSQLite)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	filesystems := []DialectFS{
		{Dialect: DialectPostgres, Path: basePath, FS: base},
		{Dialect: DialectSQLite, Path: path.Join(basePath, DialectSQLite), FS: sqliteFS},
	}
	for _, entry := range filesystems {
		matches, err := fs.Glob(entry.FS, "*.up.sql")
		if err != nil {
			return nil, fmt.Errorf("migrations: glob %s %s: %w", entry.Dialect, entry.Path, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", entry.Dialect, entry.Path)
		}
	}
	return filesystems, nil
}

// ForDialect returns the migration tree for a single dialect.
func ForDialect(dialect string, sources ...fs.FS) (DialectFS, error) {
	filesystems, err := Filesystems(sources...)
	if err != nil {
		return DialectFS{}, err
	}
	wanted := strings.TrimSpace(strings.ToLower(dialect))
	for _, entry := range filesystems {
		if entry.Dialect == wanted {
			return entry, nil
		}
	}
	return DialectFS{}, fmt.Errorf("migrations: unknown dialect %q", dialect)
}

// Register hands the embedded migrations of dialect to registerFn.
func Register(ctx context.Context, dialect string, registerFn RegisterFunc) error {
	if registerFn == nil {
		return fmt.Errorf("migrations: register function is required")
	}
	entry, err := ForDialect(dialect)
	if err != nil {
		return err
	}
	if err := registerFn(ctx, entry.Dialect, entry.FS); err != nil {
		return fmt.Errorf("migrations: register %s (%s): %w", entry.Dialect, entry.Path, err)
	}
	return nil
}

// migrationsRoot accepts either the module tree (data/sql/migrations) or a
// directory that already holds the postgres files.
func migrationsRoot(root fs.FS) (fs.FS, string, error) {
	info, err := fs.Stat(root, embeddedRoot)
	if err == nil && info.IsDir() {
		sub, subErr := fs.Sub(root, embeddedRoot)
		if subErr != nil {
			return nil, "", fmt.Errorf("migrations: resolve %s: %w", embeddedRoot, subErr)
		}
		return sub, embeddedRoot, nil
	}
	if err == nil {
		err = fs.ErrNotExist
	}

	if entries, readErr := fs.ReadDir(root, "."); readErr == nil {
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
				return root, ".", nil
			}
		}
	}
	return nil, "", fmt.Errorf("migrations: %s not found: %w", embeddedRoot, err)
}
