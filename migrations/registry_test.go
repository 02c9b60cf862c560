package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	messenger "github.com/goliatone/go-messenger"
	_ "github.com/mattn/go-sqlite3"
)

func TestFilesystems_ReturnsPostgresAndSQLite(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}

	seen := map[string]bool{}
	for _, entry := range filesystems {
		matches, globErr := fs.Glob(entry.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", entry.Dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migration files, got none", entry.Dialect)
		}
		seen[entry.Dialect] = true
	}
	if !seen[DialectPostgres] || !seen[DialectSQLite] {
		t.Fatalf("expected postgres and sqlite filesystems, got %#v", seen)
	}
}

func TestFilesystems_AcceptsFlatDirectory(t *testing.T) {
	flat := fstest.MapFS{
		"00001_init.up.sql":          {Data: []byte("CREATE TABLE a (id TEXT);")},
		"sqlite/00001_init.up.sql":   {Data: []byte("CREATE TABLE a (id TEXT);")},
		"sqlite/00001_init.down.sql": {Data: []byte("DROP TABLE a;")},
	}
	filesystems, err := Filesystems(flat)
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if filesystems[1].Path != "sqlite" {
		t.Fatalf("expected sqlite path relative to flat root, got %q", filesystems[1].Path)
	}
}

func TestFilesystems_RejectsEmptyDialect(t *testing.T) {
	missingSQLite := fstest.MapFS{
		"data/sql/migrations/00001_init.up.sql": {Data: []byte("SELECT 1;")},
		"data/sql/migrations/sqlite/README":     {Data: []byte("empty")},
	}
	if _, err := Filesystems(missingSQLite); err == nil {
		t.Fatalf("expected error for sqlite tree without migrations")
	}
}

func TestRegister_HandsOverSingleDialect(t *testing.T) {
	for _, dialect := range []string{DialectPostgres, " SQLite "} {
		var calls []string
		err := Register(context.Background(), dialect, func(_ context.Context, got string, fsys fs.FS) error {
			calls = append(calls, got)
			if _, err := fs.Stat(fsys, "00001_messenger_iteration_reports.up.sql"); err != nil {
				t.Fatalf("expected iteration reports migration for %s: %v", got, err)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("register %q: %v", dialect, err)
		}
		want := strings.TrimSpace(strings.ToLower(dialect))
		if len(calls) != 1 || calls[0] != want {
			t.Fatalf("expected a single %s registration, got %#v", want, calls)
		}
	}
}

func TestRegister_UnknownDialect(t *testing.T) {
	err := Register(context.Background(), "mysql", func(context.Context, string, fs.FS) error {
		t.Fatalf("register function must not run for unknown dialects")
		return nil
	})
	if err == nil {
		t.Fatalf("expected unknown dialect error")
	}
}

func TestRegister_PropagatesRegisterErrors(t *testing.T) {
	boom := errors.New("boom")
	err := Register(context.Background(), DialectSQLite, func(context.Context, string, fs.FS) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped register error, got %v", err)
	}
}

func TestRegister_RequiresRegisterFunc(t *testing.T) {
	if err := Register(context.Background(), DialectSQLite, nil); err == nil {
		t.Fatalf("expected missing register function error")
	}
}

func TestIterationReportsMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := messenger.GetMigrationsFS()
	paths := []string{
		"data/sql/migrations/00001_messenger_iteration_reports.up.sql",
		"data/sql/migrations/00001_messenger_iteration_reports.down.sql",
		"data/sql/migrations/sqlite/00001_messenger_iteration_reports.up.sql",
		"data/sql/migrations/sqlite/00001_messenger_iteration_reports.down.sql",
	}
	for _, migrationPath := range paths {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			t.Fatalf("expected migration %s to have SQL content", migrationPath)
		}
	}
}

func TestSQLiteIterationReportsMigration_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-iteration-reports?mode=memory&cache=shared&_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	sqliteMigrations, err := fs.Sub(messenger.GetMigrationsFS(), "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}

	ctx := context.Background()
	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_messenger_iteration_reports.up.sql"); err != nil {
		t.Fatalf("apply up migration: %v", err)
	}
	if count := sqliteObjectCount(t, db, "table", "iteration_reports"); count != 1 {
		t.Fatalf("expected iteration_reports table after up migration")
	}
	if count := sqliteObjectCount(t, db, "index", "idx_iteration_reports_name_created"); count != 1 {
		t.Fatalf("expected name index after up migration")
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO iteration_reports (id, iteration_name, iteration_data) VALUES (?, ?, ?)`,
		"rep_1", "Sprint 1", `{"iteration":{"id":1}}`,
	); err != nil {
		t.Fatalf("insert report: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO iteration_reports (id, iteration_name, iteration_data) VALUES (?, ?, ?)`,
		"rep_1", "Sprint 2", `{}`,
	); err == nil {
		t.Fatalf("expected primary key violation")
	}

	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_messenger_iteration_reports.down.sql"); err != nil {
		t.Fatalf("apply down migration: %v", err)
	}
	if count := sqliteObjectCount(t, db, "table", "iteration_reports"); count != 0 {
		t.Fatalf("expected iteration_reports to be dropped after down migration")
	}
}

func sqliteObjectCount(t *testing.T, db *sql.DB, kind string, name string) int {
	t.Helper()
	var count int
	if err := db.QueryRowContext(
		context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type=? AND name=?`,
		kind,
		name,
	).Scan(&count); err != nil {
		t.Fatalf("query sqlite_master for %s %s: %v", kind, name, err)
	}
	return count
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}
