package sqlstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-messenger/core"
	sqlstore "github.com/goliatone/go-messenger/store/sql"
	persistence "github.com/goliatone/go-persistence-bun"
)

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"iteration_reports",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "iteration_reports" {
		t.Fatalf("expected iteration_reports table, got %q", tableName)
	}
}

func TestReportStore_CreateAndGetRoundTripsSnapshot(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.ReportStore()
	if store == nil {
		t.Fatalf("expected report store from factory")
	}

	createdAt := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	created, err := store.Create(ctx, core.IterationReport{
		IterationName: "Sprint 12",
		IterationData: fixtureData(),
		CreatedAt:     createdAt,
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated report id")
	}

	loaded, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if loaded.IterationName != "Sprint 12" {
		t.Fatalf("unexpected iteration name %q", loaded.IterationName)
	}
	if !loaded.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected created_at %s, got %s", createdAt, loaded.CreatedAt)
	}
	if len(loaded.IterationData.Stories) != 2 {
		t.Fatalf("expected stories to round trip, got %#v", loaded.IterationData.Stories)
	}
	story := loaded.IterationData.Stories[0]
	if story.ID != "101" || story.Estimate == nil || *story.Estimate != 3 {
		t.Fatalf("unexpected first story %#v", story)
	}
	if loaded.IterationData.Stories[1].Estimate != nil {
		t.Fatalf("expected missing estimate to stay nil")
	}
	if len(story.History) != 1 || story.History[0].Actions[0].Changes[core.ChangeKeyLabels].Adds[0] != "7" {
		t.Fatalf("expected history to round trip, got %#v", story.History)
	}

	analysis, err := core.ClassifyIteration(loaded.IterationData)
	if err != nil {
		t.Fatalf("classify stored snapshot: %v", err)
	}
	if len(analysis.RejectedUATStories) != 1 || analysis.RejectedUATStories[0] != "101" {
		t.Fatalf("expected story 101 rejected from stored snapshot, got %#v", analysis.RejectedUATStories)
	}
}

func TestReportStore_GetMissingReturnsNotFound(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store, err := sqlstore.NewReportStore(client.DB())
	if err != nil {
		t.Fatalf("new report store: %v", err)
	}
	_, err = store.Get(context.Background(), "4b0b1a53-0f4e-4d3a-9e57-c6b5a2d0f001")
	if !core.IsReportNotFound(err) {
		t.Fatalf("expected report not found, got %v", err)
	}
}

func TestReportStore_ListFiltersAndOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store, err := sqlstore.NewReportStore(client.DB())
	if err != nil {
		t.Fatalf("new report store: %v", err)
	}

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"Sprint 1", "Sprint 2", "Sprint 1", "Sprint 1"} {
		if _, err := store.Create(ctx, core.IterationReport{
			IterationName: name,
			IterationData: core.IterationData{Iteration: core.Iteration{ID: core.ID(fmt.Sprint(i + 1)), Name: name, StartDate: "2024-03-01"}},
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("create report %d: %v", i, err)
		}
	}

	page, err := store.List(ctx, core.ReportFilter{IterationName: "Sprint 1", Limit: 2})
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("expected total 3, got %d", page.Total)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page.Items))
	}
	if !page.Items[0].CreatedAt.After(page.Items[1].CreatedAt) {
		t.Fatalf("expected newest first, got %s then %s", page.Items[0].CreatedAt, page.Items[1].CreatedAt)
	}
	if page.Items[0].IterationData.Iteration.ID != "4" {
		t.Fatalf("expected latest snapshot first, got %#v", page.Items[0].IterationData.Iteration)
	}

	all, err := store.List(ctx, core.ReportFilter{})
	if err != nil {
		t.Fatalf("list all reports: %v", err)
	}
	if all.Total != 4 || len(all.Items) != 4 {
		t.Fatalf("expected 4 reports, got total=%d items=%d", all.Total, len(all.Items))
	}
}

func TestReportStore_CreateRequiresIterationName(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store, err := sqlstore.NewReportStore(client.DB())
	if err != nil {
		t.Fatalf("new report store: %v", err)
	}
	if _, err := store.Create(context.Background(), core.IterationReport{IterationName: "  "}); err == nil {
		t.Fatalf("expected validation error for blank iteration name")
	}
}

func TestRepositoryFactory_ReportCacheWrapsStore(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromDB(client.DB(), sqlstore.WithReportCache(time.Minute))
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	if _, ok := factory.ReportStore().(*sqlstore.CachedReportStore); !ok {
		t.Fatalf("expected cached report store, got %T", factory.ReportStore())
	}

	created, err := factory.ReportStore().Create(context.Background(), core.IterationReport{
		IterationName: "Sprint 9",
		IterationData: fixtureData(),
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	loaded, err := factory.ReportStore().Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if loaded.ID != created.ID {
		t.Fatalf("expected cached read of %s, got %s", created.ID, loaded.ID)
	}
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := sqlstore.Open(core.DatabaseConfig{Driver: "oracle", DSN: "x"})
	if err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := sqlstore.Open(core.DatabaseConfig{Driver: core.DatabaseDriverSQLite}); err == nil {
		t.Fatalf("expected missing dsn error")
	}
}

func TestMigrationDialect(t *testing.T) {
	if got := sqlstore.MigrationDialect("postgres"); got != "postgres" {
		t.Fatalf("expected postgres dialect, got %q", got)
	}
	if got := sqlstore.MigrationDialect("sqlite3"); got != "sqlite" {
		t.Fatalf("expected sqlite dialect, got %q", got)
	}
}

func fixtureData() core.IterationData {
	three := 3.0
	return core.IterationData{
		Iteration: core.Iteration{ID: "55", Name: "Sprint 12", StartDate: "2024-03-04", EndDate: "2024-03-15"},
		Labels:    []core.Label{{ID: "7", Name: core.LabelUATNotApproved}},
		Stories: []core.Story{
			{
				ID:        "101",
				Name:      "Checkout",
				Estimate:  &three,
				Completed: true,
				Labels:    []core.Label{{ID: "7", Name: core.LabelUATNotApproved}},
				History: []core.ChangeEvent{{
					ID:        "h1",
					ChangedAt: "2024-03-05T10:00:00Z",
					Actions: []core.Action{{
						ID:         "101",
						EntityType: core.EntityTypeStory,
						Action:     "update",
						Changes:    map[string]core.Change{core.ChangeKeyLabels: {Adds: []core.ID{"7"}}},
					}},
				}},
			},
			{ID: "102", Name: "Refunds"},
		},
	}
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:messenger-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	client, err := sqlstore.Open(core.DatabaseConfig{Driver: core.DatabaseDriverSQLite, DSN: dsn})
	if err != nil {
		t.Fatalf("open sqlite client: %v", err)
	}
	if err := sqlstore.Migrate(context.Background(), client, core.DatabaseDriverSQLite); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}
	return client, func() {
		_ = client.Close()
	}
}
