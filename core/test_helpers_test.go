package core

import (
	"context"
	"fmt"
	"sync"
)

func float(value float64) *float64 {
	return &value
}

func comments(count int) []Comment {
	out := make([]Comment, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Comment{ID: ID(fmt.Sprint(i + 1)), Text: "note"})
	}
	return out
}

func labelAddEvent(changedAt string, labelID ID) ChangeEvent {
	return ChangeEvent{
		ChangedAt: changedAt,
		Actions: []Action{{
			EntityType: EntityTypeStory,
			Action:     "update",
			Changes: map[string]Change{
				ChangeKeyLabels: {Adds: []ID{labelID}},
			},
		}},
	}
}

func iterationMoveEvent(changedAt string, iterationID ID) ChangeEvent {
	return ChangeEvent{
		ChangedAt: changedAt,
		Actions: []Action{{
			EntityType: EntityTypeStory,
			Action:     "update",
			Changes: map[string]Change{
				ChangeKeyIteration: {New: iterationID},
			},
		}},
	}
}

func fixtureIteration() Iteration {
	return Iteration{ID: "77", Name: "Sprint 12", StartDate: "2024-03-04", EndDate: "2024-03-15"}
}

func fixtureLabels() []Label {
	return []Label{
		{ID: "900", Name: LabelUATNotApproved},
		{ID: "901", Name: LabelTeamEnterprise},
		{ID: "902", Name: LabelTeamSMB},
	}
}

type stubTracker struct {
	mu          sync.Mutex
	iteration   Iteration
	iterErr     error
	summaries   []Story
	stories     map[ID]Story
	storyErr    map[ID]error
	labels      []Label
	storyCalls  []ID
	labelsCalls int
}

func (s *stubTracker) GetIterationByName(_ context.Context, name string) (Iteration, error) {
	if s.iterErr != nil {
		return Iteration{}, s.iterErr
	}
	if name != s.iteration.Name {
		return Iteration{}, NewIterationNotFoundError(name)
	}
	return s.iteration, nil
}

func (s *stubTracker) ListIterationStories(context.Context, ID) ([]Story, error) {
	return append([]Story(nil), s.summaries...), nil
}

func (s *stubTracker) GetStoryWithHistory(_ context.Context, id ID) (Story, error) {
	s.mu.Lock()
	s.storyCalls = append(s.storyCalls, id)
	s.mu.Unlock()
	if err := s.storyErr[id]; err != nil {
		return Story{}, err
	}
	return s.stories[id], nil
}

func (s *stubTracker) ListLabels(context.Context) ([]Label, error) {
	s.labelsCalls++
	return append([]Label(nil), s.labels...), nil
}

type memoryReportStore struct {
	mu      sync.Mutex
	reports []IterationReport
}

func (m *memoryReportStore) Create(_ context.Context, report IterationReport) (IterationReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	report.ID = fmt.Sprintf("report-%d", len(m.reports)+1)
	m.reports = append(m.reports, report)
	return report, nil
}

func (m *memoryReportStore) Get(_ context.Context, id string) (IterationReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, report := range m.reports {
		if report.ID == id {
			return report, nil
		}
	}
	return IterationReport{}, NewReportNotFoundError(id)
}

func (m *memoryReportStore) List(_ context.Context, filter ReportFilter) (ReportPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := []IterationReport{}
	for _, report := range m.reports {
		if filter.IterationName != "" && report.IterationName != filter.IterationName {
			continue
		}
		items = append(items, report)
	}
	return ReportPage{Items: items, Total: len(items)}, nil
}
