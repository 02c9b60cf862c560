package core

import (
	"testing"
)

func TestSummarizeReport_PointsAndPercentages(t *testing.T) {
	enterprise := []Label{{ID: "901", Name: LabelTeamEnterprise}}
	smb := []Label{{ID: "902", Name: LabelTeamSMB}}
	analysis, err := ClassifyIteration(IterationData{
		Iteration: fixtureIteration(),
		Labels:    fixtureLabels(),
		Stories: []Story{
			{ID: "1", Estimate: float(3), Completed: true, Labels: enterprise},
			{ID: "2", Estimate: float(5), Started: true, Labels: smb},
			{ID: "3", Estimate: nil},
			{ID: "4", Estimate: float(2), Labels: append(append([]Label{}, enterprise...), smb...)},
		},
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	summary := SummarizeReport(analysis)
	if summary.TotalStories != 4 {
		t.Fatalf("expected 4 stories, got %d", summary.TotalStories)
	}
	if summary.TotalPoints != 10 {
		t.Fatalf("expected 10 points, got %v", summary.TotalPoints)
	}
	states := summary.PointsByState
	if states.Completed+states.Started+states.NotStarted != summary.TotalPoints {
		t.Fatalf("expected state points to sum to total, got %#v", states)
	}
	if summary.PointsByTeam.Enterprise != 5 || summary.PointsByTeam.SMB != 7 || summary.PointsByTeam.Other != 0 {
		t.Fatalf("unexpected team points: %#v", summary.PointsByTeam)
	}
	if summary.StoriesByTeam != (TeamCounts{Enterprise: 2, SMB: 2, Other: 1}) {
		t.Fatalf("unexpected team counts: %#v", summary.StoriesByTeam)
	}
	if summary.PercentStoriesByState != (StateCounts{NotStarted: 50, Started: 25, Completed: 25}) {
		t.Fatalf("unexpected story state percentages: %#v", summary.PercentStoriesByState)
	}
	if summary.PercentPointsByState != (StateCounts{NotStarted: 20, Started: 50, Completed: 30}) {
		t.Fatalf("unexpected point state percentages: %#v", summary.PercentPointsByState)
	}
	if summary.PercentPointsByTeam != (TeamCounts{Enterprise: 50, SMB: 70, Other: 0}) {
		t.Fatalf("unexpected point team percentages: %#v", summary.PercentPointsByTeam)
	}
}

func TestSummarizeReport_ZeroDenominators(t *testing.T) {
	analysis, err := ClassifyIteration(IterationData{
		Iteration: fixtureIteration(),
		Stories:   []Story{{ID: "1"}, {ID: "2", Completed: true}},
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	summary := SummarizeReport(analysis)
	if summary.TotalPoints != 0 {
		t.Fatalf("expected zero points, got %v", summary.TotalPoints)
	}
	if summary.PercentPointsByState != (StateCounts{}) || summary.PercentPointsByTeam != (TeamCounts{}) {
		t.Fatalf("expected zero point percentages, got %#v %#v", summary.PercentPointsByState, summary.PercentPointsByTeam)
	}

	empty := SummarizeReport(IterationAnalysis{})
	if empty.TotalStories != 0 || empty.PercentStoriesByTeam != (TeamCounts{}) {
		t.Fatalf("expected empty summary, got %#v", empty)
	}
}

func TestSummarizeReport_RoundsHalfToEven(t *testing.T) {
	if got := percentOf(1, 8); got != 12 {
		t.Fatalf("expected 12.5 to round to 12, got %d", got)
	}
	if got := percentOf(3, 8); got != 38 {
		t.Fatalf("expected 37.5 to round to 38, got %d", got)
	}
	if got := percentOf(1, 3); got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
}

func TestSummarizeReport_SortsByValueDescending(t *testing.T) {
	iteration := fixtureIteration()
	stories := []Story{
		{ID: "5", Comments: comments(9), History: []ChangeEvent{iterationMoveEvent("2024-03-06T09:00:00Z", iteration.ID)}},
		{ID: "6", Comments: comments(12), History: []ChangeEvent{iterationMoveEvent("2024-03-10T09:00:00Z", iteration.ID)}},
		{ID: "7", Comments: comments(9), History: []ChangeEvent{iterationMoveEvent("2024-03-08T09:00:00Z", iteration.ID)}},
		{ID: "10", Comments: comments(9)},
	}
	analysis, err := ClassifyIteration(IterationData{Iteration: iteration, Stories: stories})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	summary := SummarizeReport(analysis)

	gotComments := []ID{}
	for _, ranked := range summary.HighCommentStories {
		gotComments = append(gotComments, ranked.Story.ID)
	}
	wantComments := []ID{"6", "5", "7", "10"}
	for i := range wantComments {
		if gotComments[i] != wantComments[i] {
			t.Fatalf("unexpected comment ranking: %#v", gotComments)
		}
	}

	gotLate := []ID{}
	for _, late := range summary.AddedAfterStart {
		gotLate = append(gotLate, late.Story.ID)
	}
	wantLate := []ID{"6", "7", "5"}
	if len(gotLate) != len(wantLate) {
		t.Fatalf("unexpected late ranking: %#v", gotLate)
	}
	for i := range wantLate {
		if gotLate[i] != wantLate[i] {
			t.Fatalf("unexpected late ranking: %#v", gotLate)
		}
	}
}
