package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-messenger/core"
)

func TestRenderReport_Sections(t *testing.T) {
	five := 5.0
	story := func(id string, estimate *float64) core.Story {
		return core.Story{ID: core.ID(id), AppURL: "https://app.shortcut.com/acme/story/" + id, Estimate: estimate}
	}
	s1, s2 := story("1", &five), story("2", nil)
	detail := core.ReportDetail{
		Analysis: core.IterationAnalysis{
			Iteration: core.Iteration{Name: "Sprint 7", StartDate: "2024-03-01", EndDate: "2024-03-14"},
			Stories: map[core.ID]core.Story{
				"1": s1,
				"2": s2,
				"3": {ID: "3"},
			},
			RejectedUATStories: []core.ID{"2", "3"},
		},
		Summary: core.ReportSummary{
			HighCommentStories: []core.RankedStory{{Story: s1, Count: 12}},
			HighUATStories:     []core.RankedStory{{Story: s2, Count: 3}},
			AddedAfterStart:    []core.LateStory{{Story: s2, AddedAt: "2024-03-04T10:00:00Z"}},
			StoriesByTeam:      core.TeamCounts{Enterprise: 1, SMB: 1, Other: 1},
			PointsByTeam:       core.TeamPoints{Enterprise: 5, SMB: 0, Other: 2.5},
			StoriesByState:     core.StateCounts{NotStarted: 1, Started: 1, Completed: 1},
			PointsByState:      core.StatePoints{NotStarted: 0, Started: 5, Completed: 2.5},
		},
	}

	var out bytes.Buffer
	generated := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	if err := renderReport(&out, detail, generated); err != nil {
		t.Fatalf("render: %v", err)
	}

	want := strings.Join([]string{
		"Iteration: Sprint 7",
		"Start Date: 2024-03-01",
		"End Date: 2024-03-14",
		"Report generated at: 2024-03-15T09:30:00Z",
		"High comment stories",
		"SC-1 - https://app.shortcut.com/acme/story/1: 12",
		"",
		"High Rejections",
		"SC-2 - https://app.shortcut.com/acme/story/2: 3",
		"",
		"UAT Rejected at Some Point",
		"SC-2 - https://app.shortcut.com/acme/story/2",
		"SC-3",
		"",
		"Added after start",
		"SC-2 - https://app.shortcut.com/acme/story/2: 2024-03-04T10:00:00Z",
		"",
		"Number of Tickets by Team",
		"CS-ENT: 1",
		"CS-SMB: 1",
		"Other: 1",
		"",
		"Number of Points by Team",
		"CS-ENT: 5",
		"CS-SMB: 0",
		"Other: 2.5",
		"",
		"Number of Tickets by State",
		"Not Started: 1",
		"Started: 1",
		"Completed: 1",
		"",
		"Number of Points by State",
		"Not Started: 0",
		"Started: 5",
		"Completed: 2.5",
		"",
	}, "\n")
	if out.String() != want {
		t.Fatalf("unexpected report output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestRenderReportList(t *testing.T) {
	page := core.ReportPage{
		Items: []core.IterationReport{{
			ID:            "rep-1",
			IterationName: "Sprint 7",
			IterationData: core.IterationData{Stories: []core.Story{{ID: "1"}, {ID: "2"}}},
			CreatedAt:     time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
		}},
		Total: 4,
	}
	var out bytes.Buffer
	if err := renderReportList(&out, page); err != nil {
		t.Fatalf("render list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, row and footer, got %q", out.String())
	}
	if fields := strings.Fields(lines[1]); len(fields) != 5 || fields[0] != "rep-1" || fields[3] != "2" {
		t.Fatalf("unexpected row %q", lines[1])
	}
	if lines[2] != "Showing 1 of 4 reports" {
		t.Fatalf("unexpected footer %q", lines[2])
	}
}
