package core

import (
	"math"
	"slices"
	"strings"
)

type TeamCounts struct {
	Enterprise int `json:"enterprise"`
	SMB        int `json:"smb"`
	Other      int `json:"other"`
}

type TeamPoints struct {
	Enterprise float64 `json:"enterprise"`
	SMB        float64 `json:"smb"`
	Other      float64 `json:"other"`
}

type StateCounts struct {
	NotStarted int `json:"not_started"`
	Started    int `json:"started"`
	Completed  int `json:"completed"`
}

type StatePoints struct {
	NotStarted float64 `json:"not_started"`
	Started    float64 `json:"started"`
	Completed  float64 `json:"completed"`
}

type RankedStory struct {
	Story Story `json:"story"`
	Count int   `json:"count"`
}

type LateStory struct {
	Story   Story  `json:"story"`
	AddedAt string `json:"added_at"`
}

// ReportSummary carries the derived figures shown on a report page.
// Percentages are whole numbers rounded half to even and share the
// denominator of the breakdown they describe.
type ReportSummary struct {
	TotalStories          int           `json:"total_stories"`
	TotalPoints           float64       `json:"total_points"`
	StoriesByTeam         TeamCounts    `json:"stories_by_team"`
	StoriesByState        StateCounts   `json:"stories_by_state"`
	PointsByTeam          TeamPoints    `json:"points_by_team"`
	PointsByState         StatePoints   `json:"points_by_state"`
	PercentStoriesByTeam  TeamCounts    `json:"percent_stories_by_team"`
	PercentStoriesByState StateCounts   `json:"percent_stories_by_state"`
	PercentPointsByTeam   TeamCounts    `json:"percent_points_by_team"`
	PercentPointsByState  StateCounts   `json:"percent_points_by_state"`
	HighUATStories        []RankedStory `json:"high_uat_stories"`
	HighCommentStories    []RankedStory `json:"high_comment_stories"`
	AddedAfterStart       []LateStory   `json:"added_after_start"`
}

func SummarizeReport(analysis IterationAnalysis) ReportSummary {
	summary := ReportSummary{
		TotalStories: len(analysis.Stories),
	}
	for _, story := range analysis.Stories {
		summary.TotalPoints += story.Points()
	}

	teams := analysis.StoriesByTeam
	summary.StoriesByTeam = TeamCounts{
		Enterprise: len(teams.Enterprise),
		SMB:        len(teams.SMB),
		Other:      len(teams.Other),
	}
	summary.PointsByTeam = TeamPoints{
		Enterprise: sumPoints(analysis.Stories, teams.Enterprise),
		SMB:        sumPoints(analysis.Stories, teams.SMB),
		Other:      sumPoints(analysis.Stories, teams.Other),
	}

	states := analysis.StoriesByState
	summary.StoriesByState = StateCounts{
		NotStarted: len(states.NotStarted),
		Started:    len(states.Started),
		Completed:  len(states.Completed),
	}
	summary.PointsByState = StatePoints{
		NotStarted: sumPoints(analysis.Stories, states.NotStarted),
		Started:    sumPoints(analysis.Stories, states.Started),
		Completed:  sumPoints(analysis.Stories, states.Completed),
	}

	total := float64(summary.TotalStories)
	summary.PercentStoriesByTeam = TeamCounts{
		Enterprise: percentOf(float64(summary.StoriesByTeam.Enterprise), total),
		SMB:        percentOf(float64(summary.StoriesByTeam.SMB), total),
		Other:      percentOf(float64(summary.StoriesByTeam.Other), total),
	}
	summary.PercentStoriesByState = StateCounts{
		NotStarted: percentOf(float64(summary.StoriesByState.NotStarted), total),
		Started:    percentOf(float64(summary.StoriesByState.Started), total),
		Completed:  percentOf(float64(summary.StoriesByState.Completed), total),
	}
	summary.PercentPointsByTeam = TeamCounts{
		Enterprise: percentOf(summary.PointsByTeam.Enterprise, summary.TotalPoints),
		SMB:        percentOf(summary.PointsByTeam.SMB, summary.TotalPoints),
		Other:      percentOf(summary.PointsByTeam.Other, summary.TotalPoints),
	}
	summary.PercentPointsByState = StateCounts{
		NotStarted: percentOf(summary.PointsByState.NotStarted, summary.TotalPoints),
		Started:    percentOf(summary.PointsByState.Started, summary.TotalPoints),
		Completed:  percentOf(summary.PointsByState.Completed, summary.TotalPoints),
	}

	summary.HighUATStories = rankStories(analysis.Stories, analysis.HighUATStories)
	summary.HighCommentStories = rankStories(analysis.Stories, analysis.HighCommentStories)
	summary.AddedAfterStart = lateStories(analysis.Stories, analysis.AddedAfterStart)
	return summary
}

func sumPoints(stories map[ID]Story, ids []ID) float64 {
	total := 0.0
	for _, id := range ids {
		total += stories[id].Points()
	}
	return total
}

func percentOf(value float64, total float64) int {
	if total == 0 {
		return 0
	}
	return int(math.RoundToEven(value / total * 100))
}

func rankStories(stories map[ID]Story, counts map[ID]int) []RankedStory {
	ranked := make([]RankedStory, 0, len(counts))
	for id, count := range counts {
		story, ok := stories[id]
		if !ok {
			story = Story{ID: id}
		}
		ranked = append(ranked, RankedStory{Story: story, Count: count})
	}
	slices.SortFunc(ranked, func(a, b RankedStory) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return compareIDs(a.Story.ID, b.Story.ID)
	})
	return ranked
}

func lateStories(stories map[ID]Story, added map[ID]string) []LateStory {
	late := make([]LateStory, 0, len(added))
	for id, addedAt := range added {
		story, ok := stories[id]
		if !ok {
			story = Story{ID: id}
		}
		late = append(late, LateStory{Story: story, AddedAt: addedAt})
	}
	slices.SortFunc(late, func(a, b LateStory) int {
		if cmp := compareTimestamps(b.AddedAt, a.AddedAt); cmp != 0 {
			return cmp
		}
		return compareIDs(a.Story.ID, b.Story.ID)
	})
	return late
}

func compareTimestamps(a string, b string) int {
	left, leftErr := ParseTimestamp(a)
	right, rightErr := ParseTimestamp(b)
	if leftErr != nil || rightErr != nil {
		return strings.Compare(a, b)
	}
	return left.Compare(right)
}
