package core

import "time"

type TeamBreakdown struct {
	Enterprise []ID `json:"enterprise"`
	SMB        []ID `json:"smb"`
	Other      []ID `json:"other"`
}

type StateBreakdown struct {
	NotStarted []ID `json:"not_started"`
	Started    []ID `json:"started"`
	Completed  []ID `json:"completed"`
}

// IterationAnalysis is the classified view of one iteration snapshot. Story
// lists keep the order in which stories were supplied.
type IterationAnalysis struct {
	Iteration          Iteration      `json:"iteration"`
	Stories            map[ID]Story   `json:"stories"`
	HighCommentStories map[ID]int     `json:"high_comment_stories"`
	HighUATStories     map[ID]int     `json:"high_uat_stories"`
	RejectedUATStories []ID           `json:"rejected_uat_stories"`
	AddedAfterStart    map[ID]string  `json:"added_after_start"`
	StoriesByTeam      TeamBreakdown  `json:"stories_by_team"`
	StoriesByState     StateBreakdown `json:"stories_by_state"`
}

// ClassifyIteration derives the iteration health classifications from a raw
// snapshot. It performs no I/O. An unparseable iteration start date or
// history timestamp aborts the whole classification.
func ClassifyIteration(data IterationData) (IterationAnalysis, error) {
	start, err := ParseTimestamp(data.Iteration.StartDate)
	if err != nil {
		return IterationAnalysis{}, NewTrackerDataError(err, "core: invalid iteration start date", map[string]any{
			"iteration_id": data.Iteration.ID.String(),
			"start_date":   data.Iteration.StartDate,
		})
	}
	startDay := calendarDate(start)

	uatLabel, hasUATLabel := data.LabelByName(LabelUATNotApproved)

	analysis := IterationAnalysis{
		Iteration:          data.Iteration,
		Stories:            make(map[ID]Story, len(data.Stories)),
		HighCommentStories: map[ID]int{},
		HighUATStories:     map[ID]int{},
		RejectedUATStories: []ID{},
		AddedAfterStart:    map[ID]string{},
		StoriesByTeam: TeamBreakdown{
			Enterprise: []ID{},
			SMB:        []ID{},
			Other:      []ID{},
		},
		StoriesByState: StateBreakdown{
			NotStarted: []ID{},
			Started:    []ID{},
			Completed:  []ID{},
		},
	}

	for _, story := range data.Stories {
		if _, seen := analysis.Stories[story.ID]; seen {
			continue
		}
		analysis.Stories[story.ID] = story

		if count := len(story.Comments); count > HighCommentThreshold {
			analysis.HighCommentStories[story.ID] = count
		}

		if hasUATLabel {
			rejections := countLabelAdditions(story.History, uatLabel.ID)
			if rejections > HighUATThreshold {
				analysis.HighUATStories[story.ID] = rejections
			}
			if rejections > 0 {
				analysis.RejectedUATStories = append(analysis.RejectedUATStories, story.ID)
			}
		}

		addedAt, added, err := addedAfterStart(story, data.Iteration.ID, startDay)
		if err != nil {
			return IterationAnalysis{}, err
		}
		if added {
			analysis.AddedAfterStart[story.ID] = addedAt
		}

		assignTeam(&analysis.StoriesByTeam, story)
		assignState(&analysis.StoriesByState, story)
	}

	return analysis, nil
}

// countLabelAdditions counts history events with at least one action adding
// the label; several matching actions in one event count once.
func countLabelAdditions(history []ChangeEvent, labelID ID) int {
	count := 0
	for _, event := range history {
		for _, action := range event.Actions {
			change, ok := action.Change(ChangeKeyLabels)
			if ok && change.Added(labelID) {
				count++
				break
			}
		}
	}
	return count
}

// addedAfterStart parses every history event's timestamp up to the first
// qualifying move, so a malformed timestamp anywhere before that point is
// fatal even on events unrelated to the iteration.
func addedAfterStart(story Story, iterationID ID, startDay time.Time) (string, bool, error) {
	for _, event := range story.History {
		changedAt, err := ParseTimestamp(event.ChangedAt)
		if err != nil {
			return "", false, NewTrackerDataError(err, "core: invalid history timestamp", map[string]any{
				"story_id":   story.ID.String(),
				"event_id":   event.ID.String(),
				"changed_at": event.ChangedAt,
			})
		}
		if movedIntoIteration(event, iterationID) && calendarDate(changedAt).After(startDay) {
			return event.ChangedAt, true, nil
		}
	}
	return "", false, nil
}

func movedIntoIteration(event ChangeEvent, iterationID ID) bool {
	for _, action := range event.Actions {
		change, ok := action.Change(ChangeKeyIteration)
		if ok && !change.New.IsZero() && change.New == iterationID {
			return true
		}
	}
	return false
}

func assignTeam(teams *TeamBreakdown, story Story) {
	enterprise := story.HasLabel(LabelTeamEnterprise)
	smb := story.HasLabel(LabelTeamSMB)
	if enterprise {
		teams.Enterprise = append(teams.Enterprise, story.ID)
	}
	if smb {
		teams.SMB = append(teams.SMB, story.ID)
	}
	if !enterprise && !smb {
		teams.Other = append(teams.Other, story.ID)
	}
}

func assignState(states *StateBreakdown, story Story) {
	switch {
	case story.Completed:
		states.Completed = append(states.Completed, story.ID)
	case story.Started:
		states.Started = append(states.Started, story.ID)
	default:
		states.NotStarted = append(states.NotStarted, story.ID)
	}
}
