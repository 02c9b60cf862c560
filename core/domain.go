package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	LabelUATNotApproved    = "UAT: Not Approved"
	LabelTeamEnterprise    = "CS - ENT"
	LabelTeamSMB           = "CS - SMB"
	WorkflowStateNeedsTest = "Needs Testing"

	EntityTypeStory         = "story"
	EntityTypeLabel         = "label"
	EntityTypeWorkflowState = "workflow-state"

	ChangeKeyWorkflowState = "workflow_state_id"
	ChangeKeyLabels        = "label_ids"
	ChangeKeyIteration     = "iteration_id"

	HighCommentThreshold = 8
	HighUATThreshold     = 2
)

// ID is a tracker identifier. Shortcut emits numeric ids for most entities and
// string ids for a few (members, some references), so decoding accepts any
// JSON scalar and keeps its literal text.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id ID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*id = ID(value)
		return nil
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		compacted := bytes.Buffer{}
		if err := json.Compact(&compacted, trimmed); err != nil {
			return err
		}
		*id = ID(compacted.String())
		return nil
	}
	*id = ID(string(trimmed))
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	*id = ID(string(text))
	return nil
}

// compareIDs orders numeric ids numerically and falls back to lexical order.
func compareIDs(a ID, b ID) int {
	left, leftErr := strconv.ParseInt(string(a), 10, 64)
	right, rightErr := strconv.ParseInt(string(b), 10, 64)
	if leftErr == nil && rightErr == nil {
		switch {
		case left < right:
			return -1
		case left > right:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(string(a), string(b))
}

type Iteration struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	AppURL    string `json:"app_url,omitempty"`
	Status    string `json:"status,omitempty"`
}

type Label struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type Comment struct {
	ID        ID     `json:"id"`
	Text      string `json:"text,omitempty"`
	AuthorID  ID     `json:"author_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Change holds one entry of an action's changes map. Scalar fields report
// New/Old; multi-valued fields report Adds/Removes.
type Change struct {
	New     ID   `json:"new,omitempty"`
	Old     ID   `json:"old,omitempty"`
	Adds    []ID `json:"adds,omitempty"`
	Removes []ID `json:"removes,omitempty"`
}

func (c Change) Added(id ID) bool {
	for _, candidate := range c.Adds {
		if candidate == id {
			return true
		}
	}
	return false
}

type Action struct {
	ID         ID                `json:"id"`
	EntityType string            `json:"entity_type"`
	Action     string            `json:"action"`
	Name       string            `json:"name,omitempty"`
	AppURL     string            `json:"app_url,omitempty"`
	Changes    map[string]Change `json:"changes,omitempty"`
}

func (a Action) Change(key string) (Change, bool) {
	if len(a.Changes) == 0 {
		return Change{}, false
	}
	change, ok := a.Changes[key]
	return change, ok
}

type Reference struct {
	ID         ID     `json:"id"`
	EntityType string `json:"entity_type"`
	Name       string `json:"name"`
	AppURL     string `json:"app_url,omitempty"`
}

type ChangeEvent struct {
	ID         ID          `json:"id"`
	ChangedAt  string      `json:"changed_at"`
	MemberID   ID          `json:"member_id,omitempty"`
	Actions    []Action    `json:"actions"`
	References []Reference `json:"references,omitempty"`
}

type Story struct {
	ID              ID            `json:"id"`
	Name            string        `json:"name"`
	AppURL          string        `json:"app_url,omitempty"`
	Estimate        *float64      `json:"estimate"`
	Completed       bool          `json:"completed"`
	Started         bool          `json:"started"`
	Labels          []Label       `json:"labels"`
	Comments        []Comment     `json:"comments"`
	WorkflowStateID ID            `json:"workflow_state_id,omitempty"`
	IterationID     ID            `json:"iteration_id,omitempty"`
	History         []ChangeEvent `json:"history"`
}

func (s Story) HasLabel(name string) bool {
	for _, label := range s.Labels {
		if label.Name == name {
			return true
		}
	}
	return false
}

// Points returns the story estimate, treating a missing estimate as zero.
func (s Story) Points() float64 {
	if s.Estimate == nil {
		return 0
	}
	return *s.Estimate
}

// IterationData is the raw snapshot assembled from the tracker for one
// iteration; it is the persisted payload of an IterationReport.
type IterationData struct {
	Iteration Iteration `json:"iteration"`
	Stories   []Story   `json:"stories"`
	Labels    []Label   `json:"labels"`
}

func (d IterationData) LabelByName(name string) (Label, bool) {
	for _, label := range d.Labels {
		if label.Name == name {
			return label, true
		}
	}
	return Label{}, false
}

type IterationReport struct {
	ID            string        `json:"id"`
	IterationName string        `json:"iteration_name"`
	IterationData IterationData `json:"iteration_data"`
	CreatedAt     time.Time     `json:"created_at"`
}

type CreateReportRequest struct {
	IterationName string `json:"iteration_name"`
}

type ReportFilter struct {
	IterationName string
	Limit         int
	Offset        int
}

type ReportPage struct {
	Items []IterationReport `json:"items"`
	Total int               `json:"total"`
}

// Notification is a chat message produced by a webhook rule.
type Notification struct {
	Rule    string `json:"rule"`
	Channel string `json:"channel"`
	Text    string `json:"text"`
	StoryID ID     `json:"story_id"`
}

// ParseTimestamp accepts the date and timestamp layouts Shortcut emits.
func ParseTimestamp(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("core: timestamp is empty")
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("core: unsupported timestamp %q", trimmed)
}

// calendarDate keeps the date as written, in the timestamp's own offset.
func calendarDate(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
