package webhooks

import (
	"encoding/json"

	"github.com/goliatone/go-messenger/core"
)

// Payload is the body of a Shortcut webhook delivery.
type Payload struct {
	ID         core.ID          `json:"id"`
	ChangedAt  string           `json:"changed_at"`
	PrimaryID  core.ID          `json:"primary_id"`
	MemberID   core.ID          `json:"member_id"`
	Version    string           `json:"version"`
	Actions    []core.Action    `json:"actions"`
	References []core.Reference `json:"references"`
}

func DecodePayload(body []byte) (Payload, error) {
	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Payload{}, payloadError(err, "webhooks: invalid payload")
	}
	return payload, nil
}

// ResolvedReferences holds the entities rules match against. Either may be
// nil when the delivery did not reference it.
type ResolvedReferences struct {
	NeedsTesting   *core.Reference
	UATNotApproved *core.Reference
}

// ResolveReferences picks the "Needs Testing" workflow state and the
// "UAT: Not Approved" label by exact name and entity type.
func ResolveReferences(references []core.Reference) ResolvedReferences {
	resolved := ResolvedReferences{}
	for i := range references {
		ref := references[i]
		switch {
		case resolved.NeedsTesting == nil && ref.EntityType == core.EntityTypeWorkflowState && ref.Name == core.WorkflowStateNeedsTest:
			resolved.NeedsTesting = &ref
		case resolved.UATNotApproved == nil && ref.EntityType == core.EntityTypeLabel && ref.Name == core.LabelUATNotApproved:
			resolved.UATNotApproved = &ref
		}
	}
	return resolved
}
