package webhooks

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-messenger/core"
)

const (
	RuleNeedsTesting   = "needs_testing"
	RuleUATNotApproved = "uat_not_approved"
)

// Rule turns a matching story action into a notification.
type Rule interface {
	Name() string
	Match(action core.Action, refs ResolvedReferences) (core.Notification, bool)
}

type NeedsTestingRule struct {
	Channel string
}

func (NeedsTestingRule) Name() string { return RuleNeedsTesting }

func (r NeedsTestingRule) Match(action core.Action, refs ResolvedReferences) (core.Notification, bool) {
	if refs.NeedsTesting == nil || action.EntityType != core.EntityTypeStory {
		return core.Notification{}, false
	}
	change, ok := action.Change(core.ChangeKeyWorkflowState)
	if !ok || change.New.IsZero() || change.New != refs.NeedsTesting.ID {
		return core.Notification{}, false
	}
	return core.Notification{
		Rule:    RuleNeedsTesting,
		Channel: channelOr(r.Channel, core.DefaultNeedsTestingChannel),
		Text:    storyMessage(action, "has been moved to Needs Testing."),
		StoryID: action.ID,
	}, true
}

type UATNotApprovedRule struct {
	Channel string
}

func (UATNotApprovedRule) Name() string { return RuleUATNotApproved }

func (r UATNotApprovedRule) Match(action core.Action, refs ResolvedReferences) (core.Notification, bool) {
	if refs.UATNotApproved == nil || action.EntityType != core.EntityTypeStory {
		return core.Notification{}, false
	}
	change, ok := action.Change(core.ChangeKeyLabels)
	if !ok || !change.Added(refs.UATNotApproved.ID) {
		return core.Notification{}, false
	}
	return core.Notification{
		Rule:    RuleUATNotApproved,
		Channel: channelOr(r.Channel, core.DefaultUATNotApprovedChannel),
		Text:    storyMessage(action, "has been marked UAT: Not Approved."),
		StoryID: action.ID,
	}, true
}

// DefaultRules returns the built-in rules in evaluation order.
func DefaultRules(cfg core.SlackConfig) []Rule {
	return []Rule{
		NeedsTestingRule{Channel: cfg.NeedsTestingChannel},
		UATNotApprovedRule{Channel: cfg.UATNotApprovedChannel},
	}
}

func storyMessage(action core.Action, event string) string {
	return fmt.Sprintf("SC-%s %s\n<%s|%s>", action.ID.String(), event, action.AppURL, action.Name)
}

func channelOr(channel string, fallback string) string {
	if trimmed := strings.TrimSpace(channel); trimmed != "" {
		return trimmed
	}
	return fallback
}
