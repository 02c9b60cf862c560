package notify

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-messenger/core"
)

// LogNotifier writes notifications to the logger instead of chat. It backs
// deployments without a Slack bot token.
type LogNotifier struct {
	logger core.Logger
}

func NewLogNotifier(logger core.Logger) *LogNotifier {
	return &LogNotifier{logger: glog.Ensure(logger)}
}

func (n *LogNotifier) Notify(ctx context.Context, notification core.Notification) error {
	if n == nil {
		return nil
	}
	n.logger.WithContext(ctx).Info("notification",
		"rule", notification.Rule,
		"channel", notification.Channel,
		"story_id", notification.StoryID.String(),
		"text", notification.Text,
	)
	return nil
}

var _ core.Notifier = (*LogNotifier)(nil)
