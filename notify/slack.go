// Package notify delivers webhook notifications to chat.
package notify

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-messenger/core"
	"github.com/goliatone/go-messenger/transport"
)

type SlackNotifier struct {
	adapter *transport.RESTAdapter
}

type SlackOption func(*slackOptions)

type slackOptions struct {
	httpClient transport.HTTPDoer
}

func WithHTTPClient(client transport.HTTPDoer) SlackOption {
	return func(o *slackOptions) {
		o.httpClient = client
	}
}

type postMessageRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewSlackNotifier posts with the bot token; a missing token is a
// configuration error.
func NewSlackNotifier(cfg core.Config, opts ...SlackOption) (*SlackNotifier, error) {
	if err := cfg.RequireSlackToken(); err != nil {
		return nil, err
	}
	options := slackOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	adapter := transport.NewRESTAdapter(options.httpClient)
	adapter.BaseURL = strings.TrimSpace(cfg.Slack.BaseURL)
	if adapter.BaseURL == "" {
		adapter.BaseURL = core.DefaultSlackBaseURL
	}
	adapter.DefaultTimeout = cfg.RequestTimeout()
	adapter.DefaultHeaders = map[string]string{
		"Authorization": "Bearer " + strings.TrimSpace(cfg.Slack.Token),
	}
	return &SlackNotifier{adapter: adapter}, nil
}

func (n *SlackNotifier) Notify(ctx context.Context, notification core.Notification) error {
	if n == nil || n.adapter == nil {
		return core.NewConfigError("slack", "notifier is not configured")
	}
	metadata := map[string]any{"channel": notification.Channel, "rule": notification.Rule}
	if strings.TrimSpace(notification.Channel) == "" {
		return notificationError(nil, "notify: channel is required", metadata)
	}

	req, err := transport.JSONRequest(http.MethodPost, "chat.postMessage", postMessageRequest{
		Channel: notification.Channel,
		Text:    notification.Text,
	})
	if err != nil {
		return notificationError(err, "notify: encode slack message", metadata)
	}
	res, err := n.adapter.Do(ctx, req)
	if err != nil {
		return notificationError(err, "notify: post slack message", metadata)
	}
	if err := transport.RequireSuccess(res); err != nil {
		return notificationError(err, "notify: post slack message", metadata)
	}
	var out postMessageResponse
	if err := transport.DecodeJSON(res, &out); err != nil {
		return notificationError(err, "notify: decode slack response", metadata)
	}
	if !out.OK {
		metadata["slack_error"] = out.Error
		return notificationError(nil, "notify: slack rejected message: "+out.Error, metadata)
	}
	return nil
}

var _ core.Notifier = (*SlackNotifier)(nil)
