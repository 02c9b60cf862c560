package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messenger/core"
)

func newSlackServer(t *testing.T, reply string, captured *map[string]string, auth *string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat.postMessage" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		*auth = r.Header.Get("Authorization")
		body := map[string]string{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		*captured = body
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server
}

func slackConfig(baseURL string) core.Config {
	cfg := core.DefaultConfig()
	cfg.Slack.Token = "xoxb-test"
	cfg.Slack.BaseURL = baseURL
	return cfg
}

func TestSlackNotifier_PostsMessage(t *testing.T) {
	var body map[string]string
	var auth string
	server := newSlackServer(t, `{"ok":true}`, &body, &auth)

	notifier, err := NewSlackNotifier(slackConfig(server.URL+"/api"), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	err = notifier.Notify(context.Background(), core.Notification{
		Channel: "shortcut-needs-testing",
		Text:    "SC-42 has been moved to Needs Testing.\n<https://app/42|Checkout>",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if auth != "Bearer xoxb-test" {
		t.Fatalf("unexpected authorization header %q", auth)
	}
	if body["channel"] != "shortcut-needs-testing" || body["text"] == "" {
		t.Fatalf("unexpected payload %#v", body)
	}
}

func TestSlackNotifier_RejectedMessageIsNotificationError(t *testing.T) {
	var body map[string]string
	var auth string
	server := newSlackServer(t, `{"ok":false,"error":"channel_not_found"}`, &body, &auth)

	notifier, err := NewSlackNotifier(slackConfig(server.URL+"/api"), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	err = notifier.Notify(context.Background(), core.Notification{Channel: "missing", Text: "hi"})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.TextCode != core.TextCodeNotificationFailed || rich.Category != goerrors.CategoryOperation {
		t.Fatalf("unexpected error envelope %q %q", rich.TextCode, rich.Category)
	}
}

func TestNewSlackNotifier_RequiresToken(t *testing.T) {
	_, err := NewSlackNotifier(core.DefaultConfig())
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != core.TextCodeConfigInvalid {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestLogNotifier_NeverFails(t *testing.T) {
	if err := NewLogNotifier(nil).Notify(context.Background(), core.Notification{Channel: "c", Text: "t"}); err != nil {
		t.Fatalf("expected log notifier to succeed: %v", err)
	}
}
