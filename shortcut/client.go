// Package shortcut is a read-only client for the Shortcut REST API (v3).
package shortcut

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-messenger/core"
	"github.com/goliatone/go-messenger/transport"
)

const HeaderToken = "Shortcut-Token"

type Client struct {
	adapter *transport.RESTAdapter
}

type ClientOption func(*clientOptions)

type clientOptions struct {
	httpClient transport.HTTPDoer
}

func WithHTTPClient(client transport.HTTPDoer) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// NewClient fails with a configuration error when no token is set, before any
// request is made.
func NewClient(cfg core.Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.RequireShortcutToken(); err != nil {
		return nil, err
	}
	options := clientOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	adapter := transport.NewRESTAdapter(options.httpClient)
	adapter.BaseURL = strings.TrimSpace(cfg.Shortcut.BaseURL)
	if adapter.BaseURL == "" {
		adapter.BaseURL = core.DefaultShortcutBaseURL
	}
	adapter.DefaultTimeout = cfg.RequestTimeout()
	adapter.DefaultHeaders = map[string]string{
		HeaderToken:    strings.TrimSpace(cfg.Shortcut.Token),
		"Content-Type": "application/json",
	}
	return &Client{adapter: adapter}, nil
}

func (c *Client) ListIterations(ctx context.Context) ([]core.Iteration, error) {
	var iterations []core.Iteration
	if err := c.get(ctx, "iterations", &iterations); err != nil {
		return nil, err
	}
	return iterations, nil
}

// GetIterationByName matches names exactly; the first match wins.
func (c *Client) GetIterationByName(ctx context.Context, name string) (core.Iteration, error) {
	iterations, err := c.ListIterations(ctx)
	if err != nil {
		return core.Iteration{}, err
	}
	for _, iteration := range iterations {
		if iteration.Name == name {
			return iteration, nil
		}
	}
	return core.Iteration{}, core.NewIterationNotFoundError(name)
}

func (c *Client) ListIterationStories(ctx context.Context, iterationID core.ID) ([]core.Story, error) {
	var stories []core.Story
	if err := c.get(ctx, "iterations/"+url.PathEscape(iterationID.String())+"/stories", &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

func (c *Client) GetStory(ctx context.Context, storyID core.ID) (core.Story, error) {
	var story core.Story
	if err := c.get(ctx, "stories/"+url.PathEscape(storyID.String()), &story); err != nil {
		return core.Story{}, err
	}
	return story, nil
}

func (c *Client) GetStoryHistory(ctx context.Context, storyID core.ID) ([]core.ChangeEvent, error) {
	var history []core.ChangeEvent
	if err := c.get(ctx, "stories/"+url.PathEscape(storyID.String())+"/history", &history); err != nil {
		return nil, err
	}
	return history, nil
}

// GetStoryWithHistory returns the full story with its change history
// attached under History.
func (c *Client) GetStoryWithHistory(ctx context.Context, storyID core.ID) (core.Story, error) {
	story, err := c.GetStory(ctx, storyID)
	if err != nil {
		return core.Story{}, err
	}
	history, err := c.GetStoryHistory(ctx, storyID)
	if err != nil {
		return core.Story{}, err
	}
	if history == nil {
		history = []core.ChangeEvent{}
	}
	story.History = history
	return story, nil
}

func (c *Client) ListLabels(ctx context.Context) ([]core.Label, error) {
	var labels []core.Label
	if err := c.get(ctx, "labels", &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if c == nil || c.adapter == nil {
		return core.NewConfigError("shortcut", "client is not configured")
	}
	res, err := c.adapter.Do(ctx, core.TransportRequest{Method: http.MethodGet, URL: path})
	if err != nil {
		return trackerRequestError(err, path)
	}
	if err := transport.RequireSuccess(res); err != nil {
		return trackerRequestError(err, path)
	}
	if err := transport.DecodeJSON(res, out); err != nil {
		return trackerDataError(err, path)
	}
	return nil
}

var _ core.TrackerClient = (*Client)(nil)
