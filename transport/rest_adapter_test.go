package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-messenger/core"
)

func TestRESTAdapter_MergesHeadersQueryAndBaseURL(t *testing.T) {
	var gotPath, gotQuery, gotToken, gotAccept, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("page")
		gotToken = r.Header.Get("Shortcut-Token")
		gotAccept = r.Header.Get("Accept")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.BaseURL = server.URL + "/api/v3/"
	adapter.DefaultHeaders = map[string]string{"Shortcut-Token": "secret", "Accept": "text/plain"}

	req, err := JSONRequest(http.MethodPost, "/iterations", map[string]string{"name": "x"})
	if err != nil {
		t.Fatalf("json request: %v", err)
	}
	req.Query = map[string]string{"page": "2"}
	res, err := adapter.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if gotPath != "/api/v3/iterations" || gotQuery != "2" {
		t.Fatalf("unexpected request target %q ?page=%q", gotPath, gotQuery)
	}
	if gotToken != "secret" {
		t.Fatalf("expected default header, got %q", gotToken)
	}
	if gotAccept != "application/json" {
		t.Fatalf("expected request header to override default, got %q", gotAccept)
	}
	if gotBody != `{"name":"x"}` {
		t.Fatalf("unexpected body %q", gotBody)
	}

	var decoded struct {
		OK bool `json:"ok"`
	}
	if err := DecodeJSON(res, &decoded); err != nil || !decoded.OK {
		t.Fatalf("decode: %v %#v", err, decoded)
	}
}

func TestRESTAdapter_DefaultTimeoutCancelsRequest(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	adapter := NewRESTAdapter(server.Client())
	adapter.DefaultTimeout = 20 * time.Millisecond

	_, err := adapter.Do(context.Background(), core.TransportRequest{URL: server.URL})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
}
