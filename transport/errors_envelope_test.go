package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messenger/core"
)

func TestRESTAdapter_ResponseLimitReturnsRichError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("12345"))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.MaxResponseBodyBytes = 4

	_, err := adapter.Do(context.Background(), core.TransportRequest{Method: http.MethodGet, URL: server.URL})
	assertRichError(t, err, goerrors.CategoryExternal, core.TextCodeExternalFailure, http.StatusBadGateway)
}

func TestRESTAdapter_NilReturnsRichError(t *testing.T) {
	var adapter *RESTAdapter
	_, err := adapter.Do(context.Background(), core.TransportRequest{})
	assertRichError(t, err, goerrors.CategoryInternal, core.TextCodeInternal, http.StatusInternalServerError)
}

func TestRequireSuccess_RejectsNon2xx(t *testing.T) {
	if err := RequireSuccess(core.TransportResponse{StatusCode: http.StatusNoContent}); err != nil {
		t.Fatalf("expected 204 to pass: %v", err)
	}
	err := RequireSuccess(core.TransportResponse{StatusCode: http.StatusUnauthorized, Body: []byte(`{"message":"nope"}`)})
	assertRichError(t, err, goerrors.CategoryExternal, core.TextCodeExternalFailure, http.StatusBadGateway)
}

func TestDecodeJSON_MalformedBody(t *testing.T) {
	var out map[string]any
	err := DecodeJSON(core.TransportResponse{StatusCode: http.StatusOK, Body: []byte("{")}, &out)
	assertRichError(t, err, goerrors.CategoryExternal, core.TextCodeExternalFailure, http.StatusBadGateway)
}

func assertRichError(t *testing.T, err error, category goerrors.Category, textCode string, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != category {
		t.Fatalf("expected %q category, got %q", category, rich.Category)
	}
	if rich.TextCode != textCode {
		t.Fatalf("expected %q text code, got %q", textCode, rich.TextCode)
	}
	if rich.Code != code {
		t.Fatalf("expected %d code, got %d", code, rich.Code)
	}
}
