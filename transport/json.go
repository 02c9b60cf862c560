package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messenger/core"
)

const errorBodyExcerptLimit = 512

// RequireSuccess rejects non-2xx responses with an external error carrying
// the upstream status and a short body excerpt.
func RequireSuccess(res core.TransportResponse) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	metadata := map[string]any{
		"status_code": res.StatusCode,
		"body":        excerpt(res.Body),
	}
	if target, ok := res.Metadata["url"]; ok {
		metadata["url"] = target
	}
	return transportError(
		fmt.Sprintf("transport: unexpected status %d", res.StatusCode),
		goerrors.CategoryExternal,
		http.StatusBadGateway,
		metadata,
	)
}

func DecodeJSON(res core.TransportResponse, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(res.Body, out); err != nil {
		return transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: decode json response",
			http.StatusBadGateway,
			map[string]any{"status_code": res.StatusCode, "body": excerpt(res.Body)},
		)
	}
	return nil
}

// JSONRequest builds a transport request with a JSON encoded body.
func JSONRequest(method string, target string, payload any) (core.TransportRequest, error) {
	req := core.TransportRequest{
		Method:  method,
		URL:     target,
		Headers: map[string]string{"Accept": "application/json"},
	}
	if payload == nil {
		return req, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return core.TransportRequest{}, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: encode json request",
			http.StatusBadRequest,
			nil,
		)
	}
	req.Body = body
	req.Headers["Content-Type"] = "application/json; charset=utf-8"
	return req, nil
}

func excerpt(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= errorBodyExcerptLimit {
		return text
	}
	cut := errorBodyExcerptLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
