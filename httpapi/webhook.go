package httpapi

import (
	"io"
	"net/http"
	"strings"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	messengercommand "github.com/goliatone/go-messenger/command"
	"github.com/goliatone/go-messenger/core"
)

var emptyObject = struct{}{}

// receiveWebhook always answers with an empty JSON object. The status code
// carries the outcome.
func (s *Server) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.WithContext(r.Context())
	if s.deps.Commands.DispatchWebhook == nil {
		logger.Error("webhook received but no dispatcher is configured")
		writeJSON(w, http.StatusServiceUnavailable, emptyObject)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.deps.MaxWebhookBytes))
	if err != nil {
		logger.Warn("webhook body rejected", "error", err.Error())
		writeJSON(w, http.StatusRequestEntityTooLarge, emptyObject)
		return
	}

	msg := messengercommand.DispatchWebhookMessage{Request: core.InboundRequest{
		Source:  webhookSource,
		Headers: flattenHeaders(r.Header),
		Body:    body,
		Metadata: map[string]any{
			"request_id":  requestID(r),
			"remote_addr": r.RemoteAddr,
		},
	}}
	if err := msg.Validate(); err != nil {
		status, _ := statusFor(err)
		writeJSON(w, status, emptyObject)
		return
	}

	collector := gocmd.NewResult[core.InboundResult]()
	ctx := gocmd.ContextWithResult(r.Context(), collector)
	execErr := s.deps.Commands.DispatchWebhook.Execute(ctx, msg)
	result, _ := collector.Load()

	status := result.StatusCode
	if status == 0 {
		status = http.StatusOK
		if execErr != nil {
			status, _ = statusFor(execErr)
		}
	}
	if execErr != nil {
		var rich *goerrors.Error
		textCode := ""
		if goerrors.As(execErr, &rich) {
			textCode = rich.TextCode
		}
		logger.Warn("webhook dispatch failed", "status", status, "text_code", textCode, "error", execErr.Error())
	}
	writeJSON(w, status, emptyObject)
}

func flattenHeaders(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for key, values := range header {
		if len(values) == 0 {
			continue
		}
		out[strings.ToLower(key)] = values[0]
	}
	return out
}
