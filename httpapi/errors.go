package httpapi

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messenger/core"
)

type fieldErrorBody struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorBody struct {
	Category         string           `json:"category"`
	Code             int              `json:"code"`
	TextCode         string           `json:"text_code"`
	Message          string           `json:"message"`
	ValidationErrors []fieldErrorBody `json:"validation_errors,omitempty"`
	Metadata         map[string]any   `json:"metadata,omitempty"`
	RequestID        string           `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// statusFor maps err to the HTTP status and envelope it is served with.
func statusFor(err error) (int, *goerrors.Error) {
	rich := core.MapError(err)
	if rich == nil {
		return http.StatusInternalServerError, goerrors.New("unknown error", goerrors.CategoryInternal).
			WithTextCode(core.TextCodeInternal)
	}
	status := rich.Code
	if status < 400 || status > 599 {
		status = core.HTTPStatus(rich.Category)
	}
	return status, rich
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, rich := statusFor(err)
	body := errorBody{
		Category: string(rich.Category),
		Code:     status,
		TextCode: rich.TextCode,
		Message:  rich.Message,
		Metadata: rich.Metadata,
	}
	if status >= http.StatusInternalServerError {
		body.Metadata = nil
	}
	for _, field := range rich.AllValidationErrors() {
		body.ValidationErrors = append(body.ValidationErrors, fieldErrorBody{
			Field:   field.Field,
			Message: field.Message,
		})
	}
	if r != nil {
		body.RequestID = requestID(r)
	}
	writeJSON(w, status, errorResponse{Error: body})
}
