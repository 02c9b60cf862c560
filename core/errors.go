package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeBadInput              = "MESSENGER_BAD_INPUT"
	TextCodeConfigInvalid         = "CONFIG_INVALID"
	TextCodeIterationNotFound     = "ITERATION_NOT_FOUND"
	TextCodeReportValidation      = "REPORT_VALIDATION_FAILED"
	TextCodeReportNotFound        = "REPORT_NOT_FOUND"
	TextCodeTrackerDataInvalid    = "TRACKER_DATA_INVALID"
	TextCodeTrackerRequestFailed  = "TRACKER_REQUEST_FAILED"
	TextCodeSignatureInvalid      = "WEBHOOK_SIGNATURE_INVALID"
	TextCodePayloadInvalid        = "WEBHOOK_PAYLOAD_INVALID"
	TextCodeNotificationFailed    = "NOTIFICATION_FAILED"
	TextCodeExternalFailure       = "MESSENGER_EXTERNAL_FAILURE"
	TextCodeInternal              = "MESSENGER_INTERNAL_ERROR"
	iterationNotFoundFieldMessage = "Could not find the iteration in Shortcut."
)

var (
	ErrIterationNotFound = errors.New("core: iteration not found")
	ErrReportNotFound    = errors.New("core: report not found")
)

// NewConfigError reports invalid or missing configuration. It is raised before
// any network call is attempted.
func NewConfigError(field string, message string) *goerrors.Error {
	return goerrors.NewValidation("core: configuration invalid", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(TextCodeConfigInvalid).
		WithSeverity(goerrors.SeverityError)
}

func NewIterationNotFoundError(name string) *goerrors.Error {
	return goerrors.Wrap(ErrIterationNotFound, goerrors.CategoryNotFound, "core: iteration not found").
		WithCode(http.StatusNotFound).
		WithTextCode(TextCodeIterationNotFound).
		WithMetadata(map[string]any{"iteration_name": name})
}

func NewReportNotFoundError(id string) *goerrors.Error {
	return goerrors.Wrap(ErrReportNotFound, goerrors.CategoryNotFound, "core: report not found").
		WithCode(http.StatusNotFound).
		WithTextCode(TextCodeReportNotFound).
		WithMetadata(map[string]any{"report_id": id})
}

// NewTrackerDataError reports tracker payloads that cannot be interpreted,
// such as unparseable dates. These failures abort a report build.
func NewTrackerDataError(source error, message string, metadata map[string]any) *goerrors.Error {
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, goerrors.CategoryBadInput)
	} else {
		err = goerrors.Wrap(source, goerrors.CategoryBadInput, message)
	}
	err = err.WithCode(http.StatusBadGateway).WithTextCode(TextCodeTrackerDataInvalid)
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}

func newReportValidationError(field string, message string) *goerrors.Error {
	return goerrors.NewValidation("core: report validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(TextCodeReportValidation).
		WithSeverity(goerrors.SeverityError)
}

func IsIterationNotFound(err error) bool {
	return hasTextCode(err, TextCodeIterationNotFound) || errors.Is(err, ErrIterationNotFound)
}

func IsReportNotFound(err error) bool {
	return hasTextCode(err, TextCodeReportNotFound) || errors.Is(err, ErrReportNotFound)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

// MapError converts any error into a go-errors envelope with a stable text
// code and HTTP status.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrIterationNotFound):
		return ensureErrorEnvelope(NewIterationNotFoundError(""))
	case errors.Is(err, ErrReportNotFound):
		return ensureErrorEnvelope(NewReportNotFoundError(""))
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return ensureErrorEnvelope(goerrors.New(err.Error(), goerrors.CategoryBadInput).WithTextCode(TextCodeBadInput))
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = HTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return TextCodeBadInput
	case goerrors.CategoryNotFound:
		return TextCodeReportNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return TextCodeSignatureInvalid
	case goerrors.CategoryOperation:
		return TextCodeNotificationFailed
	case goerrors.CategoryExternal:
		return TextCodeExternalFailure
	default:
		return TextCodeInternal
	}
}

// HTTPStatus maps an error category to the status served for it.
func HTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal, goerrors.CategoryOperation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
