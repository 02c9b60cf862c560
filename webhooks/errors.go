package webhooks

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messenger/core"
)

func signatureError(message string) error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(core.TextCodeSignatureInvalid)
}

func payloadError(source error, message string) error {
	return goerrors.Wrap(source, goerrors.CategoryBadInput, message).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.TextCodePayloadInvalid)
}

func dispatchError(source error, failed int) error {
	return goerrors.Wrap(source, goerrors.CategoryOperation, "webhooks: notification delivery failed").
		WithCode(http.StatusBadGateway).
		WithTextCode(core.TextCodeNotificationFailed).
		WithMetadata(map[string]any{"failed_notifications": failed})
}
