package notify

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messenger/core"
)

func notificationError(source error, message string, metadata map[string]any) error {
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, goerrors.CategoryOperation)
	} else {
		err = goerrors.Wrap(source, goerrors.CategoryOperation, message)
	}
	err = err.WithCode(http.StatusBadGateway).WithTextCode(core.TextCodeNotificationFailed)
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}
