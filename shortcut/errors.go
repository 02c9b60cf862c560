package shortcut

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messenger/core"
)

func trackerRequestError(source error, path string) error {
	return goerrors.Wrap(source, goerrors.CategoryExternal, "shortcut: request failed").
		WithCode(http.StatusBadGateway).
		WithTextCode(core.TextCodeTrackerRequestFailed).
		WithMetadata(map[string]any{"path": path})
}

func trackerDataError(source error, path string) error {
	return core.NewTrackerDataError(source, "shortcut: unexpected response payload", map[string]any{"path": path})
}
