package services

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/melizalab/nbank-registry/resolver"
	"github.com/melizalab/nbank-registry/store"
)

// converts an error from the store or resolver into a huma error with the
// appropriate status code
func registryError(err error) error {
	var notFound store.NotFoundError
	var invalid store.ValidationError
	var exists store.AlreadyExistsError
	var denied store.PermissionDeniedError
	var protected store.ProtectedError
	switch {
	case errors.Is(err, resolver.ErrNotAvailableForDownload):
		return huma.NewError(http.StatusUnsupportedMediaType, err.Error())
	case errors.As(err, &notFound):
		return huma.Error404NotFound(err.Error())
	case errors.As(err, &invalid), errors.As(err, &exists):
		return huma.Error400BadRequest(err.Error())
	case errors.As(err, &denied):
		return huma.Error403Forbidden(err.Error())
	case errors.As(err, &protected):
		return huma.Error409Conflict(err.Error())
	}
	slog.Error(err.Error())
	return huma.Error500InternalServerError("internal error")
}

// Like registryError, but a submission naming a datatype or archive that
// doesn't exist is invalid rather than missing.
func submissionError(err error) error {
	var notFound store.NotFoundError
	if errors.As(err, &notFound) && notFound.Kind != "resource" {
		return huma.Error400BadRequest(err.Error())
	}
	return registryError(err)
}
