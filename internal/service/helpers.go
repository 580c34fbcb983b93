package service

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/repository"
)

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// storageError converts a repository failure into the caller-facing taxonomy.
func storageError(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrConflict),
		errors.Is(err, apperr.ErrForbidden), errors.Is(err, apperr.ErrNotFound):
		return err
	default:
		slog.Error(err.Error())
		return apperr.Internal("Something went wrong", err)
	}
}
