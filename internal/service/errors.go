package service

import (
	"errors"

	"github.com/boddenberg/loanhub/internal/domain"
)

// isExpected reports whether err is a normal client-facing outcome rather
// than an infrastructure failure.
func isExpected(err error) bool {
	var (
		invalid      *domain.ErrInvalidInput
		notFound     *domain.ErrNotFound
		conflict     *domain.ErrConflict
		unauthorized *domain.ErrUnauthorized
	)
	return errors.As(err, &invalid) ||
		errors.As(err, &notFound) ||
		errors.As(err, &conflict) ||
		errors.As(err, &unauthorized)
}
