package service

import (
	"log/slog"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	domainerrors "github.com/shelfkeep/shelfkeep-server/internal/errors"
	"github.com/shelfkeep/shelfkeep-server/internal/validation"
)

// validate is the shared request validator. Failures come back as
// domainerrors VALIDATION errors keyed by JSON field name.
var validate = validation.New()

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// requireActor rejects calls made without an authenticated user. Checks that
// depend on the target resource go through access.Authorize instead.
func requireActor(actor *domain.User) error {
	if actor == nil || actor.ID == "" {
		return domainerrors.Unauthorized("authentication credentials were not provided")
	}
	return nil
}
