package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// actorKey is the context key for the authenticated user.
const actorKey ctxKey = "actor"

// currentActor returns the user requireAuth stored in ctx, or nil.
func currentActor(ctx context.Context) *domain.User {
	user, _ := ctx.Value(actorKey).(*domain.User)
	return user
}

// requireAuth is a huma operation middleware that resolves the bearer token
// before the request body is read. Authentication comes before everything else.
func (s *Server) requireAuth(ctx huma.Context, next func(huma.Context)) {
	user, err := s.authenticateRequest(ctx.Context(), ctx.Header("Authorization"))
	if err != nil {
		s.writeErr(ctx, err)
		return
	}
	next(huma.WithValue(ctx, actorKey, user))
}

// requireBookOwner refuses book writes from anyone but the owner ahead of
// body validation. Must follow requireAuth.
func (s *Server) requireBookOwner(ctx huma.Context, next func(huma.Context)) {
	if err := s.services.Book.CheckWrite(ctx.Context(), currentActor(ctx.Context()), ctx.Param("id")); err != nil {
		s.writeErr(ctx, err)
		return
	}
	next(ctx)
}

// requirePublisherOwner hides other users' publishers ahead of body
// validation. Must follow requireAuth.
func (s *Server) requirePublisherOwner(ctx huma.Context, next func(huma.Context)) {
	if _, err := s.services.Publisher.Get(ctx.Context(), currentActor(ctx.Context()), ctx.Param("id")); err != nil {
		s.writeErr(ctx, err)
		return
	}
	next(ctx)
}

// writeErr writes err from a middleware in the same shape handlers produce.
func (s *Server) writeErr(ctx huma.Context, err error) {
	err = mapError(err)
	status := http.StatusInternalServerError
	if se, ok := err.(huma.StatusError); ok {
		status = se.GetStatus()
	}
	_ = huma.WriteErr(s.api, ctx, status, err.Error(), err)
}
