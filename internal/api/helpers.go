package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
)

// authenticateRequest validates the Authorization header and returns the
// active user it belongs to.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*domain.User, error) {
	if authHeader == "" {
		return nil, huma.Error401Unauthorized("authentication credentials were not provided")
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, huma.Error401Unauthorized("invalid authorization header format")
	}

	user, err := s.services.User.Authenticate(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}
