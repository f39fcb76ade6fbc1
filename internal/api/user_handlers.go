package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "registerUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/users/",
		Summary:       "Register",
		Description:   "Creates a new account",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.rateLimitAuth},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "obtainToken",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/token/",
		Summary:     "Obtain token",
		Description: "Exchanges email and password for a bearer token",
		Tags:        []string{"Users"},
		Middlewares: huma.Middlewares{s.rateLimitAuth},
	}, s.handleObtainToken)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's information",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{s.requireAuth},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "patchCurrentUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me/",
		Summary:     "Update current user",
		Description: "Changes only the fields present in the body",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{s.requireAuth},
	}, s.handlePatchCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceCurrentUser",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/me/",
		Summary:     "Replace current user",
		Description: "Sets email, name and password",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{s.requireAuth},
	}, s.handlePutCurrentUser)
}

// === DTOs ===

// UserResponse contains user data in API responses. The password never appears.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Email     string    `json:"email" doc:"Email address"`
	Name      string    `json:"name" doc:"Display name"`
	IsStaff   bool      `json:"is_staff" doc:"Whether the user is staff"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// RegisterRequest is the request body for registration.
type RegisterRequest struct {
	_        struct{} `json:"-" additionalProperties:"true"`
	Email    string   `json:"email" format:"email" maxLength:"255" doc:"Email address"`
	Name     string   `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
	Password string   `json:"password" minLength:"5" maxLength:"1024" doc:"Password"`
}

// RegisterInput wraps the registration request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// TokenRequest is the request body for token exchange.
type TokenRequest struct {
	_        struct{} `json:"-" additionalProperties:"true"`
	Email    string   `json:"email" doc:"Email address"`
	Password string   `json:"password" doc:"Password"`
}

// TokenInput wraps the token request for Huma.
type TokenInput struct {
	Body TokenRequest
}

// TokenResponse contains the issued bearer token.
type TokenResponse struct {
	Token     string `json:"token" doc:"PASETO bearer token"`
	ExpiresIn int64  `json:"expires_in" doc:"Seconds until the token expires"`
}

// TokenOutput wraps the token response for Huma.
type TokenOutput struct {
	Body TokenResponse
}

// PatchUserRequest is the request body for partial self-updates.
type PatchUserRequest struct {
	_        struct{} `json:"-" additionalProperties:"true"`
	Email    *string  `json:"email,omitempty" format:"email" maxLength:"255" doc:"Email address"`
	Name     *string  `json:"name,omitempty" minLength:"1" maxLength:"255" doc:"Display name"`
	Password *string  `json:"password,omitempty" minLength:"5" maxLength:"1024" doc:"New password"`
}

// PatchUserInput wraps the partial update for Huma.
type PatchUserInput struct {
	Body PatchUserRequest
}

// PutUserInput wraps the full update for Huma. Every field is required.
type PutUserInput struct {
	Body RegisterRequest
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*UserOutput, error) {
	user, err := s.services.User.Register(ctx, service.RegisterRequest{
		Email:    input.Body.Email,
		Name:     input.Body.Name,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

func (s *Server) handleObtainToken(ctx context.Context, input *TokenInput) (*TokenOutput, error) {
	token, err := s.services.User.IssueToken(ctx, service.TokenRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &TokenOutput{Body: TokenResponse{Token: token.Token, ExpiresIn: token.ExpiresIn}}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	return &UserOutput{Body: toUserResponse(currentActor(ctx))}, nil
}

func (s *Server) handlePatchCurrentUser(ctx context.Context, input *PatchUserInput) (*UserOutput, error) {
	return s.updateCurrentUser(ctx, service.UpdateMeRequest{
		Email:    input.Body.Email,
		Name:     input.Body.Name,
		Password: input.Body.Password,
	})
}

func (s *Server) handlePutCurrentUser(ctx context.Context, input *PutUserInput) (*UserOutput, error) {
	return s.updateCurrentUser(ctx, service.UpdateMeRequest{
		Email:    &input.Body.Email,
		Name:     &input.Body.Name,
		Password: &input.Body.Password,
	})
}

func (s *Server) updateCurrentUser(ctx context.Context, req service.UpdateMeRequest) (*UserOutput, error) {
	user, err := s.services.User.UpdateMe(ctx, currentActor(ctx), req)
	if err != nil {
		return nil, mapError(err)
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsStaff:   u.IsStaff,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
