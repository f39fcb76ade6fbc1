package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelfkeep/shelfkeep-server/internal/auth"
	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	domainerrors "github.com/shelfkeep/shelfkeep-server/internal/errors"
	"github.com/shelfkeep/shelfkeep-server/internal/id"
	"github.com/shelfkeep/shelfkeep-server/internal/store"
)

const badCredentialsMessage = "unable to authenticate with provided credentials"

// UserService handles registration, token exchange and the caller's own profile.
type UserService struct {
	store  store.Store
	tokens *auth.TokenService
	hasher *auth.Hasher
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store store.Store, tokens *auth.TokenService, hasher *auth.Hasher, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
		hasher: hasher,
		logger: orDiscard(logger),
	}
}

// RegisterRequest contains the data for a new account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=5,max=1024"`
	Name     string `json:"name" validate:"required,max=255"`
}

// TokenRequest contains the credentials exchanged for an access token.
type TokenRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateMeRequest changes the caller's own account. Nil fields are left alone.
type UpdateMeRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitnil,email,max=255"`
	Password *string `json:"password,omitempty" validate:"omitnil,min=5,max=1024"`
	Name     *string `json:"name,omitempty" validate:"omitnil,min=1,max=255"`
}

// TokenResponse is returned by IssueToken.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// Register creates an active, non-staff account.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	return s.createUser(ctx, req, false)
}

// CreateSuperuser creates an active account with staff and superuser flags set.
func (s *UserService) CreateSuperuser(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	return s.createUser(ctx, req, true)
}

func (s *UserService) createUser(ctx context.Context, req RegisterRequest, superuser bool) (*domain.User, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Entity:       domain.Entity{ID: userID},
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
				"email": "user with this email already exists",
			})
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.Bool("superuser", superuser),
	)

	return user, nil
}

// IssueToken exchanges an email and password for an access token. Unknown
// emails, wrong passwords and inactive accounts are indistinguishable.
func (s *UserService) IssueToken(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials(badCredentialsMessage)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, req.Password) || !user.CanAuthenticate() {
		s.logger.Debug("token exchange rejected", slog.String("user_id", user.ID))
		return nil, domainerrors.InvalidCredentials(badCredentialsMessage)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &TokenResponse{
		Token:     token,
		ExpiresIn: int64(s.tokens.Lifetime().Seconds()),
	}, nil
}

// Authenticate resolves a bearer token to its active user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domainerrors.Unauthorized("authentication credentials were not provided")
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid token").WithCause(err)
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid token")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.CanAuthenticate() {
		return nil, domainerrors.Unauthorized("user inactive or deleted")
	}

	return user, nil
}

// GetMe returns the caller's account as currently stored.
func (s *UserService) GetMe(ctx context.Context, actor *domain.User) (*domain.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("user inactive or deleted")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateMe applies a partial update to the caller's account. A new password
// is re-hashed; flags like is_staff cannot be changed here.
func (s *UserService) UpdateMe(ctx context.Context, actor *domain.User, req UpdateMeRequest) (*domain.User, error) {
	if req.Email != nil {
		req.Email = ptrTo(domain.NormalizeEmail(*req.Email))
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.GetMe(ctx, actor)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Password != nil {
		passwordHash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = passwordHash
	}
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
				"email": "user with this email already exists",
			})
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user updated", slog.String("user_id", user.ID))
	return user, nil
}

func ptrTo[T any](v T) *T { return &v }
