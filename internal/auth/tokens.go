package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/id"
)

const (
	tokenIssuer   = "shelfkeep-server"
	tokenAudience = "shelfkeep-client"
)

// ErrInvalidToken is returned for tokens that fail decryption or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// AccessClaims are the decrypted contents of a v4.local access token.
type AccessClaims struct {
	UserID  string    `json:"user_id"`
	Email   string    `json:"email"`
	Subject string    `json:"sub"`
	TokenID string    `json:"jti"`
	Expires time.Time `json:"exp"`
	Issued  time.Time `json:"iat"`
}

// TokenService issues and verifies PASETO v4.local access tokens.
type TokenService struct {
	key      paseto.V4SymmetricKey
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService builds a TokenService from a 32-byte key.
func NewTokenService(key []byte, lifetime time.Duration) (*TokenService, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("PASETO v4 key must be %d bytes, got %d", KeySize, len(key))
	}
	if lifetime <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}

	symmetric, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO symmetric key: %w", err)
	}

	return &TokenService{key: symmetric, lifetime: lifetime, now: time.Now}, nil
}

// Lifetime returns how long issued tokens stay valid.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// Issue creates an encrypted access token for user.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	now := s.now()

	tokenID, err := id.Generate(id.PrefixToken)
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(user.ID)
	token.SetJti(tokenID)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.lifetime))
	if err := token.Set("user_id", user.ID); err != nil {
		return "", fmt.Errorf("set user_id claim: %w", err)
	}
	if err := token.Set("email", user.Email); err != nil {
		return "", fmt.Errorf("set email claim: %w", err)
	}

	return token.V4Encrypt(s.key, nil), nil
}

// Verify decrypts tokenString and checks issuer, audience and validity window.
func (s *TokenService) Verify(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" || claims.UserID != claims.Subject {
		return nil, fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}

	return &claims, nil
}
