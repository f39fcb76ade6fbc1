package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/auth"
	"github.com/shelfkeep/shelfkeep-server/internal/config"
	"github.com/shelfkeep/shelfkeep-server/internal/logger"
)

// AuthKey wraps the authentication key bytes.
type AuthKey []byte

// ProvideAuthKey loads or generates the authentication key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Storage.AuthKeyPath())
	if err != nil {
		return nil, err
	}

	cfg.Auth.AccessTokenKey = key

	log.Info("Authentication key loaded",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Auth.AccessTokenDuration)
}

// ProvideHasher provides the argon2id password hasher.
func ProvideHasher(_ do.Injector) (*auth.Hasher, error) {
	return auth.NewHasher(auth.DefaultHashParams), nil
}
