package providers

import (
	"github.com/samber/do/v2"

	"github.com/pawhaven/pawhaven-server/internal/auth"
	"github.com/pawhaven/pawhaven-server/internal/config"
	"github.com/pawhaven/pawhaven-server/internal/logger"
)

// AuthKey wraps the authentication key bytes.
type AuthKey []byte

// ProvideAuthKey loads or generates the authentication key. An in-memory
// deployment without a data path gets a key that lives as long as the process.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		key []byte
		err error
	)
	if cfg.Storage.Path == "" {
		key, err = auth.GenerateKey()
		log.Warn("No data path configured, access tokens will not survive a restart")
	} else {
		key, err = auth.LoadOrGenerateKey(cfg.Storage.Path)
	}
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
