package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	domainerrors "github.com/pawhaven/pawhaven-server/internal/errors"
	"github.com/pawhaven/pawhaven-server/internal/id"
)

const (
	tokenIssuer   = "pawhaven-server"
	tokenAudience = "pawhaven-client"
)

// TokenService issues and verifies PASETO v4.local access tokens.
type TokenService struct {
	key      paseto.V4SymmetricKey
	duration time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, accessDuration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}
	symmetric, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}
	return &TokenService{key: symmetric, duration: accessDuration, now: time.Now}, nil
}

// GenerateAccessToken issues a token for user carrying the user id, the
// managed shelter (if any) and the user's role.
func (s *TokenService) GenerateAccessToken(user *domain.User) (string, error) {
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.ID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.duration))

	tokenID, err := id.Generate("tok")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	//nolint:errcheck // Set only fails for values that cannot be encoded
	_ = token.Set("user_id", user.ID)
	if user.ShelterID != "" {
		//nolint:errcheck // as above
		_ = token.Set("shelter_id", user.ShelterID)
	}
	//nolint:errcheck // as above
	_ = token.Set("roles", []domain.Role{user.Role})

	return token.V4Encrypt(s.key, nil), nil
}

// VerifyAccessToken decrypts a token and returns its claims. Expired tokens
// fail with a TOKEN_EXPIRED error so clients know to refresh.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnauthorized, "invalid access token")
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	now := s.now()
	if now.Before(claims.NotBefore) {
		return nil, domainerrors.Unauthenticated("access token not yet valid")
	}
	if !now.Before(claims.Expiration) {
		return nil, domainerrors.TokenExpired("access token expired")
	}
	if claims.UserID == "" {
		return nil, domainerrors.Unauthenticated("access token has no subject")
	}
	return &claims, nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.duration
}
