package auth

import (
	"time"

	"github.com/pawhaven/pawhaven-server/internal/authz"
	"github.com/pawhaven/pawhaven-server/internal/domain"
)

// AccessClaims are the claims carried by an access token. v4.local tokens
// are encrypted, so clients cannot read them.
type AccessClaims struct {
	UserID    string        `json:"user_id"`
	ShelterID string        `json:"shelter_id,omitempty"`
	Roles     []domain.Role `json:"roles"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// Principal returns the caller identity the claims describe.
func (c *AccessClaims) Principal() authz.Principal {
	return authz.Principal{UserID: c.UserID, ShelterID: c.ShelterID, Roles: c.Roles}
}
