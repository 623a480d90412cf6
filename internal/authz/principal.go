// Package authz decides what a caller may do: blanket permissions from
// roles, ownership of a resource, and affiliation with a resource. Checks
// that need the store produce filter fragments and prove access by
// counting matches.
package authz

import (
	"slices"

	"github.com/pawhaven/pawhaven-server/internal/domain"
)

// Principal is the caller's identity. The zero value is anonymous.
type Principal struct {
	UserID    string
	ShelterID string
	Roles     []domain.Role
}

// Authenticated reports whether the principal carries a user id.
func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

// HasRole reports whether the principal holds any of roles.
func (p Principal) HasRole(roles ...domain.Role) bool {
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

// Flags select which access paths a check may use.
type Flags uint8

const (
	FlagPermission Flags = 1 << iota
	FlagAffiliation
	FlagOwnership

	FlagAll = FlagPermission | FlagAffiliation | FlagOwnership
)

// Has reports whether every bit of x is set.
func (f Flags) Has(x Flags) bool {
	return f&x == x
}

// Grant records why a field was allowed.
type Grant uint8

const (
	GrantNone Grant = iota
	GrantPublic
	GrantPermission
	GrantAffiliation
	GrantOwnership
)

func (g Grant) String() string {
	switch g {
	case GrantPublic:
		return "public"
	case GrantPermission:
		return "permission"
	case GrantAffiliation:
		return "affiliation"
	case GrantOwnership:
		return "ownership"
	default:
		return "none"
	}
}
