package authz

import (
	"context"
	"sync"

	"github.com/pawhaven/pawhaven-server/internal/domain"
)

// Context is the authorization state of one request against one entity
// type. Ownership and affiliation are proven lazily and at most once.
type Context struct {
	Principal  Principal
	Type       domain.EntityType
	Flags      Flags
	Owned      *OwnedResource
	Affiliated *AffiliatedResource

	resolver *Resolver

	mu         sync.Mutex
	owner      *bool
	affiliated *bool
}

// Permitted reports whether a blanket permission path is open.
func (c *Context) Permitted(perms ...Permission) bool {
	return c.Flags.Has(FlagPermission) && c.resolver.Authorize(c.Principal, perms...)
}

// IsOwner reports whether the caller owns at least one row of the lookup.
func (c *Context) IsOwner(ctx context.Context) (bool, error) {
	if !c.Flags.Has(FlagOwnership) {
		return false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner == nil {
		ok, err := c.resolver.AuthorizeOwned(ctx, c.Principal, c.Owned)
		if err != nil {
			return false, err
		}
		c.owner = &ok
	}
	return *c.owner, nil
}

// IsAffiliated reports whether the caller is affiliated with at least one
// row of the lookup.
func (c *Context) IsAffiliated(ctx context.Context) (bool, error) {
	if !c.Flags.Has(FlagAffiliation) {
		return false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.affiliated == nil {
		ok, err := c.resolver.AuthorizeAffiliated(ctx, c.Principal, c.Affiliated)
		if err != nil {
			return false, err
		}
		c.affiliated = &ok
	}
	return *c.affiliated, nil
}
