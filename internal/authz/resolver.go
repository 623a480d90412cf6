package authz

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pawhaven/pawhaven-server/internal/cache"
	"github.com/pawhaven/pawhaven-server/internal/domain"
	domainerrors "github.com/pawhaven/pawhaven-server/internal/errors"
	"github.com/pawhaven/pawhaven-server/internal/metrics"
	"github.com/pawhaven/pawhaven-server/internal/store"
)

// Counter counts stored entities matching a filter.
type Counter interface {
	Count(ctx context.Context, t domain.EntityType, f store.Filter) (int64, error)
}

// OwnedResource proves ownership: Filter is the lookup filter restricted to
// rows whose owner field holds the caller's id.
type OwnedResource struct {
	Type     domain.EntityType
	Fragment store.Filter
	Filter   store.Filter
}

// AffiliatedResource proves affiliation the same way, and additionally
// requires the caller to hold one of Roles when Roles is set.
type AffiliatedResource struct {
	Type     domain.EntityType
	Fragment store.Filter
	Filter   store.Filter
	Roles    []domain.Role
}

// Resolver answers authorization questions for one process. It holds no
// per-request state.
type Resolver struct {
	policy  Policy
	counter Counter
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Options configures a Resolver. Cache and Metrics are optional.
type Options struct {
	Cache       cache.Cache
	FragmentTTL time.Duration
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// NewResolver creates a resolver over policy, proving ownership and
// affiliation with counter.
func NewResolver(policy Policy, counter Counter, opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ttl := opts.FragmentTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Resolver{
		policy:  policy,
		counter: counter,
		cache:   opts.Cache,
		ttl:     ttl,
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// Policy returns the resolver's table.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// Authorize reports whether the caller's roles grant any of perms. It never
// touches the store.
func (r *Resolver) Authorize(p Principal, perms ...Permission) bool {
	for _, perm := range perms {
		if p.HasRole(r.policy.Grants[perm]...) {
			return true
		}
	}
	return false
}

// ResolveOwned describes the rows of base the caller owns. It returns nil
// when t has no owner field.
func (r *Resolver) ResolveOwned(ctx context.Context, p Principal, t domain.EntityType, base store.Filter) (*OwnedResource, error) {
	if !p.Authenticated() {
		return nil, domainerrors.Unauthenticated("ownership check requires a signed-in caller")
	}
	frag, err := r.fragment(ctx, "owner", t, p, func() store.Filter { return r.ownerFragment(t, p) })
	if err != nil || frag.Op == store.OpNone {
		return nil, err
	}
	return &OwnedResource{Type: t, Fragment: frag, Filter: store.And(base, frag)}, nil
}

// ResolveAffiliated describes the rows of base the caller is affiliated
// with. roles, when given, replaces the role gate. It returns nil when no
// affiliation rule applies to the caller.
func (r *Resolver) ResolveAffiliated(ctx context.Context, p Principal, t domain.EntityType, base store.Filter, roles ...domain.Role) (*AffiliatedResource, error) {
	if !p.Authenticated() {
		return nil, domainerrors.Unauthenticated("affiliation check requires a signed-in caller")
	}
	frag, err := r.fragment(ctx, "affiliation", t, p, func() store.Filter { return r.affiliationFragment(t, p) })
	if err != nil || frag.Op == store.OpNone {
		return nil, err
	}
	return &AffiliatedResource{Type: t, Fragment: frag, Filter: store.And(base, frag), Roles: roles}, nil
}

// AuthorizeOwned reports whether at least one row of res exists.
func (r *Resolver) AuthorizeOwned(ctx context.Context, p Principal, res *OwnedResource) (bool, error) {
	if res == nil || !p.Authenticated() {
		return false, nil
	}
	ok, err := r.exists(ctx, res.Type, res.Filter)
	if err != nil {
		return false, err
	}
	r.metrics.ObserveCheck(string(res.Type), "ownership", ok)
	return ok, nil
}

// AuthorizeAffiliated reports whether the caller passes the role gate and
// at least one row of res exists.
func (r *Resolver) AuthorizeAffiliated(ctx context.Context, p Principal, res *AffiliatedResource) (bool, error) {
	if res == nil || !p.Authenticated() {
		return false, nil
	}
	if len(res.Roles) > 0 && !p.HasRole(res.Roles...) {
		r.metrics.ObserveCheck(string(res.Type), "affiliation", false)
		return false, nil
	}
	ok, err := r.exists(ctx, res.Type, res.Filter)
	if err != nil {
		return false, err
	}
	r.metrics.ObserveCheck(string(res.Type), "affiliation", ok)
	return ok, nil
}

// AuthorizeOrOwned tries perms, then ownership.
func (r *Resolver) AuthorizeOrOwned(ctx context.Context, p Principal, res *OwnedResource, perms ...Permission) (bool, error) {
	return r.AuthorizeOrOwnedOrAffiliated(ctx, p, res, nil, perms...)
}

// AuthorizeOrAffiliated tries perms, then affiliation.
func (r *Resolver) AuthorizeOrAffiliated(ctx context.Context, p Principal, res *AffiliatedResource, perms ...Permission) (bool, error) {
	return r.AuthorizeOrOwnedOrAffiliated(ctx, p, nil, res, perms...)
}

// AuthorizeOrOwnedOrAffiliated tries perms, then affiliation, then
// ownership, stopping at the first success. A caller granted by permission
// causes no store query.
func (r *Resolver) AuthorizeOrOwnedOrAffiliated(ctx context.Context, p Principal, owned *OwnedResource, affiliated *AffiliatedResource, perms ...Permission) (bool, error) {
	if r.Authorize(p, perms...) {
		return true, nil
	}
	if ok, err := r.AuthorizeAffiliated(ctx, p, affiliated); err != nil || ok {
		return ok, err
	}
	return r.AuthorizeOwned(ctx, p, owned)
}

// Context resolves the per-request authorization state for lookups of t
// matching base. Anonymous callers get a context without resources.
func (r *Resolver) Context(ctx context.Context, p Principal, t domain.EntityType, base store.Filter, flags Flags) (*Context, error) {
	c := &Context{Principal: p, Type: t, Flags: flags, resolver: r}
	if !p.Authenticated() {
		return c, nil
	}
	var err error
	if flags.Has(FlagOwnership) {
		if c.Owned, err = r.ResolveOwned(ctx, p, t, base); err != nil {
			return nil, err
		}
	}
	if flags.Has(FlagAffiliation) {
		if c.Affiliated, err = r.ResolveAffiliated(ctx, p, t, base); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (r *Resolver) exists(ctx context.Context, t domain.EntityType, f store.Filter) (bool, error) {
	n, err := r.counter.Count(ctx, t, f)
	if err != nil {
		return false, fmt.Errorf("count %s: %w", t, err)
	}
	return n > 0, nil
}

func (r *Resolver) ownerFragment(t domain.EntityType, p Principal) store.Filter {
	fields := r.policy.Owners[t]
	alts := make([]store.Filter, 0, len(fields))
	for _, f := range fields {
		alts = append(alts, store.Eq(f, p.UserID))
	}
	return store.Or(alts...)
}

func (r *Resolver) affiliationFragment(t domain.EntityType, p Principal) store.Filter {
	var alts []store.Filter
	for _, a := range r.policy.Affiliations[t] {
		if len(a.Roles) > 0 && !p.HasRole(a.Roles...) {
			continue
		}
		claim := a.Claim.value(p)
		if claim == "" {
			continue
		}
		for _, f := range a.Fields {
			alts = append(alts, store.Eq(f, claim))
		}
	}
	return store.Or(alts...)
}

// fragment returns the cached fragment for (kind, t, caller), computing and
// storing it on a miss. Cache failures fall back to computing.
func (r *Resolver) fragment(ctx context.Context, kind string, t domain.EntityType, p Principal, compute func() store.Filter) (store.Filter, error) {
	if r.cache == nil {
		return compute(), nil
	}

	key := fmt.Sprintf("authz:%s:%s:%s:%s:%v", kind, t, p.UserID, p.ShelterID, p.Roles)
	var frag store.Filter
	hit, err := cache.GetJSON(ctx, r.cache, key, &frag)
	if err != nil {
		r.logger.Warn("fragment cache read failed", "key", key, "error", err)
	}
	r.metrics.ObserveFragmentCache(hit)
	if hit {
		return frag, nil
	}

	frag = compute()
	if err := cache.SetJSON(ctx, r.cache, key, frag, r.ttl); err != nil {
		r.logger.Warn("fragment cache write failed", "key", key, "error", err)
	}
	return frag, nil
}
