package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven-server/internal/authz"
	"github.com/pawhaven/pawhaven-server/internal/builder"
	"github.com/pawhaven/pawhaven-server/internal/cache"
	"github.com/pawhaven/pawhaven-server/internal/censor"
	"github.com/pawhaven/pawhaven-server/internal/domain"
	domainerrors "github.com/pawhaven/pawhaven-server/internal/errors"
	"github.com/pawhaven/pawhaven-server/internal/query"
	"github.com/pawhaven/pawhaven-server/internal/schema"
	"github.com/pawhaven/pawhaven-server/internal/store"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(store.Options{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	for _, u := range []*domain.User{
		{Base: domain.Base{ID: "usr-1"}, Name: "Alice", Email: "alice@example.com", Role: domain.RoleUser},
		{Base: domain.Base{ID: "usr-2"}, Name: "Sam", Email: "sam@example.com", Role: domain.RoleShelter, ShelterID: "shl-1"},
	} {
		require.NoError(t, st.Users.Put(ctx, u.ID, u))
	}
	require.NoError(t, st.Shelters.Put(ctx, "shl-1", &domain.Shelter{Base: domain.Base{ID: "shl-1"}, ShelterName: "Happy Paws", UserID: "usr-2"}))
	for _, a := range []*domain.Animal{
		{Base: domain.Base{ID: "ani-1"}, Name: "Biscuit", Age: 3, Status: domain.AnimalStatusAvailable, ShelterID: "shl-1"},
		{Base: domain.Base{ID: "ani-2"}, Name: "Mochi", Age: 1, Status: domain.AnimalStatusAdopted, ShelterID: "shl-1"},
	} {
		require.NoError(t, st.Animals.Put(ctx, a.ID, a))
	}
	return st
}

func setupQueryService(t *testing.T) *QueryService {
	t.Helper()
	st := setupStore(t)
	schemas := schema.Default()
	queries := query.NewRegistry(st, schemas, nil, query.DefaultOptions())

	i := do.New()
	do.ProvideValue(i, &builder.Deps{
		Schemas:  schemas,
		Queries:  queries,
		Resolver: authz.NewResolver(authz.DefaultPolicy(), st, authz.Options{}),
		Censor:   censor.New(censor.DefaultPolicies(), nil, nil),
		Logger:   slog.New(slog.DiscardHandler),
	})
	builder.Register(i)

	return NewQueryService(do.MustInvoke[*builder.Factory](i), queries, slog.New(slog.DiscardHandler))
}

func TestQueryService_Animals(t *testing.T) {
	s := setupQueryService(t)

	out, err := s.Animals(context.Background(), authz.Principal{}, query.Lookup{
		Fields:   []string{"name", "shelter.shelterName"},
		Criteria: query.AnimalCriteria{Statuses: []domain.AnimalStatus{domain.AnimalStatusAvailable}},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Biscuit", *out[0].Name)
	assert.Equal(t, "Happy Paws", *out[0].Shelter.ShelterName)
}

func TestQueryService_RejectsInvalidLookup(t *testing.T) {
	s := setupQueryService(t)

	_, err := s.Animals(context.Background(), authz.Principal{}, query.Lookup{Offset: -1, Fields: []string{"name"}})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = s.Animals(context.Background(), authz.Principal{}, query.Lookup{
		Criteria: query.AnimalCriteria{Statuses: []domain.AnimalStatus{"sold"}},
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestQueryService_Outcomes(t *testing.T) {
	s := setupQueryService(t)
	ctx := context.Background()
	alice := authz.Principal{UserID: "usr-1", Roles: []domain.Role{domain.RoleUser}}

	_, err := s.Users(ctx, authz.Principal{}, query.Lookup{IDs: []string{"usr-9"}})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = s.Notifications(ctx, alice, query.Lookup{})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = s.Notifications(ctx, authz.Principal{}, query.Lookup{})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	users, err := s.Users(ctx, alice, query.Lookup{IDs: []string{"usr-1", "usr-2"}, Fields: []string{"name", "email"}})
	require.NoError(t, err)
	require.Len(t, users, 1, "email is readable only on the caller's own row")
	assert.Equal(t, "alice@example.com", *users[0].Email)

	users, err = s.Users(ctx, alice, query.Lookup{IDs: []string{"usr-1", "usr-2"}, Fields: []string{"name"}})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

type countingUsers struct {
	inner UserCounter
	calls int
}

func (c *countingUsers) Count(ctx context.Context, f store.Filter) (int64, error) {
	c.calls++
	return c.inner.Count(ctx, f)
}

func TestAvailabilityService_EmailAvailable(t *testing.T) {
	st := setupStore(t)
	mem, err := cache.NewMemory(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	users := &countingUsers{inner: st.Users}
	s := NewAvailabilityService(users, mem, time.Minute, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	available, err := s.EmailAvailable(ctx, "  Alice@Example.com ")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = s.EmailAvailable(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, available)
	assert.Equal(t, 1, users.calls, "second answer comes from the cache")

	available, err = s.EmailAvailable(ctx, "new@example.com")
	require.NoError(t, err)
	assert.True(t, available)

	require.NoError(t, st.Users.Put(ctx, "usr-3", &domain.User{Base: domain.Base{ID: "usr-3"}, Email: "new@example.com", Role: domain.RoleUser}))
	require.NoError(t, s.Forget(ctx, "New@example.com"))

	available, err = s.EmailAvailable(ctx, "new@example.com")
	require.NoError(t, err)
	assert.False(t, available)
	assert.Equal(t, 3, users.calls)
}

func TestAvailabilityService_RejectsMalformedEmail(t *testing.T) {
	s := NewAvailabilityService(setupStore(t).Users, nil, time.Minute, slog.New(slog.DiscardHandler))

	_, err := s.EmailAvailable(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
