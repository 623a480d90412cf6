package censor_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/pawhaven/pawhaven-server/internal/authz"
	"github.com/pawhaven/pawhaven-server/internal/censor"
	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*store.Store
	calls atomic.Int32
}

func (c *countingStore) Count(ctx context.Context, t domain.EntityType, f store.Filter) (int64, error) {
	c.calls.Add(1)
	return c.Store.Count(ctx, t, f)
}

var (
	anonymous = authz.Principal{}
	admin     = authz.Principal{UserID: "usr-admin", Roles: []domain.Role{domain.RoleAdmin}}
	alice     = authz.Principal{UserID: "usr-alice", Roles: []domain.Role{domain.RoleUser}}
	bob       = authz.Principal{UserID: "usr-bob", Roles: []domain.Role{domain.RoleUser}}
	shelter   = authz.Principal{UserID: "usr-shl", ShelterID: "shl-1", Roles: []domain.Role{domain.RoleShelter}}
)

func setup(t *testing.T) (*censor.Censor, *authz.Resolver, *countingStore) {
	t.Helper()
	st, err := store.Open(store.Options{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	require.NoError(t, st.Files.Put(ctx, "fil-1", &domain.File{Base: domain.Base{ID: "fil-1"}, OwnerID: "usr-alice"}))
	require.NoError(t, st.Users.Put(ctx, "usr-alice", &domain.User{Base: domain.Base{ID: "usr-alice"}, Email: "alice@example.com"}))
	require.NoError(t, st.Reports.Put(ctx, "rpt-1", &domain.Report{Base: domain.Base{ID: "rpt-1"}, ReporterID: "usr-alice", ReportedID: "usr-bob"}))

	counter := &countingStore{Store: st}
	r := authz.NewResolver(authz.DefaultPolicy(), counter, authz.Options{})
	return censor.New(censor.DefaultPolicies(), nil, nil), r, counter
}

func decide(t *testing.T, c *censor.Censor, r *authz.Resolver, p authz.Principal, typ domain.EntityType, base store.Filter, fields []string) censor.Decision {
	t.Helper()
	ctx := context.Background()
	ac, err := r.Context(ctx, p, typ, base, authz.FlagAll)
	require.NoError(t, err)
	d, err := c.Decide(ctx, fields, ac)
	require.NoError(t, err)
	return d
}

func TestCensor_OutputIsSubsetOfInput(t *testing.T) {
	c, r, _ := setup(t)
	inputs := [][]string{
		nil,
		{"id"},
		{"id", "email", "phone", "shelter.user.email", "bogus"},
		{"*"},
		{"name", "name", "profilePhoto.sourceUrl"},
	}
	callers := []authz.Principal{anonymous, admin, alice, bob, shelter}

	for _, fields := range inputs {
		for _, p := range callers {
			for _, typ := range domain.EntityTypes() {
				d := decide(t, c, r, p, typ, store.All(), fields)
				assert.Subset(t, fields, d.Fields)
				assert.LessOrEqual(t, len(d.Fields), len(fields))
			}
		}
	}
}

func TestCensor_FileWithoutAccessIsEmpty(t *testing.T) {
	c, r, _ := setup(t)

	d := decide(t, c, r, anonymous, domain.TypeFile, store.In("id", "fil-1"), []string{"id"})
	assert.True(t, d.Empty())

	d = decide(t, c, r, bob, domain.TypeFile, store.In("id", "fil-1"), []string{"id"})
	assert.Equal(t, []string{"id"}, d.Fields, "files.view opens basic fields to signed-in users")

	d = decide(t, c, r, bob, domain.TypeFile, store.In("id", "fil-1"), []string{"ownerId", "size"})
	assert.True(t, d.Empty())
}

func TestCensor_OwnedFieldsCarryRowCondition(t *testing.T) {
	c, r, _ := setup(t)

	d := decide(t, c, r, alice, domain.TypeFile, store.In("id", "fil-1", "fil-2"), []string{"id", "ownerId"})
	assert.Equal(t, []string{"id", "ownerId"}, d.Fields)
	assert.Equal(t, authz.GrantPermission, d.Grants["id"])
	assert.Equal(t, authz.GrantOwnership, d.Grants["ownerId"])
	assert.Equal(t, map[string]store.Filter{"ownerId": store.Eq("ownerId", "usr-alice")}, d.Conditions)
	assert.Equal(t, store.All(), d.Condition("id"))
	assert.Equal(t, []string{"ownerId"}, d.ConditionFields())

	assert.Empty(t, d.Hidden(map[string]any{"id": "fil-1", "ownerId": "usr-alice"}))
	assert.Equal(t, []string{"ownerId"}, d.Hidden(map[string]any{"id": "fil-2", "ownerId": "usr-bob"}))
}

func TestCensor_UserTiers(t *testing.T) {
	c, r, _ := setup(t)
	fields := []string{"id", "name", "email", "phone", "location", "profilePhoto.sourceUrl"}

	tests := []struct {
		name   string
		caller authz.Principal
		want   []string
	}{
		{"anonymous sees public fields", anonymous, []string{"id", "name", "profilePhoto.sourceUrl"}},
		{"shelter sees contact details", shelter, []string{"id", "name", "email", "phone", "profilePhoto.sourceUrl"}},
		{"admin sees everything", admin, fields},
		{"owner sees everything", alice, fields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decide(t, c, r, tt.caller, domain.TypeUser, store.In("id", "usr-alice"), fields)
			assert.Equal(t, tt.want, d.Fields)
		})
	}
}

func TestCensor_ReportHidesReporterFromReportedParty(t *testing.T) {
	c, r, _ := setup(t)
	fields := []string{"id", "reason", "reporterId", "reporter.name"}

	d := decide(t, c, r, bob, domain.TypeReport, store.All(), fields)
	assert.Equal(t, []string{"id", "reason"}, d.Fields)
	bobs := store.Or(store.Eq("reporterId", "usr-bob"), store.Eq("reportedId", "usr-bob"))
	assert.Equal(t, map[string]store.Filter{"id": bobs, "reason": bobs}, d.Conditions)

	d = decide(t, c, r, alice, domain.TypeReport, store.All(), fields)
	assert.Equal(t, fields, d.Fields)
	assert.Equal(t, authz.GrantAffiliation, d.Grants["id"])
	assert.Equal(t, authz.GrantOwnership, d.Grants["reporterId"])
	assert.Equal(t, store.Eq("reporterId", "usr-alice"), d.Condition("reporterId"))
	assert.Equal(t, store.Eq("reporterId", "usr-alice"), d.Condition("reporter.name"))
}

func TestCensor_PublicFieldsNeedNoQueries(t *testing.T) {
	c, r, counter := setup(t)

	d := decide(t, c, r, alice, domain.TypeAnimal, store.All(), []string{"*", "shelter.user.email"})
	assert.Equal(t, []string{"*", "shelter.user.email"}, d.Fields)
	assert.Empty(t, d.Conditions)
	assert.Zero(t, counter.calls.Load())
}

func TestCensor_ReadableMatchesDecide(t *testing.T) {
	c, r, _ := setup(t)
	ctx := context.Background()

	ac, err := r.Context(ctx, anonymous, domain.TypeUser, store.All(), authz.FlagAll)
	require.NoError(t, err)
	d, err := c.Readable(ctx, []string{"name", "email", "location"}, ac)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, d.Fields)
}

func TestCensor_UnknownEntityExposesNothing(t *testing.T) {
	c := censor.New(map[domain.EntityType]censor.FieldPolicy{}, nil, nil)
	_, r, _ := setup(t)

	d := decide(t, c, r, admin, domain.TypeAnimal, store.All(), []string{"id"})
	assert.True(t, d.Empty())
}
