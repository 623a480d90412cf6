package builder_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven-server/internal/authz"
	"github.com/pawhaven/pawhaven-server/internal/builder"
	"github.com/pawhaven/pawhaven-server/internal/censor"
	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/dto"
	domainerrors "github.com/pawhaven/pawhaven-server/internal/errors"
	"github.com/pawhaven/pawhaven-server/internal/query"
	"github.com/pawhaven/pawhaven-server/internal/schema"
	"github.com/pawhaven/pawhaven-server/internal/store"
)

// findCounter counts find queries per collection.
type findCounter struct {
	mu    sync.Mutex
	finds map[string]int
}

func (c *findCounter) ObserveQuery(collection, op string, _ time.Duration) {
	if op != "find" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finds[collection]++
}

func (c *findCounter) get(collection string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finds[collection]
}

func (c *findCounter) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finds = map[string]int{}
}

type harness struct {
	st      *store.Store
	factory *builder.Factory
	queries *query.Registry
	finds   *findCounter
}

var (
	anonymous = authz.Principal{}
	alice     = authz.Principal{UserID: "usr-1", Roles: []domain.Role{domain.RoleUser}}
	sam       = authz.Principal{UserID: "usr-2", ShelterID: "shl-1", Roles: []domain.Role{domain.RoleShelter}}
)

func newHarness(t *testing.T) *harness {
	t.Helper()
	st, err := store.Open(store.Options{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	seed(t, st)

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

	finds := &findCounter{finds: map[string]int{}}
	st.SetObserver(finds)

	return &harness{
		st:      st,
		factory: do.MustInvoke[*builder.Factory](i),
		queries: queries,
		finds:   finds,
	}
}

func seed(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	base := func(id string) domain.Base { return domain.Base{ID: id, CreatedAt: created, UpdatedAt: created} }

	require.NoError(t, st.AnimalTypes.Put(ctx, "typ-dog", &domain.AnimalType{Base: base("typ-dog"), Name: "Dog"}))
	require.NoError(t, st.Breeds.Put(ctx, "brd-beagle", &domain.Breed{Base: base("brd-beagle"), Name: "Beagle", AnimalTypeID: "typ-dog"}))
	require.NoError(t, st.Files.Put(ctx, "fil-1", &domain.File{Base: base("fil-1"), Filename: "biscuit.jpg", FileType: domain.FileTypeImage, SourceURL: "https://cdn.example/biscuit.jpg", OwnerID: "usr-2"}))

	users := []domain.User{
		{Base: base("usr-1"), Name: "Alice", Email: "alice@example.com", Role: domain.RoleUser},
		{Base: base("usr-2"), Name: "Sam", Email: "sam@example.com", Role: domain.RoleShelter, ShelterID: "shl-1"},
		{Base: base("usr-3"), Name: "Bea", Email: "bea@example.com", Role: domain.RoleShelter, ShelterID: "shl-2"},
	}
	for i := range users {
		require.NoError(t, st.Users.Put(ctx, users[i].ID, &users[i]))
	}

	require.NoError(t, st.Shelters.Put(ctx, "shl-1", &domain.Shelter{Base: base("shl-1"), ShelterName: "Happy Paws", UserID: "usr-2"}))
	require.NoError(t, st.Shelters.Put(ctx, "shl-2", &domain.Shelter{Base: base("shl-2"), ShelterName: "Second Chance", UserID: "usr-3"}))

	animals := []domain.Animal{
		{Base: base("ani-1"), Name: "Biscuit", Age: 3, Status: domain.AnimalStatusAvailable, ShelterID: "shl-1", BreedID: "brd-beagle", AnimalTypeID: "typ-dog", PhotoIDs: []string{"fil-1"}},
		{Base: base("ani-2"), Name: "Mochi", Age: 1, Status: domain.AnimalStatusAvailable, ShelterID: "shl-1"},
		{Base: base("ani-3"), Name: "Rex", Age: 7, Status: domain.AnimalStatusPending, ShelterID: "shl-2", BreedID: "brd-gone"},
		{Base: base("ani-4"), Name: "Ziggy", Age: 2, Status: domain.AnimalStatusAvailable, ShelterID: "shl-2"},
		{Base: base("ani-5"), Name: "Pip", Age: 5, Status: domain.AnimalStatusAdopted, ShelterID: "shl-1"},
	}
	for i := range animals {
		require.NoError(t, st.Animals.Put(ctx, animals[i].ID, &animals[i]))
	}

	require.NoError(t, st.Conversations.Put(ctx, "cnv-1", &domain.Conversation{Base: base("cnv-1"), UserIDs: []string{"usr-1", "usr-2"}, LastMessageID: "msg-1"}))
	require.NoError(t, st.Messages.Put(ctx, "msg-1", &domain.Message{Base: base("msg-1"), ConversationID: "cnv-1", SenderID: "usr-1", RecipientID: "usr-2", Content: "Is Biscuit still available?"}))
	require.NoError(t, st.Reports.Put(ctx, "rpt-1", &domain.Report{Base: base("rpt-1"), ReporterID: "usr-1", ReportedID: "usr-3", Type: domain.ReportSpam, Status: domain.ReportOpen}))
}

func (h *harness) animals(t *testing.T) []*domain.Animal {
	t.Helper()
	animals, err := h.st.Animals.Find(context.Background(), store.All(), store.FindOptions{})
	require.NoError(t, err)
	return animals
}

func animalBuilder(t *testing.T, h *harness, p authz.Principal) *builder.AnimalBuilder {
	t.Helper()
	b, err := builder.Resolve[*builder.AnimalBuilder](h.factory, builder.Scope{Principal: p, Flags: authz.FlagAll})
	require.NoError(t, err)
	return b
}

func TestBuild_OneQueryPerRelatedType(t *testing.T) {
	h := newHarness(t)
	animals := h.animals(t)
	h.finds.reset()

	out, err := animalBuilder(t, h, anonymous).Build(context.Background(), animals, []string{"name", "shelter.shelterName", "shelter.user.name"})
	require.NoError(t, err)
	require.Len(t, out, len(animals))

	assert.Equal(t, 1, h.finds.get("shelters"))
	assert.Equal(t, 1, h.finds.get("users"))
	for i, a := range animals {
		require.NotNil(t, out[i].Shelter, a.ID)
		assert.NotNil(t, out[i].Shelter.ShelterName)
		assert.Nil(t, out[i].Shelter.ID, "unrequested nested field")
		require.NotNil(t, out[i].Shelter.User)
	}
	assert.Equal(t, "Happy Paws", *out[0].Shelter.ShelterName)
	assert.Equal(t, "Sam", *out[0].Shelter.User.Name)
	assert.Equal(t, "Bea", *out[2].Shelter.User.Name)
}

func TestBuild_RelationIDRoundTrip(t *testing.T) {
	h := newHarness(t)
	animals := h.animals(t)

	out, err := animalBuilder(t, h, anonymous).Build(context.Background(), animals[:1], []string{"breed.id", "animalType.id"})
	require.NoError(t, err)
	require.NotNil(t, out[0].Breed)
	assert.Equal(t, animals[0].BreedID, *out[0].Breed.ID)
	assert.Equal(t, animals[0].AnimalTypeID, *out[0].AnimalType.ID)
	assert.Nil(t, out[0].Name)
}

func TestBuild_Idempotent(t *testing.T) {
	h := newHarness(t)
	animals := h.animals(t)
	fields := []string{"*", "shelter", "breed.animalType.name", "photos.sourceUrl"}

	b := animalBuilder(t, h, sam)
	first, err := b.Build(context.Background(), animals, fields)
	require.NoError(t, err)
	second, err := b.Build(context.Background(), animals, fields)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuild_MissingRelatedRecordIsAbsent(t *testing.T) {
	h := newHarness(t)
	animals := h.animals(t)

	out, err := animalBuilder(t, h, anonymous).Build(context.Background(), animals, []string{"name", "breed.name"})
	require.NoError(t, err)
	assert.Equal(t, "Rex", *out[2].Name)
	assert.Nil(t, out[2].Breed)
	require.NotNil(t, out[0].Breed)
	assert.Equal(t, "Beagle", *out[0].Breed.Name)
}

func TestBuild_WildcardIsNativeOnly(t *testing.T) {
	h := newHarness(t)
	animals := h.animals(t)

	out, err := animalBuilder(t, h, anonymous).Build(context.Background(), animals[:1], []string{"*"})
	require.NoError(t, err)

	data, err := json.Marshal(out[0])
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	keys := make([]string, 0, len(got))
	for k := range got {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, schema.Default().MustEntity(domain.TypeAnimal).Native, keys)
	assert.Zero(t, h.finds.get("shelters"))
}

func TestBuild_UnauthorizedRelationIsAbsent(t *testing.T) {
	h := newHarness(t)
	animals := h.animals(t)

	out, err := animalBuilder(t, h, anonymous).Build(context.Background(), animals[:1], []string{"name", "photos.sourceUrl"})
	require.NoError(t, err)
	assert.Equal(t, "Biscuit", *out[0].Name)
	assert.Nil(t, out[0].Photos)

	out, err = animalBuilder(t, h, alice).Build(context.Background(), animals[:1], []string{"photos.sourceUrl"})
	require.NoError(t, err)
	require.Len(t, out[0].Photos, 1)
	assert.Equal(t, "https://cdn.example/biscuit.jpg", *out[0].Photos[0].SourceURL)
}

func TestBuild_NestedEntitiesAreCensoredAtTheirOwnLevel(t *testing.T) {
	h := newHarness(t)
	animals := h.animals(t)

	out, err := animalBuilder(t, h, anonymous).Build(context.Background(), animals[:1], []string{"shelter.user.name", "shelter.user.email"})
	require.NoError(t, err)
	user := out[0].Shelter.User
	require.NotNil(t, user)
	assert.Equal(t, "Sam", *user.Name)
	assert.Nil(t, user.Email)

	out, err = animalBuilder(t, h, sam).Build(context.Background(), animals[:1], []string{"shelter.user.email"})
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", *out[0].Shelter.User.Email)
}

func TestBuild_ReverseRelation(t *testing.T) {
	h := newHarness(t)
	shelters, err := h.st.Shelters.Find(context.Background(), store.All(), store.FindOptions{})
	require.NoError(t, err)

	b, err := builder.Resolve[*builder.ShelterBuilder](h.factory, builder.Scope{Flags: authz.FlagAll})
	require.NoError(t, err)
	h.finds.reset()

	out, err := b.Build(context.Background(), shelters, []string{"shelterName", "animals.name"})
	require.NoError(t, err)
	assert.Equal(t, 1, h.finds.get("animals"))

	names := func(animals []*dto.Animal) []string {
		var out []string
		for _, a := range animals {
			assert.Nil(t, a.ShelterID)
			out = append(out, *a.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Biscuit", "Mochi", "Pip"}, names(out[0].Animals))
	assert.Equal(t, []string{"Rex", "Ziggy"}, names(out[1].Animals))
}

func messageBuilder(t *testing.T, h *harness, p authz.Principal) *builder.MessageBuilder {
	t.Helper()
	b, err := builder.Resolve[*builder.MessageBuilder](h.factory, builder.Scope{Principal: p, Flags: authz.FlagAll})
	require.NoError(t, err)
	return b
}

func TestBuild_SenderAndRecipientAreNotSwapped(t *testing.T) {
	h := newHarness(t)
	messages, err := h.st.Messages.Find(context.Background(), store.All(), store.FindOptions{})
	require.NoError(t, err)
	h.finds.reset()

	out, err := messageBuilder(t, h, alice).Build(context.Background(), messages, []string{"sender.id", "recipient.id"})
	require.NoError(t, err)
	require.NotNil(t, out[0].Sender)
	require.NotNil(t, out[0].Recipient)
	assert.Equal(t, "usr-1", *out[0].Sender.ID)
	assert.Equal(t, "usr-2", *out[0].Recipient.ID)
	assert.Equal(t, 1, h.finds.get("users"))
}

func TestBuild_DualRelationsCensoredPerSide(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	messages, err := h.st.Messages.Find(ctx, store.All(), store.FindOptions{})
	require.NoError(t, err)
	fields := []string{"sender.name", "recipient.email"}

	// Alice sent the message; she may not read the recipient's email.
	out, err := messageBuilder(t, h, alice).Build(ctx, messages, fields)
	require.NoError(t, err)
	assert.Equal(t, "Alice", *out[0].Sender.Name)
	assert.Nil(t, out[0].Recipient)

	// Sam's shelter role may read contact fields.
	h.finds.reset()
	out, err = messageBuilder(t, h, sam).Build(ctx, messages, fields)
	require.NoError(t, err)
	assert.Equal(t, "Alice", *out[0].Sender.Name)
	assert.Nil(t, out[0].Sender.Email)
	assert.Equal(t, "sam@example.com", *out[0].Recipient.Email)
	assert.Nil(t, out[0].Recipient.Name)
	assert.Equal(t, 1, h.finds.get("users"))
}

func TestBuild_ReportParties(t *testing.T) {
	h := newHarness(t)
	reports, err := h.st.Reports.Find(context.Background(), store.All(), store.FindOptions{})
	require.NoError(t, err)

	b, err := builder.Resolve[*builder.ReportBuilder](h.factory, builder.Scope{Principal: alice, Flags: authz.FlagAll})
	require.NoError(t, err)
	out, err := b.Build(context.Background(), reports, []string{"reporter.name", "reported.name"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", *out[0].Reporter.Name)
	assert.Equal(t, "Bea", *out[0].Reported.Name)
}

func TestBuild_CancellationReachesSubQueries(t *testing.T) {
	h := newHarness(t)
	animals := h.animals(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := animalBuilder(t, h, anonymous).Build(ctx, animals, []string{"shelter.shelterName", "breed.name"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve_FreshInstancePerCall(t *testing.T) {
	h := newHarness(t)

	first := animalBuilder(t, h, alice)
	second := animalBuilder(t, h, sam)
	assert.NotSame(t, first, second)
}

func TestRun_Outcomes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	runFiles := func(p authz.Principal, l query.Lookup) ([]*dto.File, error) {
		return builder.Run[domain.File, dto.File, *builder.FileBuilder](ctx, h.factory, h.queries.Files, p, l)
	}

	_, err := runFiles(anonymous, query.Lookup{IDs: []string{"fil-1"}, Fields: []string{"id"}})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = runFiles(alice, query.Lookup{IDs: []string{"fil-1"}, Fields: []string{"ownerId", "size"}})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = runFiles(alice, query.Lookup{IDs: []string{"fil-missing"}, Fields: []string{"id"}})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	files, err := runFiles(alice, query.Lookup{IDs: []string{"fil-1"}, Fields: []string{"id", "filename", "ownerId"}})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "biscuit.jpg", *files[0].Filename)
	assert.Nil(t, files[0].OwnerID)

	files, err = runFiles(sam, query.Lookup{IDs: []string{"fil-1"}, Fields: []string{"id", "ownerId"}})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "usr-2", *files[0].OwnerID)
}

func TestRun_ListingWithoutMatchesSucceeds(t *testing.T) {
	h := newHarness(t)

	out, err := builder.Run[domain.Animal, dto.Animal, *builder.AnimalBuilder](context.Background(), h.factory, h.queries.Animals, anonymous,
		query.Lookup{Criteria: query.AnimalCriteria{ShelterIDs: []string{"shl-none"}}})
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func runUsers(t *testing.T, h *harness, p authz.Principal, l query.Lookup) ([]*dto.User, error) {
	t.Helper()
	return builder.Run[domain.User, dto.User, *builder.UserBuilder](context.Background(), h.factory, h.queries.Users, p, l)
}

func TestRun_OwnedFieldsAreConcealedPerRow(t *testing.T) {
	h := newHarness(t)

	out, err := runUsers(t, h, alice, query.Lookup{Fields: []string{"name", "location"}})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "Alice", *out[0].Name)
	assert.NotNil(t, out[0].Location)
	for _, u := range out[1:] {
		assert.NotNil(t, u.Name)
		assert.Nil(t, u.Location)
	}

	out, err = runUsers(t, h, alice, query.Lookup{IDs: []string{"usr-1", "usr-2"}, Fields: []string{"name", "email"}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "alice@example.com", *out[0].Email)
	assert.Equal(t, "Sam", *out[1].Name)
	assert.Nil(t, out[1].Email)
}

func TestRun_RelatedUsersConcealedPerRow(t *testing.T) {
	h := newHarness(t)

	out, err := builder.Run[domain.Conversation, dto.Conversation, *builder.ConversationBuilder](context.Background(), h.factory, h.queries.Conversations, alice,
		query.Lookup{IDs: []string{"cnv-1"}, Fields: []string{"userIds", "users.name", "users.email"}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	users := out[0].Users
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", *users[0].Name)
	assert.Equal(t, "alice@example.com", *users[0].Email)
	assert.Equal(t, "Sam", *users[1].Name)
	assert.Nil(t, users[1].Email)
}

func TestRun_SortByHiddenFieldIsRejected(t *testing.T) {
	h := newHarness(t)

	_, err := runUsers(t, h, anonymous, query.Lookup{Fields: []string{"name"}, SortBy: []string{"email"}})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	// Alice may sort by email; only her own row carries a key.
	out, err := runUsers(t, h, alice, query.Lookup{Fields: []string{"name"}, SortBy: []string{"email"}, SortDescending: true})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "Alice", *out[0].Name)
}

func TestRun_SearchSkipsFieldsTheCallerCannotRead(t *testing.T) {
	h := newHarness(t)

	out, err := runUsers(t, h, anonymous, query.Lookup{Query: "bea@example.com", Fields: []string{"name"}})
	require.NoError(t, err)
	assert.Empty(t, out)

	// Email is readable on alice's own row only, so it is never searched.
	out, err = runUsers(t, h, alice, query.Lookup{Query: "sam@example.com", Fields: []string{"name"}})
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = runUsers(t, h, anonymous, query.Lookup{Query: "bea", Fields: []string{"name"}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Bea", *out[0].Name)
}
