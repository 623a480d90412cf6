package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven-server/internal/auth"
	"github.com/pawhaven/pawhaven-server/internal/authz"
	"github.com/pawhaven/pawhaven-server/internal/builder"
	"github.com/pawhaven/pawhaven-server/internal/censor"
	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/query"
	"github.com/pawhaven/pawhaven-server/internal/ratelimit"
	"github.com/pawhaven/pawhaven-server/internal/schema"
	"github.com/pawhaven/pawhaven-server/internal/service"
	"github.com/pawhaven/pawhaven-server/internal/store"
)

type testServer struct {
	*Server
	key    []byte
	tokens *auth.TokenService
	users  map[string]*domain.User
}

func setupTestServer(t *testing.T, limiter *ratelimit.KeyedRateLimiter) *testServer {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.DiscardHandler)

	st, err := store.Open(store.Options{InMemory: true}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	users := map[string]*domain.User{
		"alice": {Base: domain.Base{ID: "usr-1"}, Name: "Alice", Email: "alice@example.com", Role: domain.RoleUser},
		"sam":   {Base: domain.Base{ID: "usr-2"}, Name: "Sam", Email: "sam@example.com", Role: domain.RoleShelter, ShelterID: "shl-1"},
	}
	for _, u := range users {
		require.NoError(t, st.Users.Put(ctx, u.ID, u))
	}
	require.NoError(t, st.Shelters.Put(ctx, "shl-1", &domain.Shelter{Base: domain.Base{ID: "shl-1"}, ShelterName: "Happy Paws", UserID: "usr-2"}))
	require.NoError(t, st.Animals.Put(ctx, "ani-1", &domain.Animal{Base: domain.Base{ID: "ani-1"}, Name: "Biscuit", Status: domain.AnimalStatusAvailable, ShelterID: "shl-1"}))
	require.NoError(t, st.Files.Put(ctx, "fil-1", &domain.File{Base: domain.Base{ID: "fil-1"}, Filename: "biscuit.jpg", FileType: domain.FileTypeImage, OwnerID: "usr-2"}))

	schemas := schema.Default()
	queries := query.NewRegistry(st, schemas, nil, query.DefaultOptions())
	i := do.New()
	do.ProvideValue(i, &builder.Deps{
		Schemas:  schemas,
		Queries:  queries,
		Resolver: authz.NewResolver(authz.DefaultPolicy(), st, authz.Options{}),
		Censor:   censor.New(censor.DefaultPolicies(), nil, nil),
		Logger:   log,
	})
	builder.Register(i)

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Minute)
	require.NoError(t, err)

	s := NewServer(Options{
		Services: &Services{
			Query:        service.NewQueryService(do.MustInvoke[*builder.Factory](i), queries, log),
			Availability: service.NewAvailabilityService(st.Users, nil, time.Minute, log),
		},
		Tokens:  tokens,
		Limiter: limiter,
		Checks: map[string]HealthCheck{
			"store": func(ctx context.Context) error {
				_, err := st.Count(ctx, domain.TypeUser, store.All())
				return err
			},
		},
		Logger: log,
	})
	return &testServer{Server: s, key: key, tokens: tokens, users: users}
}

func (ts *testServer) token(t *testing.T, name string) string {
	t.Helper()
	token, err := ts.tokens.GenerateAccessToken(ts.users[name])
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestQuery_ReturnsOnlyRequestedFields(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec, body := ts.do(t, http.MethodPost, "/api/v1/animals/query", "", map[string]any{
		"fields": []string{"name", "shelter.shelterName"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, map[string]any{
		"name":    "Biscuit",
		"shelter": map[string]any{"shelterName": "Happy Paws"},
	}, items[0])
}

func TestQuery_EmptyListing(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec, body := ts.do(t, http.MethodPost, "/api/v1/animals/query", "", map[string]any{
		"criteria": map[string]any{"statuses": []string{"adopted"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []any{}, body["items"])
}

func TestQuery_ErrorMapping(t *testing.T) {
	ts := setupTestServer(t, nil)

	tests := []struct {
		name     string
		path     string
		token    string
		body     map[string]any
		wantCode int
		wantErr  string
	}{
		{
			name:     "anonymous caller sees nothing",
			path:     "/api/v1/files/query",
			body:     map[string]any{"ids": []string{"fil-1"}, "fields": []string{"id"}},
			wantCode: http.StatusUnauthorized,
			wantErr:  "UNAUTHORIZED",
		},
		{
			name:     "signed-in caller without access",
			path:     "/api/v1/files/query",
			token:    "alice",
			body:     map[string]any{"ids": []string{"fil-1"}, "fields": []string{"ownerId"}},
			wantCode: http.StatusForbidden,
			wantErr:  "FORBIDDEN",
		},
		{
			name:     "unknown ids",
			path:     "/api/v1/animals/query",
			body:     map[string]any{"ids": []string{"ani-404"}},
			wantCode: http.StatusNotFound,
			wantErr:  "NOT_FOUND",
		},
		{
			name:     "invalid criteria",
			path:     "/api/v1/animals/query",
			body:     map[string]any{"criteria": map[string]any{"statuses": []string{"sold"}}},
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION",
		},
		{
			name:     "unknown sort field",
			path:     "/api/v1/animals/query",
			body:     map[string]any{"sortBy": []string{"favouriteToy"}},
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := ""
			if tt.token != "" {
				token = ts.token(t, tt.token)
			}
			rec, body := ts.do(t, http.MethodPost, tt.path, token, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantErr, body["code"])
		})
	}
}

func TestQuery_OwnerSeesOwnFile(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec, body := ts.do(t, http.MethodPost, "/api/v1/files/query", ts.token(t, "sam"), map[string]any{
		"ids": []string{"fil-1"}, "fields": []string{"id", "ownerId"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []any{map[string]any{"id": "fil-1", "ownerId": "usr-2"}}, body["items"])
}

func TestAuthMiddleware_RejectsBadToken(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec, body := ts.do(t, http.MethodPost, "/api/v1/animals/query", "v4.local.not-a-token", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	ts := setupTestServer(t, nil)

	expired, err := auth.NewTokenService(ts.key, -time.Minute)
	require.NoError(t, err)
	token, err := expired.GenerateAccessToken(ts.users["alice"])
	require.NoError(t, err)

	rec, body := ts.do(t, http.MethodPost, "/api/v1/animals/query", token, map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_EXPIRED", body["code"])
}

func TestEmailAvailability(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec, body := ts.do(t, http.MethodGet, "/api/v1/users/email-availability?email=ALICE@example.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, body["available"])

	rec, body = ts.do(t, http.MethodGet, "/api/v1/users/email-availability?email=rex@example.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["available"])
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec, body := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.New(0.001, 1, time.Minute)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, limiter)

	rec, _ := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", body["code"])

	// Signed-in callers have their own bucket.
	rec, _ = ts.do(t, http.MethodGet, "/health", ts.token(t, "alice"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
