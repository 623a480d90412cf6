package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawhaven/pawhaven-server/internal/authz"
	domainerrors "github.com/pawhaven/pawhaven-server/internal/errors"
	"github.com/pawhaven/pawhaven-server/internal/query"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"203.0.113.7:52100", "203.0.113.7"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"203.0.113.7", "203.0.113.7"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = tt.remote
		assert.Equal(t, tt.want, clientIP(r), tt.remote)
	}
}

func TestPrincipalFromContext(t *testing.T) {
	assert.False(t, principalFromContext(context.Background()).Authenticated())

	ctx := withPrincipal(context.Background(), authz.Principal{UserID: "usr-1"})
	assert.Equal(t, "usr-1", principalFromContext(ctx).UserID)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	ts := setupTestServer(t, nil)

	for _, header := range []string{"Basic abc", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		ts.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", domainerrors.NotFound("animal not found"), http.StatusNotFound, "NOT_FOUND", "animal not found"},
		{"forbidden", domainerrors.Forbidden("no access"), http.StatusForbidden, "FORBIDDEN", "no access"},
		{"configuration is masked", domainerrors.Configurationf("no schema for %q", "hamster"), http.StatusInternalServerError, "CONFIGURATION", "internal error"},
		{"plain error is masked", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL", "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := toAPIError(tt.err)
			assert.Equal(t, tt.wantStatus, e.GetStatus())
			assert.Equal(t, tt.wantCode, e.Code)
			assert.Equal(t, tt.wantMsg, e.Message)
		})
	}
}

func TestLookupBody_CarriesCriteria(t *testing.T) {
	b := LookupBody[query.AnimalCriteria]{
		Fields:   []string{"name"},
		Criteria: &query.AnimalCriteria{ShelterIDs: []string{"shl-1"}},
	}
	l := b.lookup()
	assert.Equal(t, []string{"name"}, l.Fields)
	assert.Equal(t, query.AnimalCriteria{ShelterIDs: []string{"shl-1"}}, l.Criteria)

	assert.Nil(t, (&LookupBody[query.AnimalCriteria]{}).lookup().Criteria)
}
