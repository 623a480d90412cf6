package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FormatFollowsEnvironment(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		json        bool
	}{
		{name: "production uses json", environment: "production", json: true},
		{name: "development uses pretty", environment: "development"},
		{name: "staging uses pretty", environment: "staging"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: slog.LevelInfo, Environment: tt.environment, Writer: &buf})
			log.Info("adoption queued")

			if tt.json {
				assert.Contains(t, buf.String(), `"msg":"adoption queued"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.Contains(t, buf.String(), "adoption queued")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).
		With("entity", "animal").
		WithGroup("censor")

	log.Info("fields dropped", "count", 2)

	out := buf.String()
	assert.Contains(t, out, "entity=animal")
	assert.Contains(t, out, "censor.count=2")
}

func TestLogger_WithErrorAndField(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Writer: &buf})

	log.WithError(errors.New("store offline")).WithField("collection", "users").Error("query failed")

	out := buf.String()
	assert.Contains(t, out, `"error":"store offline"`)
	assert.Contains(t, out, `"collection":"users"`)
}

func TestContext_RoundTrip(t *testing.T) {
	fallback := Discard()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	scoped := slog.New(slog.DiscardHandler).With("request_id", "r-1")
	ctx := IntoContext(context.Background(), scoped)
	require.Same(t, scoped, FromContext(ctx, fallback))
}

func TestWithRequest(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	WithRequest(ctx, base, "usr-1").Info("lookup served")
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), `"user_id":"usr-1"`)

	buf.Reset()
	WithRequest(context.Background(), base, "").Info("lookup served")
	assert.Contains(t, buf.String(), `"request_id":"`)
	assert.NotContains(t, buf.String(), "user_id")
}
