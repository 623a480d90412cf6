package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/pawhaven/pawhaven-server/internal/api"
	"github.com/pawhaven/pawhaven-server/internal/auth"
	"github.com/pawhaven/pawhaven-server/internal/cache"
	"github.com/pawhaven/pawhaven-server/internal/config"
	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/logger"
	"github.com/pawhaven/pawhaven-server/internal/metrics"
	"github.com/pawhaven/pawhaven-server/internal/ratelimit"
	"github.com/pawhaven/pawhaven-server/internal/service"
	"github.com/pawhaven/pawhaven-server/internal/store"
)

// limiterIdle is how long an unused per-caller bucket is kept.
const limiterIdle = 10 * time.Minute

// RateLimiterHandle wraps the limiter with shutdown capability. Limiter is
// nil when limiting is disabled.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	if h.KeyedRateLimiter != nil {
		h.Stop()
	}
	return nil
}

// ProvideRateLimiter provides the per-caller request limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.RateLimit.RequestsPerSecond == 0 || cfg.RateLimit.Burst == 0 {
		log.Info("Rate limiting disabled by configuration")
		return &RateLimiterHandle{}, nil
	}
	return &RateLimiterHandle{
		KeyedRateLimiter: ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, limiterIdle),
	}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable. Drain bounds the
// wait for in-flight requests; zero waits for them indefinitely.
type HTTPServerHandle struct {
	*http.Server
	Drain time.Duration
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx := context.Background()
	if h.Drain > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Drain)
		defer cancel()
	}
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)

	checks := map[string]api.HealthCheck{
		"store": func(ctx context.Context) error {
			_, err := storeHandle.Count(ctx, domain.TypeAnimalType, store.All())
			return err
		},
		"cache": func(ctx context.Context) error {
			const key = "health:ping"
			if err := cacheHandle.Set(ctx, key, []byte("ok"), time.Minute); err != nil {
				return err
			}
			return cacheHandle.Delete(ctx, key)
		},
	}
	if indexHandle.Index != nil {
		checks["search"] = func(context.Context) error {
			_, err := indexHandle.DocCount()
			return err
		}
	}
	if r, ok := cacheHandle.Cache.(*cache.Redis); ok {
		checks["redis"] = r.Health
	}

	handler := api.NewServer(api.Options{
		Services: &api.Services{
			Query:        do.MustInvoke[*service.QueryService](i),
			Availability: do.MustInvoke[*service.AvailabilityService](i),
		},
		Tokens:         do.MustInvoke[*auth.TokenService](i),
		Limiter:        limiterHandle.KeyedRateLimiter,
		Metrics:        do.MustInvoke[*metrics.Metrics](i),
		Checks:         checks,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log.Logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, Drain: cfg.Server.DrainTimeout}, nil
}
