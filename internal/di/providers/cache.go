package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pawhaven/pawhaven-server/internal/cache"
	"github.com/pawhaven/pawhaven-server/internal/config"
	"github.com/pawhaven/pawhaven-server/internal/logger"
)

// CacheHandle wraps the configured cache with shutdown capability.
type CacheHandle struct {
	cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the in-process or Redis cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		c   cache.Cache
		err error
	)
	switch cfg.Cache.Driver {
	case "redis":
		c, err = cache.NewRedis(context.Background(), cfg.Cache.RedisURL)
	default:
		c, err = cache.NewMemory(cfg.Cache.MaxCost)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Cache initialized",
		"driver", cfg.Cache.Driver,
		"fragment_ttl", cfg.Cache.FragmentTTL,
		"availability_ttl", cfg.Cache.AvailabilityTTL,
	)

	return &CacheHandle{Cache: c}, nil
}
