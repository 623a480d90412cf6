package providers

import (
	"github.com/samber/do/v2"

	"github.com/pawhaven/pawhaven-server/internal/builder"
	"github.com/pawhaven/pawhaven-server/internal/config"
	"github.com/pawhaven/pawhaven-server/internal/logger"
	"github.com/pawhaven/pawhaven-server/internal/query"
	"github.com/pawhaven/pawhaven-server/internal/service"
)

// ProvideQueryService provides the entity lookup service.
func ProvideQueryService(i do.Injector) (*service.QueryService, error) {
	factory := do.MustInvoke[*builder.Factory](i)
	queries := do.MustInvoke[*query.Registry](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewQueryService(factory, queries, log.Logger), nil
}

// ProvideAvailabilityService provides the email availability service.
func ProvideAvailabilityService(i do.Injector) (*service.AvailabilityService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAvailabilityService(storeHandle.Users, cacheHandle.Cache, cfg.Cache.AvailabilityTTL, log.Logger), nil
}
