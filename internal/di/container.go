// Package di provides dependency injection configuration for the PawHaven server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/pawhaven/pawhaven-server/internal/auth"
	"github.com/pawhaven/pawhaven-server/internal/authz"
	"github.com/pawhaven/pawhaven-server/internal/builder"
	"github.com/pawhaven/pawhaven-server/internal/censor"
	"github.com/pawhaven/pawhaven-server/internal/config"
	"github.com/pawhaven/pawhaven-server/internal/di/providers"
	"github.com/pawhaven/pawhaven-server/internal/logger"
	"github.com/pawhaven/pawhaven-server/internal/metrics"
	"github.com/pawhaven/pawhaven-server/internal/query"
	"github.com/pawhaven/pawhaven-server/internal/schema"
	"github.com/pawhaven/pawhaven-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideCache)

	// Query pipeline
	do.Provide(injector, providers.ProvideSchemas)
	do.Provide(injector, providers.ProvideQueryRegistry)
	do.Provide(injector, providers.ProvideResolver)
	do.Provide(injector, providers.ProvideCensor)
	do.Provide(injector, providers.ProvideBuilderDeps)
	builder.Register(injector)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideQueryService)
	do.Provide(injector, providers.ProvideAvailabilityService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*metrics.Metrics](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*providers.CacheHandle](injector)

	_ = do.MustInvoke[*schema.Registry](injector)
	_ = do.MustInvoke[*query.Registry](injector)
	_ = do.MustInvoke[*authz.Resolver](injector)
	_ = do.MustInvoke[*censor.Censor](injector)
	_ = do.MustInvoke[*builder.Deps](injector)
	_ = do.MustInvoke[*builder.Factory](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.QueryService](injector)
	_ = do.MustInvoke[*service.AvailabilityService](injector)

	// Server
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Fill an empty search index from the store
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
