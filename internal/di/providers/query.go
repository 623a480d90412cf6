package providers

import (
	"github.com/samber/do/v2"

	"github.com/pawhaven/pawhaven-server/internal/authz"
	"github.com/pawhaven/pawhaven-server/internal/builder"
	"github.com/pawhaven/pawhaven-server/internal/censor"
	"github.com/pawhaven/pawhaven-server/internal/config"
	"github.com/pawhaven/pawhaven-server/internal/logger"
	"github.com/pawhaven/pawhaven-server/internal/metrics"
	"github.com/pawhaven/pawhaven-server/internal/query"
	"github.com/pawhaven/pawhaven-server/internal/schema"
)

// ProvideSchemas provides the entity field tables.
func ProvideSchemas(i do.Injector) (*schema.Registry, error) {
	return schema.Default(), nil
}

// ProvideQueryRegistry provides the per-entity query builders.
func ProvideQueryRegistry(i do.Injector) (*query.Registry, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	schemas := do.MustInvoke[*schema.Registry](i)

	// A nil *search.Index inside the interface would not compare equal to nil.
	var searcher query.Searcher
	if indexHandle.Index != nil {
		searcher = indexHandle.Index
	}

	return query.NewRegistry(storeHandle.Store, schemas, searcher, query.Options{
		DefaultPageSize: cfg.Query.DefaultPageSize,
		MaxPageSize:     cfg.Query.MaxPageSize,
		BatchLimit:      cfg.Query.BatchLimit,
	}), nil
}

// ProvideResolver provides the authorization resolver with cached
// ownership and affiliation fragments.
func ProvideResolver(i do.Injector) (*authz.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return authz.NewResolver(authz.DefaultPolicy(), storeHandle.Store, authz.Options{
		Cache:       cacheHandle.Cache,
		FragmentTTL: cfg.Cache.FragmentTTL,
		Metrics:     m,
		Logger:      log.Logger,
	}), nil
}

// ProvideCensor provides the field censor.
func ProvideCensor(i do.Injector) (*censor.Censor, error) {
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return censor.New(censor.DefaultPolicies(), m, log.Logger), nil
}

// ProvideBuilderDeps provides the collaborators shared by every builder.
func ProvideBuilderDeps(i do.Injector) (*builder.Deps, error) {
	log := do.MustInvoke[*logger.Logger](i)

	return &builder.Deps{
		Schemas:  do.MustInvoke[*schema.Registry](i),
		Queries:  do.MustInvoke[*query.Registry](i),
		Resolver: do.MustInvoke[*authz.Resolver](i),
		Censor:   do.MustInvoke[*censor.Censor](i),
		Metrics:  do.MustInvoke[*metrics.Metrics](i),
		Logger:   log.Logger,
	}, nil
}
