package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pawhaven/pawhaven-server/internal/config"
	"github.com/pawhaven/pawhaven-server/internal/logger"
	"github.com/pawhaven/pawhaven-server/internal/schema"
	"github.com/pawhaven/pawhaven-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
// Index is nil when search is disabled.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	if h.Index == nil {
		return nil
	}
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index and wires it to the
// store so writes keep it current.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	schemas := do.MustInvoke[*schema.Registry](i)

	if !cfg.Search.Enabled {
		log.Info("Free-text search disabled by configuration")
		return &SearchIndexHandle{}, nil
	}

	index, err := search.NewIndex(schemas, search.Options{
		DataPath: cfg.Search.Path,
		InMemory: cfg.Storage.InMemory,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}
	storeHandle.SetSearchIndexer(index)

	docCount, _ := index.DocCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// TriggerSearchReindexIfNeeded rebuilds an empty index in the background.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	if indexHandle.Index == nil {
		return
	}
	if docCount, _ := indexHandle.DocCount(); docCount > 0 {
		return
	}

	go func() {
		n, err := storeHandle.Reindex(context.Background())
		if err != nil {
			log.Error("Initial search reindex failed", "error", err, "indexed", n)
			return
		}
		if n > 0 {
			log.Info("Initial search reindex completed", "documents", n)
		}
	}()
}
