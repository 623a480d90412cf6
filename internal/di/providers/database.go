package providers

import (
	"github.com/samber/do/v2"

	"github.com/pawhaven/pawhaven-server/internal/config"
	"github.com/pawhaven/pawhaven-server/internal/logger"
	"github.com/pawhaven/pawhaven-server/internal/metrics"
	"github.com/pawhaven/pawhaven-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the document store. Every store query is reported
// to the metrics collectors.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	db, err := store.Open(store.Options{
		Driver:   cfg.Storage.Driver,
		Path:     cfg.Storage.Path,
		InMemory: cfg.Storage.InMemory,
	}, log.Logger)
	if err != nil {
		return nil, err
	}
	db.SetObserver(m)

	log.Info("Document store initialized",
		"driver", cfg.Storage.Driver,
		"path", cfg.Storage.Path,
		"in_memory", cfg.Storage.InMemory,
	)

	return &StoreHandle{Store: db}, nil
}
