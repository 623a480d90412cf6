// Package providers contains dependency injection providers for the PawHaven server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/pawhaven/pawhaven-server/internal/config"
	"github.com/pawhaven/pawhaven-server/internal/logger"
	"github.com/pawhaven/pawhaven-server/internal/metrics"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting PawHaven Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"storage_driver", cfg.Storage.Driver,
		"data_path", cfg.Storage.Path,
		"in_memory", cfg.Storage.InMemory,
	)

	return log, nil
}

// ProvideMetrics provides the Prometheus collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}
