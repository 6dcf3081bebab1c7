// Package providers contains dependency injection providers for the ReadingLog server.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/readinglog/readinglog-server/internal/config"
	"github.com/readinglog/readinglog-server/internal/logger"
	"github.com/readinglog/readinglog-server/internal/metrics"
	"github.com/readinglog/readinglog-server/internal/store"
	"github.com/readinglog/readinglog-server/internal/validation"
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

	log.Info("Starting ReadingLog server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
	)

	return log, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}

// ProvideMetrics provides the Prometheus collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvidePageLimits provides the catalog pagination bounds.
func ProvidePageLimits(i do.Injector) (store.PageLimits, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return store.PageLimits{
		DefaultSize: cfg.Catalog.DefaultPageSize,
		MaxSize:     cfg.Catalog.MaxPageSize,
	}, nil
}
