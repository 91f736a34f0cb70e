package server

import (
	"log/slog"

	"github.com/preston-bernstein/gamecast-service/internal/config"
	"github.com/preston-bernstein/gamecast-service/internal/metrics"
	"github.com/preston-bernstein/gamecast-service/internal/providers"
)

// providerFactory assembles the provider with shared wrappers (rate limit + retry).
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(logger *slog.Logger, metrics *metrics.Recorder) providerFactory {
	return providerFactory{logger: logger, metrics: metrics}
}

func (f providerFactory) build(cfg config.Config) (providers.SnapshotProvider, func() error) {
	base, closer := selectProvider(cfg, f.logger)
	return f.wrap(cfg, base), closer
}

// wrap limits first so retries also wait their turn against the upstream quota.
func (f providerFactory) wrap(cfg config.Config, base providers.SnapshotProvider) providers.SnapshotProvider {
	limited := providers.NewRateLimitedProvider(base, cfg.Provider.RatePerMinute, f.logger)
	return providers.NewRetryingProvider(limited, f.logger, f.metrics, normalizeProviderName(cfg.Provider.Name), 0, 0)
}
