package server

import (
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/gamecast-service/internal/config"
	"github.com/preston-bernstein/gamecast-service/internal/logging"
	"github.com/preston-bernstein/gamecast-service/internal/providers"
	"github.com/preston-bernstein/gamecast-service/internal/providers/fixture"
	"github.com/preston-bernstein/gamecast-service/internal/providers/rediscache"
	"github.com/preston-bernstein/gamecast-service/internal/providers/scoreboard"
)

const (
	providerFixture    = "fixture"
	providerScoreboard = "scoreboard"
	providerRedis      = "redis"
)

// selectProvider returns the configured out-of-band source and a closer for any client it
// owns. The closer is never nil.
func selectProvider(cfg config.Config, logger *slog.Logger) (providers.SnapshotProvider, func() error) {
	noop := func() error { return nil }

	switch normalizeProviderName(cfg.Provider.Name) {
	case providerFixture:
		return fixture.New(), noop
	case providerScoreboard:
		return scoreboard.NewClient(scoreboard.Config{
			BaseURL: cfg.Provider.BaseURL,
			APIKey:  cfg.Provider.APIKey,
		}), noop
	case providerRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return rediscache.New(client, cfg.Redis.KeyPrefix, logger), client.Close
	default:
		logging.Warn(logger, "unknown provider, falling back to fixture",
			slog.String(logging.FieldProvider, cfg.Provider.Name),
		)
		return fixture.New(), noop
	}
}

// normalizeProviderName keeps provider naming consistent across wiring, metrics and logs.
func normalizeProviderName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return providerFixture
	}
	return name
}
