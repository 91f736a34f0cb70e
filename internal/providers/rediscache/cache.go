// Package rediscache reads the live snapshots an upstream ingest keeps in Redis, one hash
// per sport keyed by game id.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/gamecast-service/internal/domain/games"
	"github.com/preston-bernstein/gamecast-service/internal/logging"
)

const (
	providerName  = "redis"
	defaultPrefix = "gamecast:live"
)

type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// Provider serves snapshots from HGETALL {prefix}:{sport}.
type Provider struct {
	client hashReader
	prefix string
	logger *slog.Logger
}

// New builds a provider over any go-redis client.
func New(client redis.Cmdable, prefix string, logger *slog.Logger) *Provider {
	return newProvider(client, prefix, logger)
}

func newProvider(client hashReader, prefix string, logger *slog.Logger) *Provider {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Provider{client: client, prefix: prefix, logger: logger}
}

// Key returns the hash key holding a sport's snapshots.
func (p *Provider) Key(sport string) string {
	return p.prefix + ":" + strings.ToLower(strings.TrimSpace(sport))
}

// FetchSnapshots decodes every entry in the sport's hash. Entries that fail to decode are
// logged and skipped; results are ordered by game id.
func (p *Provider) FetchSnapshots(ctx context.Context, sport string) ([]games.Snapshot, error) {
	key := p.Key(sport)
	entries, err := p.client.HGetAll(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: hgetall %s: %w", providerName, key, err)
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]games.Snapshot, 0, len(ids))
	for _, id := range ids {
		var snap games.Snapshot
		if err := json.Unmarshal([]byte(entries[id]), &snap); err != nil {
			logging.Warn(p.logger, "cached snapshot decode failed",
				logging.FieldProvider, providerName,
				logging.FieldGameID, id,
				"err", err,
			)
			continue
		}
		if snap.ID == "" {
			snap.ID = id
		}
		if snap.League == "" {
			snap.League = strings.ToLower(strings.TrimSpace(sport))
		}
		out = append(out, snap)
	}
	return out, nil
}
