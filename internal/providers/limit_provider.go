package providers

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/preston-bernstein/gamecast-service/internal/domain/games"
	"github.com/preston-bernstein/gamecast-service/internal/logging"
)

const defaultRatePerMinute = 30

// rateLimitedProvider wraps a SnapshotProvider and spaces calls to stay under upstream quotas.
type rateLimitedProvider struct {
	next    SnapshotProvider
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewRateLimitedProvider returns a SnapshotProvider allowing perMinute calls with a burst of
// one. Calls block until a token is available or the context ends.
func NewRateLimitedProvider(next SnapshotProvider, perMinute int, logger *slog.Logger) SnapshotProvider {
	if perMinute <= 0 {
		perMinute = defaultRatePerMinute
	}
	return &rateLimitedProvider{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), 1),
		logger:  logger,
	}
}

func (p *rateLimitedProvider) FetchSnapshots(ctx context.Context, sport string) ([]games.Snapshot, error) {
	if p == nil || p.next == nil {
		if p != nil {
			logging.Warn(p.logger, "provider unavailable", logging.FieldProvider, "rate-limited")
		}
		return nil, ErrProviderUnavailable
	}
	if err := p.limiter.Wait(ctx); err != nil {
		logging.Warn(p.logger, "rate-limited fetch canceled",
			logging.FieldProvider, "rate-limited",
			logging.FieldSport, sport,
			"err", err,
		)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return p.next.FetchSnapshots(ctx, sport)
}
