package providers

import (
	"context"
	"errors"

	"github.com/preston-bernstein/gamecast-service/internal/domain/games"
)

// ErrProviderUnavailable is returned when no upstream source is configured.
var ErrProviderUnavailable = errors.New("snapshot provider unavailable")

// SnapshotProvider fetches the current snapshot of every live game for a sport. It is the
// out-of-band path used while the push transport is down.
type SnapshotProvider interface {
	FetchSnapshots(ctx context.Context, sport string) ([]games.Snapshot, error)
}

// Func adapts a plain function to SnapshotProvider.
type Func func(ctx context.Context, sport string) ([]games.Snapshot, error)

func (f Func) FetchSnapshots(ctx context.Context, sport string) ([]games.Snapshot, error) {
	if f == nil {
		return nil, ErrProviderUnavailable
	}
	return f(ctx, sport)
}
