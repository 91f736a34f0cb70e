package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/preston-bernstein/gamecast-service/internal/teststubs"
)

func TestRateLimitedProviderSpacesCalls(t *testing.T) {
	inner := &teststubs.StubProvider{}
	rl := NewRateLimitedProvider(inner, 600, nil)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := rl.FetchSnapshots(context.Background(), "nfl"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	// 600/min is one token per 100ms; the burst covers the first call only.
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Fatalf("expected calls to be spaced, elapsed %s", elapsed)
	}
	if inner.Calls.Load() != 3 {
		t.Fatalf("expected inner provider called 3 times, got %d", inner.Calls.Load())
	}
}

func TestRateLimitedProviderRespectsCanceledContext(t *testing.T) {
	inner := &teststubs.StubProvider{}
	rl := NewRateLimitedProvider(inner, 1, nil)

	if _, err := rl.FetchSnapshots(context.Background(), "nfl"); err != nil {
		t.Fatalf("expected burst call to pass, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rl.FetchSnapshots(ctx, "nfl"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled error, got %v", err)
	}
	if inner.Calls.Load() != 1 {
		t.Fatalf("expected inner provider not called on canceled context")
	}
}

func TestRateLimitedProviderHandlesNilInner(t *testing.T) {
	var inner SnapshotProvider
	rl := NewRateLimitedProvider(inner, 60, nil)

	_, err := rl.FetchSnapshots(context.Background(), "nfl")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestRateLimitedProviderDefaultsRate(t *testing.T) {
	rl := NewRateLimitedProvider(&teststubs.StubProvider{}, 0, nil).(*rateLimitedProvider)
	if got := float64(rl.limiter.Limit()); got != float64(defaultRatePerMinute)/60 {
		t.Fatalf("expected default rate, got %v", got)
	}
}
