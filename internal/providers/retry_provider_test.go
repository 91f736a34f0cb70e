package providers

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/preston-bernstein/gamecast-service/internal/domain/games"
	"github.com/preston-bernstein/gamecast-service/internal/metrics"
	"github.com/preston-bernstein/gamecast-service/internal/testutil"
)

type flakeyProvider struct {
	failures int
	calls    int
}

func (f *flakeyProvider) FetchSnapshots(ctx context.Context, sport string) ([]games.Snapshot, error) {
	_ = ctx
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("boom")
	}
	return []games.Snapshot{{ID: "ok", League: sport}}, nil
}

func TestRetryingProviderRetriesAndSucceeds(t *testing.T) {
	fp := &flakeyProvider{failures: 2}
	rp := NewRetryingProvider(fp, slog.Default(), metrics.NewRecorder(), "flakey", 3, time.Millisecond)

	snaps, err := rp.FetchSnapshots(context.Background(), "nfl")
	if err != nil {
		t.Fatalf("expected success, got error %v", err)
	}
	if len(snaps) != 1 || snaps[0].ID != "ok" {
		t.Fatalf("unexpected snapshots %+v", snaps)
	}
	if fp.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", fp.calls)
	}
}

func TestRetryingProviderStopsAfterMaxAttempts(t *testing.T) {
	fp := &flakeyProvider{failures: 5}
	logger, buf := testutil.NewBufferLogger()
	rp := NewRetryingProvider(fp, logger, metrics.NewRecorder(), "flakey", 2, time.Millisecond)

	_, err := rp.FetchSnapshots(context.Background(), "nfl")
	if err == nil {
		t.Fatal("expected error after retries")
	}
	if fp.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", fp.calls)
	}
	testutil.AssertLogged(t, buf, "provider fetch failed")
}

func TestRetryingProviderRespectsContextCancel(t *testing.T) {
	fp := &flakeyProvider{failures: 5}
	rp := NewRetryingProvider(fp, nil, metrics.NewRecorder(), "flakey", 3, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := rp.FetchSnapshots(ctx, "nfl"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if fp.calls != 1 {
		t.Fatalf("expected a single attempt before waiting, got %d", fp.calls)
	}
}

func TestRetryingProviderUsesCustomBackoff(t *testing.T) {
	fp := &flakeyProvider{failures: 1}
	rp := NewRetryingProvider(fp, nil, metrics.NewRecorder(), "flakey", 2, time.Hour).(*retryingProvider)

	calls := 0
	rp.backoffFn = func(attempt int) time.Duration {
		calls++
		return 0
	}

	if _, err := rp.FetchSnapshots(context.Background(), "nfl"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls == 0 {
		t.Fatalf("expected custom backoff to be invoked")
	}
}

func TestRetryingProviderRecordsRateLimitMetrics(t *testing.T) {
	rec := metrics.NewRecorder()
	rp := NewRetryingProvider(&rateLimitThenSuccessProvider{}, nil, rec, "rl", 2, time.Millisecond).(*retryingProvider)

	snaps, err := rp.FetchSnapshots(context.Background(), "nfl")
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if len(snaps) != 1 || snaps[0].ID != "ok" {
		t.Fatalf("unexpected snapshots %+v", snaps)
	}
	if got := rec.RateLimitHits(rp.providerName); got != 1 {
		t.Fatalf("expected 1 rate limit hit, got %d", got)
	}
	if got := rec.ProviderCalls(rp.providerName); got != 2 {
		t.Fatalf("expected 2 provider calls, got %d", got)
	}
	if got := rec.ProviderErrors(rp.providerName); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}
	if got := rec.LastRetryAfter(rp.providerName); got != time.Millisecond {
		t.Fatalf("expected retry-after recorded, got %s", got)
	}
}

func TestRetryingProviderDelaySelection(t *testing.T) {
	rp := NewRetryingProviderWithRNG(&flakeyProvider{}, nil, nil, "rl", rand.New(rand.NewSource(1)), 2, time.Millisecond).(*retryingProvider)
	rp.backoffFn = func(attempt int) time.Duration {
		return 50 * time.Millisecond
	}

	if got := rp.computeDelay(&RateLimitError{RetryAfter: 3 * time.Second}, 1); got != 3*time.Second {
		t.Fatalf("expected retry-after delay 3s, got %s", got)
	}
	for i := 0; i < 20; i++ {
		got := rp.computeDelay(errors.New("boom"), 1)
		if got < 25*time.Millisecond || got > 50*time.Millisecond {
			t.Fatalf("expected jittered delay between 25ms and 50ms, got %s", got)
		}
	}

	rp.backoffFn = func(int) time.Duration { return 0 }
	if got := rp.computeDelay(errors.New("boom"), 1); got != 0 {
		t.Fatalf("expected zero delay, got %s", got)
	}
}

func TestNewRetryingProviderDefaults(t *testing.T) {
	rp := NewRetryingProviderWithRNG(nil, nil, metrics.NewRecorder(), "", nil, 0, 0).(*retryingProvider)
	if rp.providerName != defaultProviderName {
		t.Fatalf("expected fallback provider name, got %s", rp.providerName)
	}
	if rp.maxAttempts != defaultRetryAttempts {
		t.Fatalf("expected default attempts, got %d", rp.maxAttempts)
	}
	if rp.backoffFn(1) != defaultBackoff {
		t.Fatalf("expected default backoff")
	}
	if _, err := rp.FetchSnapshots(context.Background(), "nfl"); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

type rateLimitThenSuccessProvider struct {
	calls int
}

func (f *rateLimitThenSuccessProvider) FetchSnapshots(ctx context.Context, sport string) ([]games.Snapshot, error) {
	_ = ctx
	f.calls++
	if f.calls == 1 {
		return nil, &RateLimitError{
			Provider:   "test",
			StatusCode: 429,
			RetryAfter: time.Millisecond,
		}
	}
	return []games.Snapshot{{ID: "ok", League: sport}}, nil
}
