package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type received struct {
	sport    string
	cacheKey string
	data     string
}

type updateLog struct {
	mu  sync.Mutex
	got []received
}

func (l *updateLog) handler(sport string) UpdateHandler {
	return func(data json.RawMessage, cacheKey string, _ time.Time) {
		l.add(received{sport: sport, cacheKey: cacheKey, data: string(data)})
	}
}

func (l *updateLog) any(sport string, data json.RawMessage, cacheKey string, _ time.Time) {
	l.add(received{sport: sport, cacheKey: cacheKey, data: string(data)})
}

func (l *updateLog) add(r received) {
	l.mu.Lock()
	l.got = append(l.got, r)
	l.mu.Unlock()
}

func (l *updateLog) snapshot() []received {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]received(nil), l.got...)
}

func TestConnectSharesInFlightAttempt(t *testing.T) {
	h := newClientHarness(t, Config{})
	gate := make(chan struct{})
	h.dialer.gate = gate

	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() { errs <- h.client.Connect(context.Background()) }()
	}
	require.Eventually(t, func() bool { return h.dialer.dialCount() == 1 }, waitFor, tick)
	assert.Equal(t, StateConnecting, h.client.State())

	close(gate)
	for i := 0; i < 3; i++ {
		require.NoError(t, <-errs)
	}
	assert.Equal(t, 1, h.dialer.dialCount())
	assert.Equal(t, StateConnected, h.client.State())
	require.NoError(t, h.client.Connect(context.Background()))
	assert.Equal(t, 1, h.dialer.dialCount())
}

func TestSubscribeWhileDisconnectedIsReplayedOnConnect(t *testing.T) {
	h := newClientHarness(t, Config{})
	h.server.current = CurrentState{
		"nfl": {"nfl:2026-09-13": json.RawMessage(`[{"id":"g1"}]`)},
	}
	var log updateLog
	h.client.OnUpdate("NFL", log.handler("nfl"))

	require.NoError(t, h.client.Subscribe(context.Background(), []string{" NFL "}))
	assert.Equal(t, []string{"nfl"}, h.client.Subscriptions())
	assert.Zero(t, h.server.eventCount(EventSubscribe))

	require.NoError(t, h.client.Connect(context.Background()))

	require.Equal(t, []SportsPayload{{Sports: []string{"nfl"}}}, h.server.framesFor(EventSubscribe))
	require.Equal(t, 1, h.server.eventCount(EventRequestCurrent))
	assert.Equal(t, []received{{sport: "nfl", cacheKey: "nfl:2026-09-13", data: `[{"id":"g1"}]`}}, log.snapshot())
}

func TestPushAfterRequestCurrentNeverOvertakesCurrentState(t *testing.T) {
	h := newClientHarness(t, Config{})
	var log updateLog
	h.client.OnAnyUpdate(log.any)
	require.NoError(t, h.client.Connect(context.Background()))

	const sports = 40
	h.server.mu.Lock()
	h.server.current = CurrentState{}
	for i := 0; i < sports; i++ {
		h.server.current[fmt.Sprintf("league%d", i)] = map[string]json.RawMessage{"current": json.RawMessage(`{"id":"g1"}`)}
	}
	h.server.mu.Unlock()

	for i := 0; i < sports; i++ {
		sport := fmt.Sprintf("league%d", i)
		h.server.mu.Lock()
		h.server.after[EventRequestCurrent] = []UpdatePayload{{Sport: sport, CacheKey: "push", Data: json.RawMessage(`{"id":"g1"}`)}}
		h.server.mu.Unlock()
		require.NoError(t, h.client.Subscribe(context.Background(), []string{sport}))
	}

	require.Eventually(t, func() bool { return len(log.snapshot()) == 2*sports }, waitFor, tick)
	seenCurrent := map[string]bool{}
	for _, r := range log.snapshot() {
		switch r.cacheKey {
		case "current":
			seenCurrent[r.sport] = true
		case "push":
			require.True(t, seenCurrent[r.sport], "push for %s dispatched before its current state", r.sport)
		}
	}
}

func TestSubscribeIsIdempotent(t *testing.T) {
	h := newClientHarness(t, Config{})
	require.NoError(t, h.client.Connect(context.Background()))

	require.NoError(t, h.client.Subscribe(context.Background(), []string{"nfl"}))
	require.NoError(t, h.client.Subscribe(context.Background(), []string{"nfl", "NFL"}))
	require.NoError(t, h.client.Subscribe(context.Background(), []string{"nfl", "ncaaf"}))

	assert.Equal(t, []SportsPayload{
		{Sports: []string{"nfl"}},
		{Sports: []string{"ncaaf"}},
	}, h.server.framesFor(EventSubscribe))
	assert.Equal(t, []string{"ncaaf", "nfl"}, h.client.Subscriptions())
}

func TestPushedUpdatesReachHandlersUntilUnregistered(t *testing.T) {
	h := newClientHarness(t, Config{})
	var specific, wildcard, other updateLog
	stop := h.client.OnUpdate("nfl", specific.handler("nfl"))
	h.client.OnUpdate("nba", other.handler("nba"))
	h.client.OnAnyUpdate(wildcard.any)
	require.NoError(t, h.client.Connect(context.Background()))

	h.server.push(t, UpdatePayload{Sport: "nfl", CacheKey: "nfl:today", Data: json.RawMessage(`{"id":"g1"}`), Timestamp: 1757782800000})
	require.Eventually(t, func() bool { return len(wildcard.snapshot()) == 1 }, waitFor, tick)
	assert.Len(t, specific.snapshot(), 1)
	assert.Empty(t, other.snapshot())
	assert.Equal(t, received{sport: "nfl", cacheKey: "nfl:today", data: `{"id":"g1"}`}, wildcard.snapshot()[0])

	stop()
	h.server.push(t, UpdatePayload{Sport: "nfl", CacheKey: "nfl:today", Data: json.RawMessage(`{"id":"g2"}`)})
	require.Eventually(t, func() bool { return len(wildcard.snapshot()) == 2 }, waitFor, tick)
	assert.Len(t, specific.snapshot(), 1)
	assert.Equal(t, 2, h.recorder.Realtime().Updates["nfl"])
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	h := newClientHarness(t, Config{})
	var log updateLog
	h.client.OnUpdate("nfl", func(json.RawMessage, string, time.Time) { panic("boom") })
	h.client.OnUpdate("nfl", log.handler("nfl"))
	require.NoError(t, h.client.Connect(context.Background()))

	h.server.push(t, UpdatePayload{Sport: "nfl", CacheKey: "k", Data: json.RawMessage(`{}`)})
	require.Eventually(t, func() bool { return len(log.snapshot()) == 1 }, waitFor, tick)
	assert.Equal(t, 1, h.recorder.Realtime().HandlerFaults)
	assert.Equal(t, StateConnected, h.client.State())
}

func TestExhaustedReconnectEngagesFallbackPolling(t *testing.T) {
	h := newClientHarness(t, Config{MaxReconnectAttempts: 4})
	h.dialer.setFailing(true)

	signals := make(chan FallbackSignal, 4)
	h.client.OnFallback(func(_ context.Context, s FallbackSignal) error {
		signals <- s
		return nil
	})
	require.NoError(t, h.client.Subscribe(context.Background(), []string{"nfl"}))

	err := h.client.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReconnectExhausted)
	assert.Equal(t, 4, h.dialer.dialCount())
	assert.Equal(t, StateFallbackPolling, h.client.State())

	select {
	case s := <-signals:
		assert.Equal(t, []string{"nfl"}, s.Sports)
	case <-time.After(waitFor):
		t.Fatal("fallback signal not delivered")
	}
	_, polling := h.client.FallbackStatus()
	assert.True(t, polling)
	snap := h.recorder.Realtime()
	assert.Equal(t, 1, snap.Fallbacks)
	assert.Equal(t, 4, snap.ReconnectAttempts)

	h.dialer.setFailing(false)
	require.NoError(t, h.client.Connect(context.Background()))
	assert.Equal(t, StateConnected, h.client.State())
	_, polling = h.client.FallbackStatus()
	assert.False(t, polling)
	assert.Equal(t, 1, h.server.eventCount(EventSubscribe))
}

func TestDroppedConnectionReconnectsAndReplaysSubscriptions(t *testing.T) {
	h := newClientHarness(t, Config{})
	var mu sync.Mutex
	var transitions []State
	h.client.OnStateChange(func(_, to State) {
		mu.Lock()
		transitions = append(transitions, to)
		mu.Unlock()
	})
	require.NoError(t, h.client.Connect(context.Background()))
	require.NoError(t, h.client.Subscribe(context.Background(), []string{"nfl"}))

	h.server.drop()

	require.Eventually(t, func() bool {
		return h.dialer.dialCount() == 2 &&
			h.client.State() == StateConnected &&
			h.server.eventCount(EventSubscribe) == 2
	}, waitFor, tick)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateConnecting, StateConnected, StateReconnecting, StateConnected}, transitions)
}

func TestDroppedConnectionFallsBackWhenReconnectFails(t *testing.T) {
	h := newClientHarness(t, Config{MaxReconnectAttempts: 2})
	require.NoError(t, h.client.Connect(context.Background()))

	h.dialer.setFailing(true)
	h.server.drop()

	require.Eventually(t, func() bool { return h.client.State() == StateFallbackPolling }, waitFor, tick)
	assert.Equal(t, 3, h.dialer.dialCount())
}

func TestDisconnectClearsStateAndNeverFallsBack(t *testing.T) {
	h := newClientHarness(t, Config{})
	fallbacks := 0
	h.client.OnFallback(func(context.Context, FallbackSignal) error {
		fallbacks++
		return nil
	})
	var log updateLog
	h.client.OnAnyUpdate(log.any)
	require.NoError(t, h.client.Subscribe(context.Background(), []string{"nfl"}))
	require.NoError(t, h.client.Connect(context.Background()))

	h.client.Disconnect()

	assert.Equal(t, StateDisconnected, h.client.State())
	assert.Empty(t, h.client.Subscriptions())
	_, polling := h.client.FallbackStatus()
	assert.False(t, polling)
	assert.Zero(t, fallbacks)
	assert.Equal(t, 1, h.dialer.dialCount())

	h.client.dispatch("nfl", json.RawMessage(`{}`), "k", time.Now())
	assert.Empty(t, log.snapshot())
}

func TestDisconnectCancelsPendingConnect(t *testing.T) {
	h := newClientHarness(t, Config{})
	h.dialer.gate = make(chan struct{})

	errs := make(chan error, 1)
	go func() { errs <- h.client.Connect(context.Background()) }()
	require.Eventually(t, func() bool { return h.dialer.dialCount() == 1 }, waitFor, tick)

	h.client.Disconnect()
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(waitFor):
		t.Fatal("connect did not return")
	}
	assert.Equal(t, StateDisconnected, h.client.State())
}

func TestUnsubscribe(t *testing.T) {
	h := newClientHarness(t, Config{})
	require.NoError(t, h.client.Subscribe(context.Background(), []string{"nfl", "ncaaf"}))
	require.NoError(t, h.client.Unsubscribe(context.Background(), []string{"ncaaf", "mlb"}))
	assert.Equal(t, []string{"nfl"}, h.client.Subscriptions())
	assert.Zero(t, h.server.eventCount(EventUnsubscribe))

	require.NoError(t, h.client.Connect(context.Background()))
	require.NoError(t, h.client.Unsubscribe(context.Background(), []string{"nfl"}))
	assert.Equal(t, []SportsPayload{{Sports: []string{"nfl"}}}, h.server.framesFor(EventUnsubscribe))
	assert.Empty(t, h.client.Subscriptions())
}

func TestRejectedSubscribeReturnsAckError(t *testing.T) {
	h := newClientHarness(t, Config{})
	h.server.reject[EventSubscribe] = "unknown sport"
	require.NoError(t, h.client.Connect(context.Background()))

	err := h.client.Subscribe(context.Background(), []string{"curling"})
	var ackErr *AckError
	require.True(t, errors.As(err, &ackErr))
	assert.Equal(t, EventSubscribe, ackErr.Event)
	assert.Equal(t, "unknown sport", ackErr.Message)
	assert.Zero(t, h.server.eventCount(EventRequestCurrent))
}

func TestRequestRequiresConnection(t *testing.T) {
	h := newClientHarness(t, Config{})
	_, err := h.client.request(context.Background(), EventSubscribe, SportsPayload{Sports: []string{"nfl"}})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestRequestTimesOutWithoutAck(t *testing.T) {
	h := newClientHarness(t, Config{AckTimeout: 30 * time.Millisecond})
	require.NoError(t, h.client.Connect(context.Background()))
	h.server.mu.Lock()
	h.server.silent = true
	h.server.mu.Unlock()

	err := h.client.Subscribe(context.Background(), []string{"nfl"})
	assert.ErrorIs(t, err, ErrAckTimeout)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, defaultMaxReconnectAttempts, cfg.MaxReconnectAttempts)
	assert.Equal(t, defaultReconnectDelay, cfg.ReconnectDelay)
	assert.Equal(t, defaultReconnectMaxDelay, cfg.ReconnectMaxDelay)
	assert.Equal(t, defaultAckTimeout, cfg.AckTimeout)
	assert.Equal(t, defaultFallbackInterval, cfg.FallbackInterval)
}
