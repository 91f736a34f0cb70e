package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/preston-bernstein/gamecast-service/internal/logging"
	"github.com/preston-bernstein/gamecast-service/internal/metrics"
	"github.com/preston-bernstein/gamecast-service/internal/poller"
)

const (
	defaultMaxReconnectAttempts = 5
	defaultReconnectDelay       = time.Second
	defaultReconnectMaxDelay    = 30 * time.Second
	defaultAckTimeout           = 10 * time.Second
	defaultFallbackInterval     = 60 * time.Second
)

// Config tunes connection behaviour. Zero values take defaults.
type Config struct {
	URL                  string
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	ReconnectMaxDelay    time.Duration
	AckTimeout           time.Duration
	FallbackInterval     time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = defaultMaxReconnectAttempts
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = defaultReconnectDelay
	}
	if c.ReconnectMaxDelay <= 0 {
		c.ReconnectMaxDelay = defaultReconnectMaxDelay
	}
	if c.AckTimeout <= 0 {
		c.AckTimeout = defaultAckTimeout
	}
	if c.FallbackInterval <= 0 {
		c.FallbackInterval = defaultFallbackInterval
	}
	return c
}

// Options carries collaborators. A nil Dialer uses WebSocketDialer.
type Options struct {
	Dialer  Dialer
	Logger  *slog.Logger
	Metrics *metrics.Recorder
	// NewBackOff overrides the delay policy between connect attempts.
	NewBackOff func() backoff.BackOff
}

type handlerEntry[T any] struct {
	id uint64
	fn T
}

type ackResult struct {
	ack AckPayload
	err error
}

// pendingAck is a request awaiting its acknowledgement.
type pendingAck struct {
	event string
	ch    chan ackResult
}

// attempt is one connect cycle shared by every caller waiting on it.
type attempt struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func newAttempt() *attempt {
	ctx, cancel := context.WithCancel(context.Background())
	return &attempt{ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

func (a *attempt) wait(ctx context.Context) error {
	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *attempt) resolve(err error) {
	a.err = err
	a.cancel()
	close(a.done)
}

// Client is an isolated connection to the live feed. Construct one per feed; there is no
// shared instance.
type Client struct {
	cfg        Config
	dialer     Dialer
	logger     *slog.Logger
	metrics    *metrics.Recorder
	newBackOff func() backoff.BackOff

	writeMu sync.Mutex

	mu         sync.Mutex
	state      State
	conn       Conn
	connGen    uint64
	connecting *attempt
	fallback   *poller.Poller
	subs       map[string]struct{}
	pending    map[string]pendingAck

	nextID    uint64
	bySport   map[string][]handlerEntry[UpdateHandler]
	any       []handlerEntry[AnyUpdateHandler]
	fallbacks []handlerEntry[FallbackHandler]
	observers []handlerEntry[StateHandler]
}

func New(cfg Config, opts Options) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:        cfg,
		dialer:     opts.Dialer,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		newBackOff: opts.NewBackOff,
		state:      StateDisconnected,
		subs:       make(map[string]struct{}),
		pending:    make(map[string]pendingAck),
		bySport:    make(map[string][]handlerEntry[UpdateHandler]),
	}
	if c.dialer == nil {
		c.dialer = WebSocketDialer{}
	}
	if c.newBackOff == nil {
		c.newBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = cfg.ReconnectDelay
			b.MaxInterval = cfg.ReconnectMaxDelay
			b.MaxElapsedTime = 0
			return b
		}
	}
	return c
}

// State reports the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscriptions returns the subscribed sports in sorted order.
func (c *Client) Subscriptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortedSubsLocked()
}

// FallbackStatus reports the fallback poller's health while polling is engaged.
func (c *Client) FallbackStatus() (poller.Status, bool) {
	c.mu.Lock()
	fb := c.fallback
	c.mu.Unlock()
	if fb == nil {
		return poller.Status{}, false
	}
	return fb.Status(), true
}

// Connect resolves once the client is connected. Concurrent callers share one attempt; when
// every attempt fails the client switches to fallback polling and ErrReconnectExhausted is
// returned.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnected {
		c.mu.Unlock()
		return nil
	}
	if a := c.connecting; a != nil {
		c.mu.Unlock()
		return a.wait(ctx)
	}
	a := newAttempt()
	c.connecting = a
	from, changed := c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	if changed {
		c.notifyState(from, StateConnecting)
	}
	go c.run(a)
	return a.wait(ctx)
}

// Disconnect closes the connection and clears subscriptions, handlers and fallback polling.
// It never engages fallback.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connGen++
	a := c.connecting
	c.connecting = nil
	fb := c.fallback
	c.fallback = nil
	c.failPendingLocked(ErrClosed)
	c.subs = make(map[string]struct{})
	c.bySport = make(map[string][]handlerEntry[UpdateHandler])
	c.any = nil
	c.fallbacks = nil
	from, changed := c.setStateLocked(StateDisconnected)
	c.mu.Unlock()

	if a != nil {
		a.cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
	if fb != nil {
		_ = fb.Stop(context.Background())
	}
	if changed {
		c.notifyState(from, StateDisconnected)
	}

	c.mu.Lock()
	c.observers = nil
	c.mu.Unlock()
	logging.Info(c.logger, "realtime disconnected")
}

// Subscribe adds sports to the subscription set. While disconnected the sports are replayed
// on the next connect; while connected they are subscribed immediately and their current
// state is requested and dispatched.
func (c *Client) Subscribe(ctx context.Context, sports []string) error {
	c.mu.Lock()
	var added []string
	for _, s := range normalizeSports(sports) {
		if _, ok := c.subs[s]; ok {
			continue
		}
		c.subs[s] = struct{}{}
		added = append(added, s)
	}
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || len(added) == 0 {
		return nil
	}
	return c.subscribeRemote(ctx, added)
}

// Unsubscribe removes sports from the subscription set. It is safe while disconnected.
func (c *Client) Unsubscribe(ctx context.Context, sports []string) error {
	c.mu.Lock()
	var removed []string
	for _, s := range normalizeSports(sports) {
		if _, ok := c.subs[s]; !ok {
			continue
		}
		delete(c.subs, s)
		removed = append(removed, s)
	}
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || len(removed) == 0 {
		return nil
	}
	ack, err := c.request(ctx, EventUnsubscribe, SportsPayload{Sports: removed})
	if err != nil {
		return err
	}
	if !ack.Success {
		return &AckError{Event: EventUnsubscribe, Message: ack.Error}
	}
	return nil
}

// OnUpdate registers a handler for one sport and returns its unregister func.
func (c *Client) OnUpdate(sport string, h UpdateHandler) func() {
	sport = strings.ToLower(strings.TrimSpace(sport))
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextHandlerIDLocked()
	c.bySport[sport] = append(c.bySport[sport], handlerEntry[UpdateHandler]{id: id, fn: h})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.bySport[sport] = removeEntry(c.bySport[sport], id)
	}
}

// OnAnyUpdate registers a handler for every sport and returns its unregister func.
func (c *Client) OnAnyUpdate(h AnyUpdateHandler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextHandlerIDLocked()
	c.any = append(c.any, handlerEntry[AnyUpdateHandler]{id: id, fn: h})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.any = removeEntry(c.any, id)
	}
}

// OnFallback registers a handler for fallback signals and returns its unregister func.
func (c *Client) OnFallback(h FallbackHandler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextHandlerIDLocked()
	c.fallbacks = append(c.fallbacks, handlerEntry[FallbackHandler]{id: id, fn: h})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.fallbacks = removeEntry(c.fallbacks, id)
	}
}

// OnStateChange registers a state observer and returns its unregister func.
func (c *Client) OnStateChange(h StateHandler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextHandlerIDLocked()
	c.observers = append(c.observers, handlerEntry[StateHandler]{id: id, fn: h})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.observers = removeEntry(c.observers, id)
	}
}

// run dials with bounded retries and settles the attempt.
func (c *Client) run(a *attempt) {
	var b backoff.BackOff = c.newBackOff()
	b = backoff.WithMaxRetries(b, uint64(c.cfg.MaxReconnectAttempts-1))
	b = backoff.WithContext(b, a.ctx)

	tries := 0
	var conn Conn
	err := backoff.Retry(func() error {
		tries++
		dialed, err := c.dialer.Dial(a.ctx, c.cfg.URL)
		if a.ctx.Err() != nil {
			if dialed != nil {
				_ = dialed.Close()
			}
			return backoff.Permanent(ErrClosed)
		}
		c.metrics.RecordReconnectAttempt(err)
		if err != nil {
			logging.Warn(c.logger, "realtime connect attempt failed",
				logging.FieldAttempt, tries,
				"max_attempts", c.cfg.MaxReconnectAttempts,
				"error", err,
			)
			return err
		}
		conn = dialed
		return nil
	}, b)

	if err != nil {
		if a.ctx.Err() != nil {
			a.resolve(ErrClosed)
			return
		}
		a.resolve(c.engageFallback(a, tries, err))
		return
	}
	a.resolve(c.established(a, conn))
}

func (c *Client) established(a *attempt, conn Conn) error {
	c.mu.Lock()
	if c.connecting != a {
		c.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	c.connecting = nil
	c.conn = conn
	c.connGen++
	gen := c.connGen
	fb := c.fallback
	c.fallback = nil
	sports := c.sortedSubsLocked()
	from, changed := c.setStateLocked(StateConnected)
	c.mu.Unlock()

	go c.readLoop(conn, gen)
	if fb != nil {
		_ = fb.Stop(context.Background())
		logging.Info(c.logger, "realtime fallback polling stopped")
	}
	if changed {
		c.notifyState(from, StateConnected)
	}
	logging.Info(c.logger, "realtime connected", "url", c.cfg.URL)

	if len(sports) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*c.cfg.AckTimeout)
		defer cancel()
		if err := c.subscribeRemote(ctx, sports); err != nil {
			logging.Error(c.logger, "realtime subscription replay failed", err, "sports", sports)
		}
	}
	return nil
}

func (c *Client) engageFallback(a *attempt, tries int, cause error) error {
	c.mu.Lock()
	if c.connecting != a {
		c.mu.Unlock()
		return ErrClosed
	}
	c.connecting = nil
	var started *poller.Poller
	if c.fallback == nil {
		c.fallback = poller.New("realtime-fallback", c.fallbackTick, c.logger, c.metrics, c.cfg.FallbackInterval)
		started = c.fallback
	}
	from, changed := c.setStateLocked(StateFallbackPolling)
	c.mu.Unlock()

	if started != nil {
		c.metrics.RecordFallback()
		started.Start(context.Background())
	}
	if changed {
		c.notifyState(from, StateFallbackPolling)
	}
	logging.Warn(c.logger, "realtime fallback polling engaged",
		logging.FieldAttempt, tries,
		logging.FieldDurationMS, c.cfg.FallbackInterval.Milliseconds(),
	)
	return fmt.Errorf("%w after %d attempts: %w", ErrReconnectExhausted, tries, cause)
}

func (c *Client) fallbackTick(ctx context.Context) error {
	c.mu.Lock()
	signal := FallbackSignal{Sports: c.sortedSubsLocked(), At: time.Now()}
	handlers := append([]handlerEntry[FallbackHandler](nil), c.fallbacks...)
	c.mu.Unlock()

	var errs []error
	for _, h := range handlers {
		c.safeCall("fallback", func() {
			if err := h.fn(ctx, signal); err != nil {
				errs = append(errs, err)
			}
		})
	}
	return errors.Join(errs...)
}

func (c *Client) readLoop(conn Conn, gen uint64) {
	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			c.handleDrop(gen, err)
			return
		}
		c.handleFrame(f)
	}
}

func (c *Client) handleFrame(f Frame) {
	switch {
	case f.Ack != "":
		var res ackResult
		if err := json.Unmarshal(f.Data, &res.ack); err != nil && len(f.Data) > 0 {
			res.err = fmt.Errorf("decode ack: %w", err)
		}
		c.mu.Lock()
		p, ok := c.pending[f.Ack]
		delete(c.pending, f.Ack)
		c.mu.Unlock()
		if !ok {
			return
		}
		// Current state is dispatched here so later pushes cannot overtake it.
		if p.event == EventRequestCurrent && res.err == nil && res.ack.Success {
			res.err = c.dispatchCurrent(res.ack.Data)
		}
		p.ch <- res
	case f.Event == EventUpdate:
		var u UpdatePayload
		if err := json.Unmarshal(f.Data, &u); err != nil {
			logging.Error(c.logger, "realtime update decode failed", err)
			return
		}
		c.dispatch(strings.ToLower(u.Sport), u.Data, u.CacheKey, u.Time())
	default:
		logging.Warn(c.logger, "realtime frame ignored", "event", f.Event)
	}
}

func (c *Client) handleDrop(gen uint64, cause error) {
	c.mu.Lock()
	if gen != c.connGen || c.state != StateConnected {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.conn = nil
	c.failPendingLocked(ErrNotConnected)
	a := newAttempt()
	c.connecting = a
	from, changed := c.setStateLocked(StateReconnecting)
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	logging.Warn(c.logger, "realtime connection dropped", "error", cause)
	if changed {
		c.notifyState(from, StateReconnecting)
	}
	go c.run(a)
}

func (c *Client) subscribeRemote(ctx context.Context, sports []string) error {
	ack, err := c.request(ctx, EventSubscribe, SportsPayload{Sports: sports})
	if err != nil {
		return err
	}
	if !ack.Success {
		return &AckError{Event: EventSubscribe, Message: ack.Error}
	}
	return c.requestCurrent(ctx, sports)
}

func (c *Client) requestCurrent(ctx context.Context, sports []string) error {
	ack, err := c.request(ctx, EventRequestCurrent, SportsPayload{Sports: sports})
	if err != nil {
		return err
	}
	if !ack.Success {
		return &AckError{Event: EventRequestCurrent, Message: ack.Error}
	}
	return nil
}

// dispatchCurrent runs on the read goroutine, ahead of any push that follows the ack.
func (c *Client) dispatchCurrent(data json.RawMessage) error {
	if len(data) == 0 {
		return nil
	}
	var current CurrentState
	if err := json.Unmarshal(data, &current); err != nil {
		return fmt.Errorf("decode current state: %w", err)
	}
	now := time.Now()
	for _, sport := range sortedKeys(current) {
		byKey := current[sport]
		for _, key := range sortedKeys(byKey) {
			c.dispatch(strings.ToLower(sport), byKey[key], key, now)
		}
	}
	return nil
}

// request sends one frame and waits for its acknowledgement.
func (c *Client) request(ctx context.Context, event string, payload any) (AckPayload, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return AckPayload{}, fmt.Errorf("encode %s: %w", event, err)
	}

	c.mu.Lock()
	conn := c.conn
	if conn == nil || c.state != StateConnected {
		c.mu.Unlock()
		return AckPayload{}, ErrNotConnected
	}
	id := uuid.NewString()
	ch := make(chan ackResult, 1)
	c.pending[id] = pendingAck{event: event, ch: ch}
	c.mu.Unlock()

	c.writeMu.Lock()
	err = conn.WriteJSON(Frame{ID: id, Event: event, Data: data})
	c.writeMu.Unlock()
	if err != nil {
		c.dropPending(id)
		return AckPayload{}, fmt.Errorf("send %s: %w", event, err)
	}

	timer := time.NewTimer(c.cfg.AckTimeout)
	defer timer.Stop()
	select {
	case res := <-ch:
		return res.ack, res.err
	case <-timer.C:
		c.dropPending(id)
		return AckPayload{}, fmt.Errorf("%s: %w", event, ErrAckTimeout)
	case <-ctx.Done():
		c.dropPending(id)
		return AckPayload{}, ctx.Err()
	}
}

func (c *Client) dropPending(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) failPendingLocked(err error) {
	for id, p := range c.pending {
		p.ch <- ackResult{err: err}
		delete(c.pending, id)
	}
}

// dispatch runs handlers in registration order. A panicking handler is logged and skipped.
func (c *Client) dispatch(sport string, data json.RawMessage, cacheKey string, ts time.Time) {
	c.metrics.RecordUpdate(sport)
	c.mu.Lock()
	specific := append([]handlerEntry[UpdateHandler](nil), c.bySport[sport]...)
	wildcard := append([]handlerEntry[AnyUpdateHandler](nil), c.any...)
	c.mu.Unlock()

	for _, h := range specific {
		c.safeCall(sport, func() { h.fn(data, cacheKey, ts) })
	}
	for _, h := range wildcard {
		c.safeCall(sport, func() { h.fn(sport, data, cacheKey, ts) })
	}
}

func (c *Client) safeCall(sport string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.metrics.RecordHandlerFault()
			logging.Error(c.logger, "realtime handler panicked", fmt.Errorf("panic: %v", r),
				logging.FieldSport, sport,
			)
		}
	}()
	fn()
}

func (c *Client) setStateLocked(to State) (State, bool) {
	from := c.state
	if from == to {
		return from, false
	}
	c.state = to
	c.metrics.RecordStateTransition(string(to))
	return from, true
}

func (c *Client) notifyState(from, to State) {
	c.mu.Lock()
	observers := append([]handlerEntry[StateHandler](nil), c.observers...)
	c.mu.Unlock()
	logging.Info(c.logger, "realtime state changed",
		"from", string(from),
		logging.FieldState, string(to),
	)
	for _, o := range observers {
		c.safeCall("", func() { o.fn(from, to) })
	}
}

func (c *Client) nextHandlerIDLocked() uint64 {
	c.nextID++
	return c.nextID
}

func (c *Client) sortedSubsLocked() []string {
	out := make([]string, 0, len(c.subs))
	for s := range c.subs {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func normalizeSports(sports []string) []string {
	out := make([]string, 0, len(sports))
	for _, s := range sports {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func removeEntry[T any](entries []handlerEntry[T], id uint64) []handlerEntry[T] {
	out := entries[:0]
	for _, e := range entries {
		if e.id != id {
			out = append(out, e)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
