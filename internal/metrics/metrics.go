package metrics

import (
	"sync"
	"time"
)

type providerStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

type realtimeStats struct {
	transitions       map[string]int
	reconnectAttempts int
	fallbacks         int
	handlerFaults     int
	updates           map[string]int
}

type effectStats struct {
	events     map[string]int
	played     map[string]int
	suppressed int
	cancelled  int
}

// Recorder captures lightweight, in-memory metrics about providers, the realtime transport
// and the effect pipeline, forwarding to OpenTelemetry instruments when configured.
type Recorder struct {
	mu       sync.Mutex
	stats    map[string]*providerStats
	realtime realtimeStats
	effects  effectStats
	otel     *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*providerStats),
		realtime: realtimeStats{
			transitions: make(map[string]int),
			updates:     make(map[string]int),
		},
		effects: effectStats{
			events: make(map[string]int),
			played: make(map[string]int),
		},
		otel: otel,
	}
}

// RecordProviderAttempt increments counters for a provider call and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(provider)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, duration, err)
	}
}

// RecordRateLimit tracks that a provider response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(provider string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(provider)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRateLimit(provider, retryAfter)
	}
}

// ProviderCalls returns the total attempts recorded for a provider.
func (r *Recorder) ProviderCalls(provider string) int {
	return r.Snapshot(provider).Calls
}

// ProviderErrors returns the total failed attempts recorded for a provider.
func (r *Recorder) ProviderErrors(provider string) int {
	return r.Snapshot(provider).Errors
}

// RateLimitHits returns the number of rate limit events seen for a provider.
func (r *Recorder) RateLimitHits(provider string) int {
	return r.Snapshot(provider).RateLimitHits
}

// LastRetryAfter returns the most recent Retry-After recorded for a provider.
func (r *Recorder) LastRetryAfter(provider string) time.Duration {
	return r.Snapshot(provider).LastRetryAfter
}

// LastCallLatency returns the last recorded latency for a provider call.
func (r *Recorder) LastCallLatency(provider string) time.Duration {
	return r.Snapshot(provider).LastCallLatency
}

// Snapshot returns a copy of the current stats for the provider.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(provider string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[provider]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// RecordStateTransition counts a transport state change into the given state.
func (r *Recorder) RecordStateTransition(to string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.realtime.transitions[to]++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordTransition(to)
	}
}

// RecordReconnectAttempt counts one dial attempt made by the transport.
func (r *Recorder) RecordReconnectAttempt(err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.realtime.reconnectAttempts++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordReconnect(err)
	}
}

// RecordFallback counts fallback polling engagements.
func (r *Recorder) RecordFallback() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.realtime.fallbacks++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.fallbacks, 1)
	}
}

// RecordUpdate counts a pushed update for a sport.
func (r *Recorder) RecordUpdate(sport string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.realtime.updates[sport]++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordUpdate(sport)
	}
}

// RecordHandlerFault counts a recovered panic from a caller-registered handler.
func (r *Recorder) RecordHandlerFault() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.realtime.handlerFaults++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.handlerFaults, 1)
	}
}

// RealtimeSnapshot is a copy of the transport counters.
type RealtimeSnapshot struct {
	Transitions       map[string]int
	ReconnectAttempts int
	Fallbacks         int
	HandlerFaults     int
	Updates           map[string]int
}

// Realtime returns a copy of the transport counters.
func (r *Recorder) Realtime() RealtimeSnapshot {
	if r == nil {
		return RealtimeSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return RealtimeSnapshot{
		Transitions:       copyCounts(r.realtime.transitions),
		ReconnectAttempts: r.realtime.reconnectAttempts,
		Fallbacks:         r.realtime.fallbacks,
		HandlerFaults:     r.realtime.handlerFaults,
		Updates:           copyCounts(r.realtime.updates),
	}
}

// RecordEvent counts a semantic event emitted by the analyzer.
func (r *Recorder) RecordEvent(kind string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.effects.events[kind]++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.events, 1, kindAttr(kind))
	}
}

// RecordAnimation counts an animation outcome: played, suppressed or cancelled.
func (r *Recorder) RecordAnimation(kind, outcome string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	switch outcome {
	case OutcomeSuppressed:
		r.effects.suppressed++
	case OutcomeCancelled:
		r.effects.cancelled++
	default:
		r.effects.played[kind]++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordAnimation(kind, outcome)
	}
}

// Animation outcomes recorded by RecordAnimation.
const (
	OutcomePlayed     = "played"
	OutcomeSuppressed = "suppressed"
	OutcomeCancelled  = "cancelled"
)

// EffectsSnapshot is a copy of the effect pipeline counters.
type EffectsSnapshot struct {
	Events     map[string]int
	Played     map[string]int
	Suppressed int
	Cancelled  int
}

// Effects returns a copy of the effect pipeline counters.
func (r *Recorder) Effects() EffectsSnapshot {
	if r == nil {
		return EffectsSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return EffectsSnapshot{
		Events:     copyCounts(r.effects.events),
		Played:     copyCounts(r.effects.played),
		Suppressed: r.effects.suppressed,
		Cancelled:  r.effects.cancelled,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordPollerCycle tracks poller cycles and errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordPoller(duration, err)
}

func (r *Recorder) ensureStatsLocked(provider string) *providerStats {
	stats, ok := r.stats[provider]
	if !ok {
		stats = &providerStats{}
		r.stats[provider] = stats
	}
	return stats
}

func copyCounts(src map[string]int) map[string]int {
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
