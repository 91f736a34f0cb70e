// Package gamecast wires the live pipeline: decoded snapshots are diffed against the previous
// one for the same game, the resulting play events are queued on that game's card, and
// fallback polling feeds the same path.
package gamecast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/preston-bernstein/gamecast-service/internal/animation"
	"github.com/preston-bernstein/gamecast-service/internal/domain/games"
	"github.com/preston-bernstein/gamecast-service/internal/logging"
	"github.com/preston-bernstein/gamecast-service/internal/metrics"
	"github.com/preston-bernstein/gamecast-service/internal/plays"
	"github.com/preston-bernstein/gamecast-service/internal/providers"
	"github.com/preston-bernstein/gamecast-service/internal/realtime"
)

// Store holds the latest snapshot per game.
type Store interface {
	ListGames() []games.Snapshot
	GetGame(id string) (games.Snapshot, bool)
	Swap(snap games.Snapshot) (games.Snapshot, bool)
	Delete(id string) bool
}

// Analyzer turns a snapshot transition into play events.
type Analyzer interface {
	Analyze(prev, cur games.Snapshot, rawText string) []plays.Event
	Forget(gameID string)
}

// Scheduler queues events on per-game cards.
type Scheduler interface {
	Attach(cardID string, card animation.Card) bool
	Enqueue(cardID string, event plays.Event) bool
	Retire(cardID string, done func()) bool
}

// retiredRetention is how long a finished game's id is remembered so late or repeated
// snapshots do not bring its card back.
const retiredRetention = 6 * time.Hour

// CardProvider supplies the render surface for a game.
type CardProvider interface {
	Card(gameID string) animation.Card
}

// Options carries the Service collaborators. Provider may be nil when no fallback source is
// configured.
type Options struct {
	Store     Store
	Analyzer  Analyzer
	Scheduler Scheduler
	Cards     CardProvider
	Provider  providers.SnapshotProvider
	Logger    *slog.Logger
	Metrics   *metrics.Recorder
}

// Service coordinates the pipeline.
type Service struct {
	store     Store
	analyzer  Analyzer
	scheduler Scheduler
	cards     CardProvider
	provider  providers.SnapshotProvider
	logger    *slog.Logger
	metrics   *metrics.Recorder

	now func() time.Time

	// serializes push and fallback updates so each game sees one ordered stream
	mu       sync.Mutex
	retiring map[string]struct{}
	retired  map[string]time.Time
}

// NewService constructs a Service.
func NewService(opts Options) *Service {
	return &Service{
		store:     opts.Store,
		analyzer:  opts.Analyzer,
		scheduler: opts.Scheduler,
		cards:     opts.Cards,
		provider:  opts.Provider,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		now:       time.Now,
		retiring:  make(map[string]struct{}),
		retired:   make(map[string]time.Time),
	}
}

// Games returns the latest snapshot of every tracked game.
func (s *Service) Games() []games.Snapshot {
	return s.store.ListGames()
}

// Game returns the latest snapshot for one game.
func (s *Service) Game(id string) (games.Snapshot, bool) {
	return s.store.GetGame(id)
}

// HandleUpdate decodes a pushed payload and runs every snapshot in it through the pipeline.
// It matches realtime.AnyUpdateHandler.
func (s *Service) HandleUpdate(sport string, data json.RawMessage, cacheKey string, ts time.Time) {
	snaps, err := DecodeSnapshots(data)
	if err != nil {
		logging.Error(s.logger, "update decode failed", err,
			logging.FieldSport, sport,
			"cache_key", cacheKey,
		)
		return
	}
	s.Ingest(sport, snaps)
}

// HandleFallback refetches every signalled sport through the provider and ingests the
// results. It matches realtime.FallbackHandler.
func (s *Service) HandleFallback(ctx context.Context, signal realtime.FallbackSignal) error {
	if s.provider == nil {
		return providers.ErrProviderUnavailable
	}
	var errs []error
	for _, sport := range signal.Sports {
		snaps, err := s.provider.FetchSnapshots(ctx, sport)
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch %s: %w", sport, err))
			continue
		}
		s.Ingest(sport, snaps)
	}
	return errors.Join(errs...)
}

// Ingest stores each snapshot. The first sighting of a game attaches its card; later
// sightings are analyzed against the stored snapshot and the events queued. It returns the
// number of events queued.
func (s *Service) Ingest(sport string, snaps []games.Snapshot) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneRetiredLocked()
	queued := 0
	for _, snap := range snaps {
		if strings.TrimSpace(snap.ID) == "" {
			logging.Warn(s.logger, "snapshot without id skipped", logging.FieldSport, sport)
			continue
		}
		if snap.League == "" {
			snap.League = strings.ToLower(sport)
		}
		queued += s.ingestOne(snap)
	}
	return queued
}

func (s *Service) ingestOne(snap games.Snapshot) int {
	if s.doneWithLocked(snap.ID) {
		return 0
	}
	prev, seen := s.store.Swap(snap)
	if !seen {
		if snap.Status.Finished() {
			s.retireLocked(snap.ID)
			return 0
		}
		if s.scheduler.Attach(snap.ID, s.cards.Card(snap.ID)) {
			logging.Info(s.logger, "card attached",
				logging.FieldGameID, snap.ID,
				logging.FieldSport, snap.League,
			)
		}
		return 0
	}

	queued := 0
	for _, event := range s.analyzer.Analyze(prev, snap, snap.LastPlayText) {
		s.metrics.RecordEvent(string(event.Kind))
		if s.scheduler.Enqueue(snap.ID, event) {
			queued++
		}
	}
	if snap.Status.Finished() {
		s.retireLocked(snap.ID)
	}
	return queued
}

func (s *Service) doneWithLocked(id string) bool {
	if _, ok := s.retiring[id]; ok {
		return true
	}
	_, ok := s.retired[id]
	return ok
}

// retireLocked lets the card play out its last effects and then drops every trace of the
// game. Later snapshots for it are ignored.
func (s *Service) retireLocked(id string) {
	s.retiring[id] = struct{}{}
	drained := s.scheduler.Retire(id, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.forgetLocked(id)
	})
	if drained {
		s.forgetLocked(id)
	}
}

func (s *Service) forgetLocked(id string) {
	delete(s.retiring, id)
	s.analyzer.Forget(id)
	s.store.Delete(id)
	s.retired[id] = s.now()
	logging.Info(s.logger, "game retired", logging.FieldGameID, id)
}

func (s *Service) pruneRetiredLocked() {
	if len(s.retired) == 0 {
		return
	}
	cutoff := s.now().Add(-retiredRetention)
	for id, at := range s.retired {
		if at.Before(cutoff) {
			delete(s.retired, id)
		}
	}
}

// DecodeSnapshots accepts a list of snapshots, a single snapshot, or an object wrapping the
// list under "games".
func DecodeSnapshots(data json.RawMessage) ([]games.Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var list []games.Snapshot
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode snapshot list: %w", err)
		}
		return list, nil
	case '{':
		var wrapped struct {
			Games *[]games.Snapshot `json:"games"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err == nil && wrapped.Games != nil {
			return *wrapped.Games, nil
		}
		var one games.Snapshot
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		return []games.Snapshot{one}, nil
	default:
		return nil, fmt.Errorf("decode snapshots: unexpected payload %q", trimmed[:1])
	}
}
