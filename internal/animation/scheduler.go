// Package animation owns one FIFO effect queue per game card and guarantees that at most one
// effect is visible on a card at any time.
package animation

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/preston-bernstein/gamecast-service/internal/field"
	"github.com/preston-bernstein/gamecast-service/internal/logging"
	"github.com/preston-bernstein/gamecast-service/internal/metrics"
	"github.com/preston-bernstein/gamecast-service/internal/plays"
	"github.com/preston-bernstein/gamecast-service/internal/timeutil"
)

const (
	defaultStartupGrace     = 3 * time.Second
	defaultExplanationDelay = 8 * time.Second
	defaultPathDuration     = 3 * time.Second
)

// Options configures a Scheduler. Zero durations take the package defaults.
type Options struct {
	Clock            timeutil.Clock
	Geometry         field.Geometry
	StartupGrace     time.Duration
	ExplanationDelay time.Duration
	PathDuration     time.Duration
	Logger           *slog.Logger
	Metrics          *metrics.Recorder
	// OnComplete observes tasks that ran to completion. It is not called for cleared or
	// destroyed tasks.
	OnComplete func(Task)
}

// Scheduler serializes effects per card. Cards never block each other.
type Scheduler struct {
	opts  Options
	clock timeutil.Clock

	mu     sync.Mutex
	queues map[string]*queue
	seq    int
	closed bool
}

type queue struct {
	id      string
	card    Card
	shownAt time.Time

	pending []*Task
	active  *Task
	timer   timeutil.Timer
	anim    *field.Animation

	turnovers    int
	explained    bool
	explainTimer timeutil.Timer

	retiring  bool
	onRetired func()
}

func NewScheduler(opts Options) *Scheduler {
	if opts.StartupGrace <= 0 {
		opts.StartupGrace = defaultStartupGrace
	}
	if opts.ExplanationDelay <= 0 {
		opts.ExplanationDelay = defaultExplanationDelay
	}
	if opts.PathDuration <= 0 {
		opts.PathDuration = defaultPathDuration
	}
	if opts.Geometry.Validate() != nil {
		opts.Geometry = field.DefaultGeometry()
	}
	return &Scheduler{
		opts:   opts,
		clock:  timeutil.OrReal(opts.Clock),
		queues: make(map[string]*queue),
	}
}

// Attach registers a card and records when it was first shown. Attaching an id that is
// already registered keeps the existing card and reports false.
func (s *Scheduler) Attach(cardID string, card Card) bool {
	if card == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if _, ok := s.queues[cardID]; ok {
		return false
	}
	s.queues[cardID] = &queue{id: cardID, card: card, shownAt: s.clock.Now()}
	return true
}

// Enqueue adds an event to a card's queue and starts it if the card is idle. Events for
// unknown cards, or arriving within the startup grace window, are dropped.
func (s *Scheduler) Enqueue(cardID string, event plays.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queues[cardID]
	if !ok || s.closed {
		return false
	}
	now := s.clock.Now()
	if now.Sub(q.shownAt) < s.opts.StartupGrace {
		s.opts.Metrics.RecordAnimation(string(event.Kind), metrics.OutcomeSuppressed)
		logging.Info(s.opts.Logger, "effect suppressed during startup grace",
			logging.FieldCardID, cardID,
			logging.FieldEventKind, string(event.Kind),
		)
		return false
	}

	q.pending = append(q.pending, newTask(s.nextIDLocked(cardID), cardID, event, now))
	s.startNextLocked(q)
	return true
}

// Clear cancels the active effect and drops pending ones. The card stays attached unless it
// was retiring, in which case it is detached now.
func (s *Scheduler) Clear(cardID string) {
	s.mu.Lock()
	q, ok := s.queues[cardID]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.cancelLocked(q)
	done := s.finishRetireLocked(q)
	s.mu.Unlock()
	if done != nil {
		done()
	}
}

// Retire detaches a card once its queue drains, including a pending turnover explanation.
// It reports true when nothing was left to play: the card is detached before it returns and
// done is not called. Otherwise done runs after the last effect finishes. Destroy and Close
// discard a retiring card without calling done.
func (s *Scheduler) Retire(cardID string, done func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[cardID]
	if !ok {
		return true
	}
	if idle(q) {
		s.destroyLocked(q)
		return true
	}
	if !q.retiring {
		q.retiring = true
		q.onRetired = done
	}
	return false
}

func idle(q *queue) bool {
	return q.active == nil && len(q.pending) == 0 && q.explainTimer == nil
}

// finishRetireLocked detaches a drained retiring queue and returns its callback.
func (s *Scheduler) finishRetireLocked(q *queue) func() {
	if !q.retiring || !idle(q) || s.queues[q.id] != q {
		return nil
	}
	done := q.onRetired
	s.destroyLocked(q)
	return done
}

// Destroy discards everything queued for a card and detaches it. No completion callbacks fire.
func (s *Scheduler) Destroy(cardID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q, ok := s.queues[cardID]; ok {
		s.destroyLocked(q)
	}
}

func (s *Scheduler) destroyLocked(q *queue) {
	s.cancelLocked(q)
	q.onRetired = nil
	delete(s.queues, q.id)
}

// Close destroys every card. Later calls to Attach and Enqueue are ignored.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, q := range s.queues {
		s.cancelLocked(q)
		delete(s.queues, id)
	}
	s.closed = true
}

// QueueSnapshot is a point-in-time view of one card's queue.
type QueueSnapshot struct {
	CardID    string     `json:"cardId"`
	ShownAt   time.Time  `json:"shownAt"`
	Active    *TaskView  `json:"active,omitempty"`
	Pending   []TaskView `json:"pending"`
	Turnovers int        `json:"turnovers"`
	Retiring  bool       `json:"retiring,omitempty"`
}

// Snapshot reports a card's queue, or false if the card is not attached.
func (s *Scheduler) Snapshot(cardID string) (QueueSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[cardID]
	if !ok {
		return QueueSnapshot{}, false
	}
	snap := QueueSnapshot{
		CardID:    cardID,
		ShownAt:   q.shownAt,
		Pending:   make([]TaskView, 0, len(q.pending)),
		Turnovers: q.turnovers,
		Retiring:  q.retiring,
	}
	if q.active != nil {
		v := q.active.view()
		snap.Active = &v
	}
	for _, t := range q.pending {
		snap.Pending = append(snap.Pending, t.view())
	}
	return snap, true
}

// Cards lists attached card ids in sorted order.
func (s *Scheduler) Cards() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.queues))
	for id := range s.queues {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Scheduler) nextIDLocked(cardID string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", cardID, s.seq)
}

func (s *Scheduler) startNextLocked(q *queue) {
	if q.active != nil || len(q.pending) == 0 {
		return
	}
	t := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]

	t.State = StatePlaying
	t.StartedAt = s.clock.Now()
	q.active = t

	if t.Kind.Turnover() && !t.Event.Negated {
		q.turnovers++
		if q.turnovers == 2 && !q.explained {
			q.explained = true
			event := t.Event
			q.explainTimer = s.clock.AfterFunc(s.opts.ExplanationDelay, func() {
				s.enqueueExplanation(q, event)
			})
		}
	}
	s.beginPhaseLocked(q, t)
}

func (s *Scheduler) beginPhaseLocked(q *queue, t *Task) {
	ph := t.phases[t.phaseIdx]
	q.card.Render(ph.effect)
	if ph.withPath {
		s.startPathLocked(q, t)
	}
	q.timer = s.clock.AfterFunc(ph.duration, func() {
		s.phaseDone(q, t)
	})
}

func (s *Scheduler) startPathLocked(q *queue, t *Task) {
	marker := q.card.Marker()
	if marker == nil {
		return
	}
	path := pathFor(s.opts.Geometry, t.Event)
	if path == nil {
		return
	}
	if q.anim != nil {
		q.anim.Cancel()
	}
	duration := s.opts.PathDuration
	if t.Kind == plays.KindPenalty {
		duration = penaltyDetailPhase
	}
	q.anim = field.NewAnimation(field.AnimationConfig{
		Geometry: s.opts.Geometry,
		Path:     path,
		Marker:   marker,
		Duration: duration,
		Clock:    s.clock,
	})
	q.anim.Start()
}

func (s *Scheduler) phaseDone(q *queue, t *Task) {
	s.mu.Lock()
	if s.queues[q.id] != q || q.active != t {
		s.mu.Unlock()
		return
	}
	t.phaseIdx++
	if t.phaseIdx < len(t.phases) {
		s.beginPhaseLocked(q, t)
		s.mu.Unlock()
		return
	}

	q.timer = nil
	if q.anim != nil {
		q.anim.Cancel()
		q.anim = nil
	}
	q.card.Remove(t.ID)
	t.State = StateCompleted
	t.FinishedAt = s.clock.Now()
	q.active = nil
	s.opts.Metrics.RecordAnimation(string(t.Kind), metrics.OutcomePlayed)
	done := *t
	s.startNextLocked(q)
	retired := s.finishRetireLocked(q)
	s.mu.Unlock()

	if s.opts.OnComplete != nil {
		s.opts.OnComplete(done)
	}
	if retired != nil {
		retired()
	}
}

func (s *Scheduler) enqueueExplanation(q *queue, event plays.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queues[q.id] != q || q.explainTimer == nil {
		return
	}
	q.explainTimer = nil
	q.pending = append(q.pending, newExplanationTask(s.nextIDLocked(q.id), q.id, event, s.clock.Now()))
	s.startNextLocked(q)
}

func (s *Scheduler) cancelLocked(q *queue) {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	if q.explainTimer != nil {
		q.explainTimer.Stop()
		q.explainTimer = nil
	}
	if q.anim != nil {
		q.anim.Cancel()
		q.anim = nil
	}
	if t := q.active; t != nil {
		q.card.Remove(t.ID)
		t.State = StateCancelled
		t.FinishedAt = s.clock.Now()
		q.active = nil
		s.opts.Metrics.RecordAnimation(string(t.Kind), metrics.OutcomeCancelled)
	}
	for _, t := range q.pending {
		t.State = StateCancelled
		s.opts.Metrics.RecordAnimation(string(t.Kind), metrics.OutcomeCancelled)
	}
	q.pending = nil
}
