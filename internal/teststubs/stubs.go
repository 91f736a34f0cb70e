package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/preston-bernstein/gamecast-service/internal/animation"
	"github.com/preston-bernstein/gamecast-service/internal/domain/games"
	"github.com/preston-bernstein/gamecast-service/internal/field"
)

// StubProvider is a test double for providers.SnapshotProvider.
type StubProvider struct {
	Snapshots []games.Snapshot
	Err       error
	Calls     atomic.Int32
	Notify    chan struct{}

	mu     sync.Mutex
	sports []string
}

// FetchSnapshots returns configured snapshots and error while tracking calls.
func (s *StubProvider) FetchSnapshots(ctx context.Context, sport string) ([]games.Snapshot, error) {
	_ = ctx
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	s.mu.Lock()
	s.sports = append(s.sports, sport)
	s.mu.Unlock()
	s.Calls.Add(1)
	return s.Snapshots, s.Err
}

// Sports returns the sports requested so far, in call order.
func (s *StubProvider) Sports() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sports...)
}

// StubCard is a test double for animation.Card that records what it was asked to show.
type StubCard struct {
	mu       sync.Mutex
	rendered []animation.Effect
	removed  []string
	frames   []field.Frame
	gone     bool
}

func (c *StubCard) Render(e animation.Effect) {
	c.mu.Lock()
	c.rendered = append(c.rendered, e)
	c.mu.Unlock()
}

func (c *StubCard) Remove(taskID string) {
	c.mu.Lock()
	c.removed = append(c.removed, taskID)
	c.mu.Unlock()
}

func (c *StubCard) Marker() field.Marker {
	return stubMarker{card: c}
}

// Rendered returns the effects rendered so far.
func (c *StubCard) Rendered() []animation.Effect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]animation.Effect(nil), c.rendered...)
}

// Removed returns the task ids removed so far.
func (c *StubCard) Removed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.removed...)
}

// Frames returns the marker frames drawn so far.
func (c *StubCard) Frames() []field.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]field.Frame(nil), c.frames...)
}

// MarkerRemoved reports whether the marker was taken off the field.
func (c *StubCard) MarkerRemoved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gone
}

type stubMarker struct {
	card *StubCard
}

func (m stubMarker) Move(f field.Frame) {
	m.card.mu.Lock()
	m.card.frames = append(m.card.frames, f)
	m.card.mu.Unlock()
}

func (m stubMarker) Remove() {
	m.card.mu.Lock()
	m.card.gone = true
	m.card.mu.Unlock()
}

// StubCardProvider hands out StubCards keyed by game id.
type StubCardProvider struct {
	mu    sync.Mutex
	cards map[string]*StubCard
}

// Card returns the card for a game, creating it on first use.
func (p *StubCardProvider) Card(gameID string) animation.Card {
	return p.Get(gameID)
}

// Get returns the concrete stub for a game, creating it on first use.
func (p *StubCardProvider) Get(gameID string) *StubCard {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cards == nil {
		p.cards = make(map[string]*StubCard)
	}
	c, ok := p.cards[gameID]
	if !ok {
		c = &StubCard{}
		p.cards[gameID] = c
	}
	return c
}

// Count reports how many cards were handed out.
func (p *StubCardProvider) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cards)
}
