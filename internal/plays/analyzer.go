// Package plays turns a pair of game snapshots and the latest play-by-play text into named
// events such as touchdowns, turnovers, and penalties.
package plays

import (
	"strings"
	"sync"

	"github.com/preston-bernstein/gamecast-service/internal/domain/games"
	"github.com/preston-bernstein/gamecast-service/internal/domain/teams"
)

// firstDownMemory bounds how many first-down keys are remembered per game.
const firstDownMemory = 64

// Analyzer applies the rule table to snapshot pairs. Apart from first-down deduplication it
// holds no state, so identical inputs produce identical output.
type Analyzer struct {
	lookup teams.Lookup
	rules  []rule

	mu   sync.Mutex
	seen map[string]*keyRing
}

// NewAnalyzer builds an analyzer resolving team abbreviations through lookup. A nil lookup
// limits attribution to the two teams in each snapshot.
func NewAnalyzer(lookup teams.Lookup) *Analyzer {
	return &Analyzer{
		lookup: lookup,
		rules:  ruleTable,
		seen:   make(map[string]*keyRing),
	}
}

// Analyze returns the events implied by moving from prev to cur. rawText falls back to
// cur.LastPlayText when empty. Penalty events always come last.
func (a *Analyzer) Analyze(prev, cur games.Snapshot, rawText string) []Event {
	if rawText == "" {
		rawText = cur.LastPlayText
	}
	p := &play{
		prev:   prev,
		cur:    cur,
		raw:    rawText,
		lower:  strings.ToLower(rawText),
		lookup: a.lookup,
	}

	for _, r := range a.rules {
		if !r.match(p) {
			continue
		}
		for _, e := range r.build(p) {
			if e.Kind == KindFirstDown && !a.remember(cur.ID, firstDownKey(cur, rawText)) {
				continue
			}
			p.emitted = append(p.emitted, e)
		}
	}

	if negated(p.lower) {
		for i := range p.emitted {
			if p.emitted[i].Kind != KindPenalty {
				p.emitted[i].Negated = true
			}
		}
	}
	return p.emitted
}

// Forget drops first-down memory for a game that is no longer tracked.
func (a *Analyzer) Forget(gameID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.seen, gameID)
}

func firstDownKey(cur games.Snapshot, rawText string) string {
	return strings.TrimSpace(cur.DownDistanceText) + "|" + strings.TrimSpace(rawText)
}

// remember records key for a game and reports whether it was new.
func (a *Analyzer) remember(gameID, key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	ring, ok := a.seen[gameID]
	if !ok {
		ring = newKeyRing(firstDownMemory)
		a.seen[gameID] = ring
	}
	return ring.add(key)
}

// keyRing is a fixed-size set that evicts its oldest key.
type keyRing struct {
	keys  map[string]struct{}
	order []string
	limit int
}

func newKeyRing(limit int) *keyRing {
	return &keyRing{keys: make(map[string]struct{}, limit), limit: limit}
}

func (r *keyRing) add(key string) bool {
	if _, ok := r.keys[key]; ok {
		return false
	}
	if len(r.order) >= r.limit {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.keys, oldest)
	}
	r.keys[key] = struct{}{}
	r.order = append(r.order, key)
	return true
}
