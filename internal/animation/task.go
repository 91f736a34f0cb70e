package animation

import (
	"fmt"
	"strings"
	"time"

	"github.com/preston-bernstein/gamecast-service/internal/plays"
)

// KindExplanation is the long-form recap shown after a card's second turnover.
const KindExplanation plays.Kind = "turnover-explanation"

// State is a task's position in its lifecycle.
type State string

const (
	StatePending   State = "pending"
	StatePlaying   State = "playing"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// Phase labels one render of a task. Penalties render twice.
type Phase string

const (
	PhaseMain        Phase = "main"
	PhaseInitial     Phase = "initial"
	PhaseDetail      Phase = "detail"
	PhaseExplanation Phase = "explanation"
)

const (
	touchdownDuration     = 7000 * time.Millisecond
	penaltyInitialPhase   = 5000 * time.Millisecond
	penaltyDetailPhase    = 6000 * time.Millisecond
	timeoutDuration       = 5000 * time.Millisecond
	defaultEffectDuration = 8000 * time.Millisecond
)

// Duration returns how long an effect of the given kind stays on a card.
func Duration(kind plays.Kind) time.Duration {
	switch kind {
	case plays.KindTouchdown:
		return touchdownDuration
	case plays.KindPenalty:
		return penaltyInitialPhase + penaltyDetailPhase
	case plays.KindTimeout:
		return timeoutDuration
	default:
		return defaultEffectDuration
	}
}

// Effect is what a card is asked to render.
type Effect struct {
	TaskID     string            `json:"taskId"`
	CardID     string            `json:"cardId"`
	Kind       plays.Kind        `json:"kind"`
	Phase      Phase             `json:"phase"`
	Title      string            `json:"title"`
	Detail     string            `json:"detail,omitempty"`
	Team       plays.TeamRef     `json:"team"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Negated    bool              `json:"negated"`
	Highlights []string          `json:"highlights,omitempty"`
	DurationMS int64             `json:"durationMs"`
}

type phase struct {
	effect   Effect
	duration time.Duration
	withPath bool
}

// Task is one on-screen effect owned by a card's queue.
type Task struct {
	ID         string
	CardID     string
	Kind       plays.Kind
	Event      plays.Event
	Duration   time.Duration
	State      State
	EnqueuedAt time.Time
	StartedAt  time.Time
	FinishedAt time.Time

	phases   []phase
	phaseIdx int
}

func newTask(id, cardID string, event plays.Event, now time.Time) *Task {
	t := &Task{
		ID:         id,
		CardID:     cardID,
		Kind:       event.Kind,
		Event:      event,
		State:      StatePending,
		EnqueuedAt: now,
	}
	t.phases = buildPhases(event)
	for _, ph := range t.phases {
		t.Duration += ph.duration
	}
	t.stamp()
	return t
}

func newExplanationTask(id, cardID string, event plays.Event, now time.Time) *Task {
	t := &Task{
		ID:         id,
		CardID:     cardID,
		Kind:       KindExplanation,
		Event:      event,
		State:      StatePending,
		EnqueuedAt: now,
		Duration:   defaultEffectDuration,
	}
	text := event.Description
	if text == "" {
		text = event.Text
	}
	t.phases = []phase{{
		effect: Effect{
			Kind:       KindExplanation,
			Phase:      PhaseExplanation,
			Title:      "WHAT HAPPENED",
			Detail:     text,
			Team:       event.Team,
			Highlights: Highlights(text),
		},
		duration: defaultEffectDuration,
	}}
	t.stamp()
	return t
}

func buildPhases(e plays.Event) []phase {
	base := Effect{
		Kind:     e.Kind,
		Phase:    PhaseMain,
		Title:    e.Text,
		Team:     e.Team,
		Metadata: e.Metadata,
		Negated:  e.Negated,
	}
	if e.Negated {
		base.Title = "NO PLAY"
		base.Detail = e.Text
		return []phase{{effect: base, duration: Duration(e.Kind)}}
	}
	if e.Kind != plays.KindPenalty {
		return []phase{{effect: base, duration: Duration(e.Kind), withPath: true}}
	}

	initial := base
	initial.Phase = PhaseInitial
	initial.Title = "FLAG ON THE PLAY"
	detail := base
	detail.Phase = PhaseDetail
	detail.Detail = penaltyDetail(e)
	return []phase{
		{effect: initial, duration: penaltyInitialPhase},
		{effect: detail, duration: penaltyDetailPhase, withPath: true},
	}
}

func (t *Task) stamp() {
	for i := range t.phases {
		t.phases[i].effect.TaskID = t.ID
		t.phases[i].effect.CardID = t.CardID
		t.phases[i].effect.DurationMS = t.phases[i].duration.Milliseconds()
	}
}

func penaltyDetail(e plays.Event) string {
	var parts []string
	if y := e.Meta(plays.MetaYards); y != "" {
		parts = append(parts, y+" yards")
	}
	who := e.Meta(plays.MetaPlayer)
	if team := e.Meta(plays.MetaTeam); team != "" {
		if who != "" {
			who = fmt.Sprintf("%s (%s)", who, team)
		} else {
			who = team
		}
	}
	if who != "" {
		parts = append(parts, "on "+who)
	}
	if side := e.Meta(plays.MetaPenaltySide); side != "" {
		parts = append(parts, side)
	}
	return strings.Join(parts, ", ")
}

// TaskView is the read-only form of a task exposed outside the scheduler.
type TaskView struct {
	ID         string     `json:"id"`
	Kind       plays.Kind `json:"kind"`
	State      State      `json:"state"`
	Text       string     `json:"text"`
	Negated    bool       `json:"negated"`
	DurationMS int64      `json:"durationMs"`
	Phase      Phase      `json:"phase,omitempty"`
}

func (t *Task) view() TaskView {
	v := TaskView{
		ID:         t.ID,
		Kind:       t.Kind,
		State:      t.State,
		Text:       t.Event.Text,
		Negated:    t.Event.Negated,
		DurationMS: t.Duration.Milliseconds(),
	}
	if t.State == StatePlaying && t.phaseIdx < len(t.phases) {
		v.Phase = t.phases[t.phaseIdx].effect.Phase
	}
	return v
}
