package plays

import "github.com/preston-bernstein/gamecast-service/internal/domain/games"

// Kind names a semantic event inferred from a play.
type Kind string

const (
	KindTouchdown       Kind = "touchdown"
	KindFieldGoal       Kind = "field-goal"
	KindExtraPoint      Kind = "extra-point"
	KindTwoPoint        Kind = "two-point"
	KindSafety          Kind = "safety"
	KindInterception    Kind = "interception"
	KindFumble          Kind = "fumble"
	KindSack            Kind = "sack"
	KindPenalty         Kind = "penalty"
	KindFirstDown       Kind = "first-down"
	KindTurnoverOnDowns Kind = "turnover-on-downs"
	KindMissedKick      Kind = "missed-kick"
	KindPunt            Kind = "punt"
	KindTimeout         Kind = "timeout"
)

// Scoring reports whether the kind puts points on the board.
func (k Kind) Scoring() bool {
	switch k {
	case KindTouchdown, KindFieldGoal, KindExtraPoint, KindTwoPoint, KindSafety:
		return true
	default:
		return false
	}
}

// Turnover reports whether the kind is a fumble or interception.
func (k Kind) Turnover() bool {
	return k == KindFumble || k == KindInterception
}

// Metadata keys.
const (
	MetaRecoveryTeam = "recoveryTeam"
	MetaFumblingTeam = "fumblingTeam"
	MetaAttempt      = "attempt"
	MetaReason       = "reason"
	MetaDistance     = "distance"
	MetaAttacker     = "attacker"
	MetaYards        = "yards"
	MetaInfraction   = "infraction"
	MetaPenaltySide  = "penaltySide"
	MetaPlayer       = "player"
	MetaTeam         = "team"
	MetaRemaining    = "remaining"
	MetaLabel        = "label"
	MetaSource       = "source"
	MetaLogo         = "logo"
)

// Penalty sides.
const (
	PenaltyOffense = "offense"
	PenaltyDefense = "defense"
)

// TeamRef attributes an event to one side of a game. A zero TeamRef means no attribution.
type TeamRef struct {
	Side         games.Side `json:"side,omitempty"`
	Abbreviation string     `json:"abbreviation,omitempty"`
}

// Known reports whether any attribution was made.
func (t TeamRef) Known() bool {
	return t.Side != games.SideNone || t.Abbreviation != ""
}

// Movement is the ball travel implied by a play, in 0-100 field yards.
type Movement struct {
	FromYard float64 `json:"fromYard"`
	ToYard   float64 `json:"toYard"`
}

// Event is one named occurrence inferred from a pair of snapshots and the play text.
type Event struct {
	Kind     Kind              `json:"kind"`
	Team     TeamRef           `json:"team"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Negated  bool              `json:"negated"`
	Movement *Movement         `json:"movement,omitempty"`
	// Description is the raw play-by-play copy the event was read from.
	Description string `json:"description,omitempty"`
}

// Meta returns a metadata value or "".
func (e Event) Meta(key string) string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata[key]
}
