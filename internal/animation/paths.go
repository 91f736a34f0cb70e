package animation

import (
	"strconv"
	"strings"

	"github.com/preston-bernstein/gamecast-service/internal/field"
	"github.com/preston-bernstein/gamecast-service/internal/plays"
)

// pathFor picks the motion treatment for an event. Events without movement, negated plays
// and kinds that do not move the ball get no path.
func pathFor(g field.Geometry, e plays.Event) field.Path {
	if e.Movement == nil || e.Negated {
		return nil
	}
	from, to := e.Movement.FromYard, e.Movement.ToYard

	switch e.Kind {
	case plays.KindInterception:
		return g.Pass(from, to, 0)
	case plays.KindFumble:
		return g.Tumble(from, to)
	case plays.KindPunt:
		return g.Kick(from, to)
	case plays.KindFieldGoal, plays.KindExtraPoint, plays.KindMissedKick:
		good := e.Kind != plays.KindMissedKick
		wideRight := strings.Contains(e.Meta(plays.MetaReason), "right")
		return g.FieldGoal(from, from >= 50, good, wideRight)
	case plays.KindPenalty:
		yards, _ := strconv.Atoi(e.Meta(plays.MetaYards))
		return g.Penalty(from, to, yards, e.Meta(plays.MetaPenaltySide) == plays.PenaltyOffense)
	case plays.KindSack, plays.KindFirstDown, plays.KindTouchdown, plays.KindTurnoverOnDowns:
		return g.Rush(from, to)
	default:
		return nil
	}
}
