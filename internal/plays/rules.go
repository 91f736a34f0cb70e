package plays

import (
	"strconv"
	"strings"

	"github.com/preston-bernstein/gamecast-service/internal/domain/games"
	"github.com/preston-bernstein/gamecast-service/internal/domain/teams"
)

// play is the read-only input shared by every rule, plus the events emitted so far.
type play struct {
	prev    games.Snapshot
	cur     games.Snapshot
	raw     string
	lower   string
	lookup  teams.Lookup
	emitted []Event
}

// rule pairs a predicate with the constructor that runs when it matches.
type rule struct {
	name  string
	match func(p *play) bool
	build func(p *play) []Event
}

// ruleTable is evaluated in order; a single play may produce events from several rules.
var ruleTable = []rule{
	{name: "interception", match: matchInterception, build: buildInterception},
	{name: "fumble", match: matchFumble, build: buildFumble},
	{name: "touchdown", match: matchTouchdown, build: buildTouchdown},
	{name: "safety", match: matchSafety, build: buildSafety},
	{name: "kick", match: matchKick, build: buildKick},
	{name: "two-point", match: matchTwoPoint, build: buildTwoPoint},
	{name: "sack", match: matchSack, build: buildSack},
	{name: "punt", match: matchPunt, build: buildPunt},
	{name: "timeout", match: matchTimeout, build: buildTimeout},
	{name: "first-down", match: matchFirstDown, build: buildFirstDown},
	{name: "turnover-on-downs", match: matchTurnoverOnDowns, build: buildTurnoverOnDowns},
	{name: "score-delta", match: matchScoreDelta, build: buildScoreDelta},
	{name: "penalty", match: matchPenalty, build: buildPenalty},
}

func (p *play) has(pred func(Kind) bool) bool {
	for _, e := range p.emitted {
		if pred(e.Kind) {
			return true
		}
	}
	return false
}

func (p *play) hasKind(k Kind) bool {
	return p.has(func(candidate Kind) bool { return candidate == k })
}

func (p *play) delta(side games.Side) int {
	return p.cur.Score(side) - p.prev.Score(side)
}

// scoringSide returns the side whose score rose by one of the given amounts.
func (p *play) scoringSide(amounts ...int) games.Side {
	for _, side := range []games.Side{games.SideAway, games.SideHome} {
		d := p.delta(side)
		for _, a := range amounts {
			if d == a {
				return side
			}
		}
	}
	return games.SideNone
}

func (p *play) scoreChanged() bool {
	return p.delta(games.SideAway) != 0 || p.delta(games.SideHome) != 0
}

func (p *play) possessionChanged() bool {
	return p.prev.Possession.Valid() && p.cur.Possession.Valid() && p.prev.Possession != p.cur.Possession
}

// sideRef attributes a side of this game.
func (p *play) sideRef(side games.Side) TeamRef {
	if !side.Valid() {
		return TeamRef{}
	}
	return TeamRef{Side: side, Abbreviation: p.cur.Team(side).Abbreviation}
}

// teamRef resolves an abbreviation from the play text. Abbreviations unknown to both the
// lookup table and this game leave the event unattributed.
func (p *play) teamRef(abbr string) TeamRef {
	if abbr == "" {
		return TeamRef{}
	}
	if side := p.cur.SideOf(abbr); side.Valid() {
		return p.sideRef(side)
	}
	if p.lookup == nil {
		return TeamRef{}
	}
	team, ok := p.lookup.Resolve(p.cur.League, abbr)
	if !ok {
		return TeamRef{}
	}
	return TeamRef{Side: p.cur.SideOf(team.Abbreviation), Abbreviation: team.Abbreviation}
}

func (p *play) movement() *Movement {
	if p.prev.ID == "" {
		return nil
	}
	return &Movement{FromYard: p.prev.ClampedYard(), ToYard: p.cur.ClampedYard()}
}

func (p *play) event(kind Kind, team TeamRef, text string, meta map[string]string) Event {
	e := Event{Kind: kind, Team: team, Text: text, Metadata: meta, Description: p.raw}
	if kind != KindTimeout {
		e.Movement = p.movement()
	}
	if team.Side.Valid() {
		if logo := p.cur.Team(team.Side).LogoURL; logo != "" {
			if e.Metadata == nil {
				e.Metadata = map[string]string{}
			}
			e.Metadata[MetaLogo] = logo
		}
	}
	return e
}

func (p *play) touchdownToken() bool {
	return touchdownRe.MatchString(p.lower)
}

func matchInterception(p *play) bool {
	return strings.Contains(p.lower, "intercept")
}

func buildInterception(p *play) []Event {
	abbr := firstMatch(interceptedByRe, p.raw, 1)
	team := p.teamRef(abbr)
	meta := map[string]string{}
	if team.Abbreviation != "" {
		meta[MetaRecoveryTeam] = team.Abbreviation
	}
	events := []Event{p.event(KindInterception, team, "INTERCEPTION!", meta)}
	if p.touchdownToken() {
		events = append(events, p.event(KindTouchdown, team, "PICK SIX!", nil))
	}
	return events
}

func matchFumble(p *play) bool {
	return strings.Contains(p.lower, "fumble")
}

func buildFumble(p *play) []Event {
	fumbling := p.sideRef(p.prev.Possession)
	recovering := p.teamRef(firstMatch(recoveredByRe, p.raw, 1))
	if !recovering.Known() && containsAny(p.lower, "and recovers", ", recovers") {
		recovering = fumbling
	}

	meta := map[string]string{}
	if fumbling.Abbreviation != "" {
		meta[MetaFumblingTeam] = fumbling.Abbreviation
	}
	if recovering.Abbreviation != "" {
		meta[MetaRecoveryTeam] = recovering.Abbreviation
	}

	lost := recovering.Side.Valid() && fumbling.Side.Valid() && recovering.Side != fumbling.Side
	team, text := fumbling, "FUMBLE!"
	if recovering.Known() {
		team = recovering
	}
	if lost {
		text = "FUMBLE LOST!"
	}

	events := []Event{p.event(KindFumble, team, text, meta)}
	if lost && p.touchdownToken() {
		events = append(events, p.event(KindTouchdown, recovering, "SCOOP & SCORE!", nil))
	}
	return events
}

// kickAfterOnly reports whether the text describes a try after a touchdown rather than the
// touchdown itself. A try appended after the scoring play does not count.
func kickAfterOnly(raw, lower string) bool {
	marker := kickAfterRe.FindStringIndex(lower)
	if pat := patWordRe.FindStringIndex(raw); pat != nil && (marker == nil || pat[0] < marker[0]) {
		marker = pat
	}
	if marker == nil {
		return false
	}
	td := touchdownRe.FindStringIndex(lower)
	return td == nil || marker[0] < td[0]
}

func matchTouchdown(p *play) bool {
	return p.touchdownToken() && !p.hasKind(KindTouchdown) && !kickAfterOnly(p.raw, p.lower)
}

func buildTouchdown(p *play) []Event {
	side := p.scoringSide(6, 7, 8)
	if !side.Valid() {
		side = p.prev.Possession
	}
	if !side.Valid() {
		side = p.cur.Possession
	}

	text := "TOUCHDOWN!"
	switch {
	case strings.Contains(p.lower, "blocked"):
		text = "BLOCKED KICK TOUCHDOWN!"
	case strings.Contains(p.lower, "fumble"):
		text = "FUMBLE RECOVERY TOUCHDOWN!"
	case strings.Contains(p.lower, "return"):
		text = "RETURN TOUCHDOWN!"
	}
	return []Event{p.event(KindTouchdown, p.sideRef(side), text, nil)}
}

func matchSafety(p *play) bool {
	return strings.Contains(p.lower, "safety") && !strings.Contains(p.lower, "free kick")
}

func buildSafety(p *play) []Event {
	side := p.scoringSide(2)
	if !side.Valid() {
		side = p.prev.Possession.Opponent()
	}
	return []Event{p.event(KindSafety, p.sideRef(side), "SAFETY!", nil)}
}

func fieldGoalAttempt(lower string) bool {
	return strings.Contains(lower, "field goal") || fgWordRe.MatchString(lower)
}

func extraPointAttempt(raw, lower string) bool {
	return strings.Contains(lower, "extra point") || patWordRe.MatchString(raw)
}

func matchKick(p *play) bool {
	return fieldGoalAttempt(p.lower) || extraPointAttempt(p.raw, p.lower)
}

func buildKick(p *play) []Event {
	var events []Event
	reason := missReason(p.lower)
	good := reason == "" && goodWordRe.MatchString(p.lower)

	attempt := func(kind Kind, label string, points ...int) {
		side := p.scoringSide(points...)
		if !side.Valid() {
			side = p.prev.Possession
		}
		meta := map[string]string{MetaAttempt: string(kind)}
		if kind == KindFieldGoal {
			if d := firstMatch(kickDistanceRe, p.raw, 1); d != "" {
				meta[MetaDistance] = d
			}
		}
		switch {
		case reason != "":
			meta[MetaReason] = reason
			events = append(events, p.event(KindMissedKick, p.sideRef(side), label+" NO GOOD", meta))
		case good:
			events = append(events, p.event(kind, p.sideRef(side), label+" GOOD!", meta))
		}
	}

	if fieldGoalAttempt(p.lower) {
		attempt(KindFieldGoal, "FIELD GOAL", 3)
	}
	if extraPointAttempt(p.raw, p.lower) {
		attempt(KindExtraPoint, "EXTRA POINT", 1, 7)
	}
	return events
}

func matchTwoPoint(p *play) bool {
	return containsAny(p.lower, "two-point", "2-pt") &&
		strings.Contains(p.lower, "conversion") &&
		successTokenRe.MatchString(p.lower) &&
		!containsAny(p.lower, "fails", "failed", "no good")
}

func buildTwoPoint(p *play) []Event {
	side := p.scoringSide(2, 8)
	if !side.Valid() {
		side = p.prev.Possession
	}
	return []Event{p.event(KindTwoPoint, p.sideRef(side), "2-PT CONVERSION!", nil)}
}

func matchSack(p *play) bool {
	return strings.Contains(p.lower, "sack")
}

func buildSack(p *play) []Event {
	meta := map[string]string{}
	text := "SACK!"
	if name := sackAttacker(p.raw); name != "" {
		meta[MetaAttacker] = name
		text = "SACKED BY " + strings.ToUpper(name)
	}
	if y := firstMatch(forYardsRe, p.raw, 1); y != "" {
		meta[MetaYards] = y
	}
	return []Event{p.event(KindSack, p.sideRef(p.prev.Possession.Opponent()), text, meta)}
}

func matchPunt(p *play) bool {
	return strings.Contains(p.lower, "punts")
}

func buildPunt(p *play) []Event {
	meta := map[string]string{}
	if d := firstMatch(puntDistanceRe, p.raw, 1); d != "" {
		meta[MetaDistance] = d
	}
	return []Event{p.event(KindPunt, p.sideRef(p.prev.Possession), "PUNT", meta)}
}

// timeoutSide finds the side that just used a timeout.
func (p *play) timeoutSide() (TeamRef, int) {
	if p.prev.ID != "" {
		for _, side := range []games.Side{games.SideAway, games.SideHome} {
			if p.cur.Timeouts.For(side) < p.prev.Timeouts.For(side) {
				return p.sideRef(side), p.cur.Timeouts.For(side)
			}
		}
	}
	if m := timeoutByRe.FindStringSubmatch(p.raw); m != nil {
		team := p.teamRef(m[2])
		n, _ := strconv.Atoi(m[1])
		remaining := 3 - n
		if remaining < 0 {
			remaining = 0
		}
		return team, remaining
	}
	return TeamRef{}, -1
}

func matchTimeout(p *play) bool {
	team, _ := p.timeoutSide()
	return team.Known()
}

func buildTimeout(p *play) []Event {
	team, remaining := p.timeoutSide()
	meta := map[string]string{MetaRemaining: strconv.Itoa(remaining)}
	return []Event{p.event(KindTimeout, team, "TIMEOUT", meta)}
}

func matchFirstDown(p *play) bool {
	if p.possessionChanged() {
		return false
	}
	if p.has(func(k Kind) bool { return k.Scoring() || k.Turnover() || k == KindTurnoverOnDowns }) {
		return false
	}
	if firstDownRe.MatchString(p.lower) {
		return true
	}
	if p.prev.ID == "" || p.cur.Down != 1 {
		return false
	}
	switch p.prev.Down {
	case 2, 3, 4:
		return true
	case 1:
		return firstAndTenRe.MatchString(p.cur.DownDistanceText) &&
			strings.EqualFold(strings.TrimSpace(p.prev.DownDistanceText), strings.TrimSpace(p.cur.DownDistanceText)) &&
			p.cur.ClampedYard() != p.prev.ClampedYard()
	default:
		return false
	}
}

func buildFirstDown(p *play) []Event {
	side := p.cur.Possession
	if !side.Valid() {
		side = p.prev.Possession
	}
	meta := map[string]string{MetaLabel: p.cur.DownDistanceText}
	return []Event{p.event(KindFirstDown, p.sideRef(side), "FIRST DOWN!", meta)}
}

func matchTurnoverOnDowns(p *play) bool {
	if p.prev.Down != 4 || !p.possessionChanged() || p.scoreChanged() {
		return false
	}
	if p.has(func(k Kind) bool { return k.Turnover() }) {
		return false
	}
	if puntWordRe.MatchString(p.lower) || kickoffWordRe.MatchString(p.lower) ||
		p.touchdownToken() || containsAny(p.lower, "field goal", "safety", "penalty") {
		return false
	}
	return true
}

func buildTurnoverOnDowns(p *play) []Event {
	return []Event{p.event(KindTurnoverOnDowns, p.sideRef(p.cur.Possession), "TURNOVER ON DOWNS", nil)}
}

func matchScoreDelta(p *play) bool {
	if p.prev.ID == "" || p.has(Kind.Scoring) {
		return false
	}
	return p.delta(games.SideAway) > 0 || p.delta(games.SideHome) > 0
}

func buildScoreDelta(p *play) []Event {
	var events []Event
	meta := func() map[string]string { return map[string]string{MetaSource: "score"} }
	for _, side := range []games.Side{games.SideAway, games.SideHome} {
		team := p.sideRef(side)
		switch p.delta(side) {
		case 6, 7, 8:
			events = append(events, p.event(KindTouchdown, team, "TOUCHDOWN!", meta()))
		case 3:
			events = append(events, p.event(KindFieldGoal, team, "FIELD GOAL GOOD!", meta()))
		case 1:
			events = append(events, p.event(KindExtraPoint, team, "EXTRA POINT GOOD!", meta()))
		case 2:
			if containsAny(p.lower, "two-point", "conversion") {
				events = append(events, p.event(KindTwoPoint, team, "2-PT CONVERSION!", meta()))
			} else {
				events = append(events, p.event(KindSafety, team, "SAFETY!", meta()))
			}
		}
	}
	return events
}

func matchPenalty(p *play) bool {
	if !strings.Contains(p.lower, "penalty") && !flagWordRe.MatchString(p.lower) {
		return false
	}
	return !containsAny(p.lower, "no flags", "declined")
}

func buildPenalty(p *play) []Event {
	name, side := classifyInfraction(p.lower)
	meta := map[string]string{}

	var team TeamRef
	if m := penaltyOnRe.FindStringSubmatch(p.raw); m != nil {
		team = p.teamRef(m[1])
		meta[MetaPlayer] = m[2]
		if team.Abbreviation != "" {
			meta[MetaTeam] = team.Abbreviation
		} else {
			meta[MetaTeam] = strings.ToUpper(m[1])
		}
	}

	if team.Side.Valid() && p.prev.Possession.Valid() {
		if team.Side == p.prev.Possession {
			side = PenaltyOffense
		} else {
			side = PenaltyDefense
		}
	}
	if !team.Known() {
		switch side {
		case PenaltyOffense:
			team = p.sideRef(p.prev.Possession)
		case PenaltyDefense:
			team = p.sideRef(p.prev.Possession.Opponent())
		}
	}

	if name != "" {
		meta[MetaInfraction] = name
	}
	if side != "" {
		meta[MetaPenaltySide] = side
	}
	tail := p.raw
	if idx := strings.Index(p.lower, "penalty"); idx >= 0 && idx < len(p.raw) {
		tail = p.raw[idx:]
	}
	if y := firstMatch(yardsRe, tail, 1); y != "" {
		meta[MetaYards] = strings.TrimPrefix(y, "-")
	}

	text := "FLAG ON THE PLAY"
	if name != "" {
		text = "PENALTY: " + strings.ToUpper(name)
	}
	return []Event{p.event(KindPenalty, team, text, meta)}
}
