package plays

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/gamecast-service/internal/domain/games"
	"github.com/preston-bernstein/gamecast-service/internal/domain/teams"
)

func baseSnapshot() games.Snapshot {
	return games.Snapshot{
		ID:               "g1",
		League:           "nfl",
		Status:           games.StatusInProgress,
		AwayTeam:         teams.Team{Abbreviation: "BUF", LogoURL: "https://cdn.example/buf.png"},
		HomeTeam:         teams.Team{Abbreviation: "NE"},
		Down:             1,
		Distance:         10,
		DownDistanceText: "1st & 10",
		Possession:       games.SideAway,
		FieldYard:        25,
		Timeouts:         games.Timeouts{Away: 3, Home: 3},
	}
}

func pair(prevFn, curFn func(*games.Snapshot)) (games.Snapshot, games.Snapshot) {
	prev, cur := baseSnapshot(), baseSnapshot()
	if prevFn != nil {
		prevFn(&prev)
	}
	if curFn != nil {
		curFn(&cur)
	}
	return prev, cur
}

func kinds(events []Event) []Kind {
	out := make([]Kind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(teams.DefaultTable())
}

func TestRushingTouchdownFromScoreChange(t *testing.T) {
	prev, cur := pair(nil, func(s *games.Snapshot) {
		s.AwayScore = 6
		s.Down = 0
		s.DownDistanceText = ""
		s.FieldYard = 100
	})

	events := newTestAnalyzer().Analyze(prev, cur, "J.Doe 5 Yd Run TOUCHDOWN")

	require.Len(t, events, 1)
	assert.Equal(t, KindTouchdown, events[0].Kind)
	assert.Equal(t, games.SideAway, events[0].Team.Side)
	assert.Equal(t, "BUF", events[0].Team.Abbreviation)
	assert.Equal(t, "TOUCHDOWN!", events[0].Text)
	assert.False(t, events[0].Negated)
	require.NotNil(t, events[0].Movement)
	assert.Equal(t, Movement{FromYard: 25, ToYard: 100}, *events[0].Movement)
	assert.Equal(t, "https://cdn.example/buf.png", events[0].Meta(MetaLogo))
}

func TestInterceptionAttributesInterceptingTeam(t *testing.T) {
	prev, cur := pair(
		func(s *games.Snapshot) { s.Down = 2 },
		func(s *games.Snapshot) { s.Possession = games.SideHome },
	)

	events := newTestAnalyzer().Analyze(prev, cur, "M.Smith pass intercepted by NE-J.Jones. RECOVERED by NE-J.Jones")

	require.Len(t, events, 1)
	assert.Equal(t, KindInterception, events[0].Kind)
	assert.Equal(t, "NE", events[0].Team.Abbreviation)
	assert.Equal(t, games.SideHome, events[0].Team.Side)
	assert.Equal(t, "NE", events[0].Meta(MetaRecoveryTeam))
}

func TestInterceptionByTeamOutsideGameResolvesThroughLookup(t *testing.T) {
	prev, cur := pair(nil, func(s *games.Snapshot) { s.HomeTeam = teams.Team{Abbreviation: "MIA"} })

	events := newTestAnalyzer().Analyze(prev, cur, "pass intercepted by NE-J.Jones")

	require.Len(t, events, 1)
	assert.Equal(t, TeamRef{Abbreviation: "NE"}, events[0].Team)
}

func TestInterceptionWithUnknownAbbreviationIsUnattributed(t *testing.T) {
	prev, cur := pair(nil, nil)

	events := newTestAnalyzer().Analyze(prev, cur, "pass intercepted by QQQ-J.Jones")

	require.Len(t, events, 1)
	assert.False(t, events[0].Team.Known())
}

func TestPickSix(t *testing.T) {
	prev, cur := pair(nil, func(s *games.Snapshot) {
		s.HomeScore = 6
		s.Possession = games.SideHome
	})

	events := newTestAnalyzer().Analyze(prev, cur, "pass intercepted by NE-J.Jones at BUF 40. J.Jones for 40 yards, TOUCHDOWN.")

	assert.Equal(t, []Kind{KindInterception, KindTouchdown}, kinds(events))
	assert.Equal(t, "PICK SIX!", events[1].Text)
	assert.Equal(t, games.SideHome, events[1].Team.Side)
}

func TestFirstDownFiresOncePerPlay(t *testing.T) {
	a := newTestAnalyzer()
	prev, cur := pair(
		func(s *games.Snapshot) {
			s.Down = 3
			s.Distance = 4
			s.DownDistanceText = "3rd & 4"
			s.FieldYard = 30
		},
		func(s *games.Snapshot) { s.FieldYard = 38 },
	)
	text := "J.Doe 8 yd run to BUF 38"

	events := a.Analyze(prev, cur, text)
	require.Len(t, events, 1)
	assert.Equal(t, KindFirstDown, events[0].Kind)
	assert.Equal(t, games.SideAway, events[0].Team.Side)
	assert.Equal(t, "1st & 10", events[0].Meta(MetaLabel))

	assert.Empty(t, a.Analyze(prev, cur, text))
	assert.Empty(t, a.Analyze(cur, cur, text))
}

func TestFirstDownForgetResetsMemory(t *testing.T) {
	a := newTestAnalyzer()
	prev, cur := pair(func(s *games.Snapshot) { s.Down = 2 }, nil)

	require.Len(t, a.Analyze(prev, cur, "run for a first down"), 1)
	a.Forget("g1")
	assert.Len(t, a.Analyze(prev, cur, "run for a first down"), 1)
}

func TestFirstDownOnFreshFirstAndTen(t *testing.T) {
	prev, cur := pair(nil, func(s *games.Snapshot) { s.FieldYard = 45 })

	events := newTestAnalyzer().Analyze(prev, cur, "J.Doe 20 yd pass")

	assert.Equal(t, []Kind{KindFirstDown}, kinds(events))
}

func TestFirstDownSuppressedOnPossessionChange(t *testing.T) {
	prev, cur := pair(
		func(s *games.Snapshot) { s.Down = 3 },
		func(s *games.Snapshot) { s.Possession = games.SideHome },
	)

	events := newTestAnalyzer().Analyze(prev, cur, "kneel down, 1st down NE")

	assert.NotContains(t, kinds(events), KindFirstDown)
}

func TestNoPlayNegatesAllButPenalty(t *testing.T) {
	prev, cur := pair(func(s *games.Snapshot) { s.Down = 2 }, func(s *games.Snapshot) { s.Down = 2 })
	text := "J.Doe 15 yd run for a 1st down. PENALTY on BUF-T.Hold, Offensive Holding, 10 yards, enforced at BUF 30 - No Play."

	events := newTestAnalyzer().Analyze(prev, cur, text)

	require.Equal(t, []Kind{KindFirstDown, KindPenalty}, kinds(events))
	assert.True(t, events[0].Negated)
	assert.False(t, events[1].Negated)

	pen := events[1]
	assert.Equal(t, "Offensive Holding", pen.Meta(MetaInfraction))
	assert.Equal(t, PenaltyOffense, pen.Meta(MetaPenaltySide))
	assert.Equal(t, "T.Hold", pen.Meta(MetaPlayer))
	assert.Equal(t, "BUF", pen.Meta(MetaTeam))
	assert.Equal(t, "10", pen.Meta(MetaYards))
	assert.Equal(t, games.SideAway, pen.Team.Side)
}

func TestEnforcedBetweenDownsKeepsPlay(t *testing.T) {
	prev, cur := pair(func(s *games.Snapshot) { s.Down = 2 }, nil)
	text := "J.Doe 12 yd run. PENALTY on NE-K.Jones, Unnecessary Roughness, 15 yards, enforced between downs. No Play."

	events := newTestAnalyzer().Analyze(prev, cur, text)

	require.NotEmpty(t, events)
	for _, e := range events {
		assert.False(t, e.Negated, "kind %s", e.Kind)
	}
}

func TestNegationRule(t *testing.T) {
	assert.True(t, negated("penalty ... no play."))
	assert.False(t, negated("no play, enforced between downs"))
	assert.False(t, negated("j.doe 5 yd run"))
}

func TestDeclinedPenaltyIgnored(t *testing.T) {
	prev, cur := pair(func(s *games.Snapshot) { s.Down = 2 }, func(s *games.Snapshot) { s.Down = 3 })

	events := newTestAnalyzer().Analyze(prev, cur, "J.Doe 3 yd run. PENALTY on NE-K.Jones, Offside, declined.")

	assert.Empty(t, events)
}

func TestDefensivePenaltyAppendedAfterFirstDown(t *testing.T) {
	prev, cur := pair(func(s *games.Snapshot) { s.Down = 2 }, nil)

	events := newTestAnalyzer().Analyze(prev, cur, "PENALTY on NE-J.Smith, Defensive Pass Interference, 15 yards, enforced at NE 40.")

	require.Equal(t, []Kind{KindFirstDown, KindPenalty}, kinds(events))
	pen := events[1]
	assert.Equal(t, PenaltyDefense, pen.Meta(MetaPenaltySide))
	assert.Equal(t, "Defensive Pass Interference", pen.Meta(MetaInfraction))
	assert.Equal(t, games.SideHome, pen.Team.Side)
	assert.Equal(t, "15", pen.Meta(MetaYards))
	assert.Equal(t, "PENALTY: DEFENSIVE PASS INTERFERENCE", pen.Text)
}

func TestFumbleLostAndReturnedForScore(t *testing.T) {
	prev, cur := pair(nil, func(s *games.Snapshot) {
		s.Possession = games.SideHome
		s.HomeScore = 6
	})
	text := "J.Doe FUMBLES (forced by K.Jones), RECOVERED by NE-A.Bee at BUF 30. A.Bee for 30 yards, TOUCHDOWN."

	events := newTestAnalyzer().Analyze(prev, cur, text)

	require.Equal(t, []Kind{KindFumble, KindTouchdown}, kinds(events))
	assert.Equal(t, "FUMBLE LOST!", events[0].Text)
	assert.Equal(t, games.SideHome, events[0].Team.Side)
	assert.Equal(t, "BUF", events[0].Meta(MetaFumblingTeam))
	assert.Equal(t, "NE", events[0].Meta(MetaRecoveryTeam))
	assert.Equal(t, "SCOOP & SCORE!", events[1].Text)
}

func TestFumbleSelfRecovery(t *testing.T) {
	prev, cur := pair(func(s *games.Snapshot) { s.Down = 2 }, func(s *games.Snapshot) { s.Down = 3 })

	events := newTestAnalyzer().Analyze(prev, cur, "J.Doe FUMBLES, and recovers at BUF 23.")

	require.Equal(t, []Kind{KindFumble}, kinds(events))
	assert.Equal(t, "FUMBLE!", events[0].Text)
	assert.Equal(t, games.SideAway, events[0].Team.Side)
	assert.Equal(t, "BUF", events[0].Meta(MetaRecoveryTeam))
}

func TestFieldGoalGood(t *testing.T) {
	prev, cur := pair(nil, func(s *games.Snapshot) { s.AwayScore = 3 })

	events := newTestAnalyzer().Analyze(prev, cur, "K.Kick 45 yard field goal is GOOD, Center-L.Snap.")

	require.Equal(t, []Kind{KindFieldGoal}, kinds(events))
	assert.Equal(t, games.SideAway, events[0].Team.Side)
	assert.Equal(t, "45", events[0].Meta(MetaDistance))
}

func TestFieldGoalMissed(t *testing.T) {
	prev, cur := pair(nil, func(s *games.Snapshot) { s.Possession = games.SideHome })

	events := newTestAnalyzer().Analyze(prev, cur, "K.Kick 52 yard field goal is No Good, Wide Right.")

	require.Equal(t, []Kind{KindMissedKick}, kinds(events))
	assert.Equal(t, string(KindFieldGoal), events[0].Meta(MetaAttempt))
	assert.Equal(t, "wide right", events[0].Meta(MetaReason))
	assert.Equal(t, games.SideAway, events[0].Team.Side)
}

func TestMissReasonPrefersDirection(t *testing.T) {
	cases := map[string]string{
		"field goal is no good, wide right.": "wide right",
		"field goal is no good, wide left.":  "wide left",
		"field goal is blocked.":             "blocked",
		"field goal is no good.":             "no good",
		"extra point missed.":                "missed",
		"field goal is good.":                "",
	}
	for text, want := range cases {
		assert.Equal(t, want, missReason(text), text)
	}
}

func TestTouchdownWithExtraPoint(t *testing.T) {
	prev, cur := pair(nil, func(s *games.Snapshot) { s.AwayScore = 7 })

	events := newTestAnalyzer().Analyze(prev, cur, "J.Doe 5 Yd Run TOUCHDOWN (K.Kick extra point is GOOD)")

	assert.Equal(t, []Kind{KindTouchdown, KindExtraPoint}, kinds(events))
	assert.Equal(t, games.SideAway, events[1].Team.Side)
}

func TestExtraPointTryDoesNotCountAsTouchdown(t *testing.T) {
	prev, cur := pair(func(s *games.Snapshot) { s.AwayScore = 6 }, func(s *games.Snapshot) { s.AwayScore = 7 })

	events := newTestAnalyzer().Analyze(prev, cur, "K.Kick extra point is GOOD after the touchdown")

	assert.Equal(t, []Kind{KindExtraPoint}, kinds(events))
}

func TestTwoPointConversion(t *testing.T) {
	prev, cur := pair(func(s *games.Snapshot) { s.AwayScore = 6 }, func(s *games.Snapshot) { s.AwayScore = 8 })

	events := newTestAnalyzer().Analyze(prev, cur, "TWO-POINT CONVERSION ATTEMPT. J.Doe rushes up the middle. ATTEMPT SUCCEEDS.")

	assert.Equal(t, []Kind{KindTwoPoint}, kinds(events))
	assert.Equal(t, games.SideAway, events[0].Team.Side)
}

func TestSafetyAndSack(t *testing.T) {
	prev, cur := pair(nil, func(s *games.Snapshot) {
		s.HomeScore = 2
		s.FieldYard = 0
	})

	events := newTestAnalyzer().Analyze(prev, cur, "J.Doe sacked in end zone for -5 yards (C.Jones). SAFETY.")

	require.Equal(t, []Kind{KindSafety, KindSack}, kinds(events))
	assert.Equal(t, games.SideHome, events[0].Team.Side)
	assert.Equal(t, games.SideHome, events[1].Team.Side)
	assert.Equal(t, "C.Jones", events[1].Meta(MetaAttacker))
	assert.Equal(t, "-5", events[1].Meta(MetaYards))
	assert.Equal(t, "SACKED BY C.JONES", events[1].Text)
}

func TestFreeKickIsNotASafety(t *testing.T) {
	prev, cur := pair(nil, nil)

	events := newTestAnalyzer().Analyze(prev, cur, "Safety free kick from BUF 20")

	assert.NotContains(t, kinds(events), KindSafety)
}

func TestPunt(t *testing.T) {
	prev, cur := pair(
		func(s *games.Snapshot) { s.Down = 4 },
		func(s *games.Snapshot) { s.Possession = games.SideHome },
	)

	events := newTestAnalyzer().Analyze(prev, cur, "T.Punter punts 45 yards to NE 20, Center-L.Snap. J.Ret to NE 28.")

	require.Equal(t, []Kind{KindPunt}, kinds(events))
	assert.Equal(t, "45", events[0].Meta(MetaDistance))
	assert.Equal(t, games.SideAway, events[0].Team.Side)
}

func TestTimeoutFromCounters(t *testing.T) {
	prev, cur := pair(nil, func(s *games.Snapshot) { s.Timeouts.Home = 2 })

	events := newTestAnalyzer().Analyze(prev, cur, "Timeout #1 by NE at 02:00.")

	require.Equal(t, []Kind{KindTimeout}, kinds(events))
	assert.Equal(t, games.SideHome, events[0].Team.Side)
	assert.Equal(t, "2", events[0].Meta(MetaRemaining))
	assert.Nil(t, events[0].Movement)
}

func TestTurnoverOnDowns(t *testing.T) {
	prev, cur := pair(
		func(s *games.Snapshot) { s.Down = 4 },
		func(s *games.Snapshot) { s.Possession = games.SideHome },
	)

	events := newTestAnalyzer().Analyze(prev, cur, "J.Doe pass incomplete deep left to K.Catch")

	require.Equal(t, []Kind{KindTurnoverOnDowns}, kinds(events))
	assert.Equal(t, games.SideHome, events[0].Team.Side)
}

func TestScoreDeltaFallback(t *testing.T) {
	cases := []struct {
		name  string
		delta int
		text  string
		want  Kind
	}{
		{name: "touchdown", delta: 7, want: KindTouchdown},
		{name: "field goal", delta: 3, want: KindFieldGoal},
		{name: "extra point", delta: 1, want: KindExtraPoint},
		{name: "safety", delta: 2, want: KindSafety},
		{name: "two point", delta: 2, text: "two-point attempt", want: KindTwoPoint},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prev, cur := pair(nil, func(s *games.Snapshot) {
				s.HomeScore = tc.delta
				s.LastPlayText = tc.text
			})

			events := newTestAnalyzer().Analyze(prev, cur, "")

			require.Equal(t, []Kind{tc.want}, kinds(events))
			assert.Equal(t, games.SideHome, events[0].Team.Side)
			assert.Equal(t, "score", events[0].Meta(MetaSource))
		})
	}
}

func TestUnmatchedTextYieldsNoEvents(t *testing.T) {
	prev, cur := pair(func(s *games.Snapshot) { s.Down = 1 }, func(s *games.Snapshot) {
		s.Down = 2
		s.DownDistanceText = "2nd & 6"
	})

	assert.Empty(t, newTestAnalyzer().Analyze(prev, cur, "J.Doe 4 yd run"))
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	prev, cur := pair(nil, func(s *games.Snapshot) {
		s.HomeScore = 6
		s.Possession = games.SideHome
	})
	text := "J.Doe FUMBLES, RECOVERED by NE-A.Bee. A.Bee for 30 yards, TOUCHDOWN. PENALTY on BUF-X.Y, Face Mask, 15 yards."

	first := newTestAnalyzer().Analyze(prev, cur, text)
	second := newTestAnalyzer().Analyze(prev, cur, text)

	assert.Equal(t, first, second)
	assert.Equal(t, KindPenalty, first[len(first)-1].Kind)
}

func TestKeyRingEvictsOldest(t *testing.T) {
	r := newKeyRing(2)
	assert.True(t, r.add("a"))
	assert.True(t, r.add("b"))
	assert.False(t, r.add("a"))
	assert.True(t, r.add("c"))
	assert.True(t, r.add("a"))
}
