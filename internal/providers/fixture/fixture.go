package fixture

import (
	"context"
	"strings"
	"sync"

	"github.com/preston-bernstein/gamecast-service/internal/domain/games"
	"github.com/preston-bernstein/gamecast-service/internal/domain/teams"
)

// step is one scripted moment of a drive.
type step struct {
	awayScore, homeScore int
	down, distance       int
	ddText               string
	possession           games.Side
	yard                 float64
	play                 string
}

// drive walks NE at NYJ through a scoring drive and the ensuing kickoff.
var drive = []step{
	{0, 0, 1, 10, "1st & 10", games.SideAway, 25, "Kickoff by T.Loop, touchback."},
	{0, 0, 2, 4, "2nd & 4", games.SideAway, 31, "R.Stevenson rush up the middle for 6 yards"},
	{0, 0, 1, 10, "1st & 10", games.SideAway, 48, "D.Maye pass deep left to K.Boutte for 17 yards"},
	{0, 0, 1, 15, "1st & 15", games.SideAway, 43, "PENALTY on NE-M.Onwenu, False Start, 5 yards, enforced at NE 48 - No Play."},
	{0, 0, 2, 21, "2nd & 21", games.SideAway, 37, "D.Maye sacked at NE 37 for -6 yards (Q.Williams)."},
	{0, 0, 1, 10, "1st & 10", games.SideAway, 70, "D.Maye pass short right to H.Henry for 33 yards"},
	{6, 0, 0, 0, "", games.SideAway, 100, "R.Stevenson rush left end for 30 yards, TOUCHDOWN"},
	{7, 0, 0, 0, "", games.SideAway, 85, "J.Slye extra point is GOOD, Center-J.Cardona, Holder-B.Baringer."},
	{7, 0, 1, 10, "1st & 10", games.SideHome, 25, "J.Slye kicks 65 yards from NE 35 to end zone, Touchback."},
	{7, 0, 1, 10, "1st & 10", games.SideHome, 25, "Timeout #1 by NYJ at 08:12."},
	{7, 0, 2, 10, "2nd & 10", games.SideAway, 31, "A.Rodgers pass short middle INTERCEPTED by C.Gonzalez at NYJ 31."},
}

// Provider serves a deterministic scripted NFL game. Each fetch advances the script one
// step and wraps around at the end.
type Provider struct {
	mu     sync.Mutex
	cursor int
	table  *teams.Table
}

// New creates a fixture provider.
func New() *Provider {
	return &Provider{table: teams.DefaultTable()}
}

// FetchSnapshots returns the next scripted snapshot for nfl and nothing for other sports.
func (p *Provider) FetchSnapshots(ctx context.Context, sport string) ([]games.Snapshot, error) {
	_ = ctx
	if !strings.EqualFold(strings.TrimSpace(sport), "nfl") {
		return []games.Snapshot{}, nil
	}

	p.mu.Lock()
	s := drive[p.cursor%len(drive)]
	p.cursor++
	p.mu.Unlock()

	away, _ := p.table.Resolve("nfl", "NE")
	home, _ := p.table.Resolve("nfl", "NYJ")
	return []games.Snapshot{{
		ID:               "fixture-nfl-1",
		League:           "nfl",
		Status:           games.StatusInProgress,
		AwayTeam:         away,
		HomeTeam:         home,
		AwayScore:        s.awayScore,
		HomeScore:        s.homeScore,
		Down:             s.down,
		Distance:         s.distance,
		DownDistanceText: s.ddText,
		Possession:       s.possession,
		FieldYard:        s.yard,
		LastPlayText:     s.play,
		Timeouts:         games.Timeouts{Away: 3, Home: 3},
	}}, nil
}

// Len reports the number of scripted steps.
func (p *Provider) Len() int {
	return len(drive)
}
