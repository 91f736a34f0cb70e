package scoreboard

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/gamecast-service/internal/domain/games"
	"github.com/preston-bernstein/gamecast-service/internal/domain/teams"
)

func mapGame(sport string, g gameResponse) games.Snapshot {
	league := strings.ToLower(g.League)
	if league == "" {
		league = sport
	}
	snap := games.Snapshot{
		ID:               fmt.Sprintf("%s-%d", league, g.ID),
		League:           league,
		Status:           mapStatus(g.Status),
		AwayTeam:         mapTeam(g.VisitorTeam),
		HomeTeam:         mapTeam(g.HomeTeam),
		AwayScore:        g.VisitorTeamScore,
		HomeScore:        g.HomeTeamScore,
		Down:             g.Situation.Down,
		Distance:         g.Situation.Distance,
		DownDistanceText: strings.TrimSpace(g.Situation.DownDistanceText),
		FieldYard:        g.Situation.YardLine,
		LastPlayText:     strings.TrimSpace(g.Situation.LastPlay),
		Timeouts: games.Timeouts{
			Away: timeoutsOrFull(g.VisitorTeam.Timeouts),
			Home: timeoutsOrFull(g.HomeTeam.Timeouts),
		},
	}
	snap.Possession = snap.SideOf(g.Situation.Possession)
	snap.FieldYard = snap.ClampedYard()
	return snap
}

func mapTeam(t teamResponse) teams.Team {
	return teams.Team{
		ID:           fmt.Sprintf("team-%d", t.ID),
		Name:         t.Name,
		FullName:     t.FullName,
		Abbreviation: strings.ToUpper(strings.TrimSpace(t.Abbreviation)),
		City:         t.City,
		Conference:   t.Conference,
		Division:     t.Division,
		LogoURL:      t.Logo,
	}
}

func mapStatus(status string) games.GameStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "final", "final/ot", "ended":
		return games.StatusFinal
	case "in progress", "halftime", "end of period", "end of quarter":
		return games.StatusInProgress
	case "postponed":
		return games.StatusPostponed
	case "canceled", "cancelled":
		return games.StatusCanceled
	default:
		return games.StatusScheduled
	}
}

func timeoutsOrFull(n *int) int {
	if n == nil {
		return 3
	}
	return *n
}
