package games

import "github.com/preston-bernstein/gamecast-service/internal/domain/teams"

// GameStatus mirrors the shared contract for game lifecycle states.
type GameStatus string

const (
	StatusScheduled  GameStatus = "SCHEDULED"
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusFinal      GameStatus = "FINAL"
	StatusPostponed  GameStatus = "POSTPONED"
	StatusCanceled   GameStatus = "CANCELED"
)

// Finished reports whether no further plays will happen.
func (s GameStatus) Finished() bool {
	return s == StatusFinal || s == StatusCanceled
}

// Side identifies one of the two teams in a game. The zero value means no side.
type Side string

const (
	SideNone Side = ""
	SideAway Side = "away"
	SideHome Side = "home"
)

// Opponent returns the other side, or SideNone for SideNone.
func (s Side) Opponent() Side {
	switch s {
	case SideAway:
		return SideHome
	case SideHome:
		return SideAway
	default:
		return SideNone
	}
}

// Valid reports whether s names a team.
func (s Side) Valid() bool {
	return s == SideAway || s == SideHome
}

// Timeouts holds remaining timeouts per side.
type Timeouts struct {
	Away int `json:"away"`
	Home int `json:"home"`
}

// For returns the remaining timeouts for a side.
func (t Timeouts) For(side Side) int {
	if side == SideHome {
		return t.Home
	}
	return t.Away
}

// Snapshot is one point-in-time view of a live game. A new snapshot for the same ID
// supersedes the previous one; snapshots are never mutated after creation.
type Snapshot struct {
	ID               string     `json:"id"`
	League           string     `json:"league"`
	Status           GameStatus `json:"status,omitempty"`
	AwayTeam         teams.Team `json:"awayTeam"`
	HomeTeam         teams.Team `json:"homeTeam"`
	AwayScore        int        `json:"awayScore"`
	HomeScore        int        `json:"homeScore"`
	Down             int        `json:"down"`
	Distance         int        `json:"distance"`
	DownDistanceText string     `json:"downDistanceText"`
	Possession       Side       `json:"possession,omitempty"`
	FieldYard        float64    `json:"fieldYard"`
	LastPlayText     string     `json:"lastPlayText"`
	Timeouts         Timeouts   `json:"timeouts"`
}

// Score returns the points for a side.
func (s Snapshot) Score(side Side) int {
	if side == SideHome {
		return s.HomeScore
	}
	return s.AwayScore
}

// Team returns the team playing on a side.
func (s Snapshot) Team(side Side) teams.Team {
	if side == SideHome {
		return s.HomeTeam
	}
	return s.AwayTeam
}

// SideOf maps a team abbreviation onto this game's sides.
func (s Snapshot) SideOf(abbreviation string) Side {
	switch {
	case abbreviation == "":
		return SideNone
	case teams.SameAbbreviation(s.AwayTeam.Abbreviation, abbreviation):
		return SideAway
	case teams.SameAbbreviation(s.HomeTeam.Abbreviation, abbreviation):
		return SideHome
	default:
		return SideNone
	}
}

// ClampedYard returns FieldYard limited to the 0-100 field scale.
func (s Snapshot) ClampedYard() float64 {
	switch {
	case s.FieldYard < 0:
		return 0
	case s.FieldYard > 100:
		return 100
	default:
		return s.FieldYard
	}
}

// Update is the payload of a pushed games:update message.
type Update struct {
	Sport     string `json:"sport"`
	CacheKey  string `json:"cacheKey"`
	Timestamp int64  `json:"timestamp"`
}
