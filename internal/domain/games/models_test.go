package games

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/preston-bernstein/gamecast-service/internal/domain/teams"
)

func TestSnapshotJSONUsesCamelCase(t *testing.T) {
	snap := Snapshot{
		ID:               "401",
		League:           "nfl",
		AwayTeam:         teams.Team{Abbreviation: "NE"},
		HomeTeam:         teams.Team{Abbreviation: "NYJ"},
		AwayScore:        7,
		DownDistanceText: "1st & 10",
		Possession:       SideAway,
		FieldYard:        35,
		Timeouts:         Timeouts{Away: 3, Home: 2},
	}

	b, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(b)
	for _, key := range []string{`"awayScore":7`, `"downDistanceText":"1st & 10"`, `"possession":"away"`, `"fieldYard":35`} {
		if !strings.Contains(body, key) {
			t.Fatalf("expected %s in %s", key, body)
		}
	}
}

func TestSideOpponent(t *testing.T) {
	if SideAway.Opponent() != SideHome || SideHome.Opponent() != SideAway || SideNone.Opponent() != SideNone {
		t.Fatal("unexpected opponent mapping")
	}
	if SideNone.Valid() {
		t.Fatal("expected none side to be invalid")
	}
}

func TestSnapshotSideAccessors(t *testing.T) {
	snap := Snapshot{
		AwayTeam:  teams.Team{Abbreviation: "NE"},
		HomeTeam:  teams.Team{Abbreviation: "NYJ"},
		AwayScore: 3,
		HomeScore: 10,
		Timeouts:  Timeouts{Away: 1, Home: 2},
	}

	if snap.Score(SideHome) != 10 || snap.Score(SideAway) != 3 {
		t.Fatal("unexpected score accessor")
	}
	if snap.Timeouts.For(SideHome) != 2 || snap.Timeouts.For(SideAway) != 1 {
		t.Fatal("unexpected timeouts accessor")
	}
	if snap.SideOf("ne") != SideAway || snap.SideOf("NYJ") != SideHome || snap.SideOf("MIA") != SideNone || snap.SideOf("") != SideNone {
		t.Fatal("unexpected side lookup")
	}
	if snap.Team(SideHome).Abbreviation != "NYJ" {
		t.Fatal("unexpected team accessor")
	}
}

func TestClampedYard(t *testing.T) {
	for _, tc := range []struct{ in, want float64 }{{-5, 0}, {0, 0}, {42, 42}, {100, 100}, {130, 100}} {
		if got := (Snapshot{FieldYard: tc.in}).ClampedYard(); got != tc.want {
			t.Fatalf("ClampedYard(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestGameStatusFinished(t *testing.T) {
	cases := map[GameStatus]bool{
		StatusFinal:      true,
		StatusCanceled:   true,
		StatusInProgress: false,
		StatusPostponed:  false,
		"":               false,
	}
	for status, want := range cases {
		if got := status.Finished(); got != want {
			t.Fatalf("%q: expected %v, got %v", status, want, got)
		}
	}
}
