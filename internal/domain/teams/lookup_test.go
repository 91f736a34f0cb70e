package teams

import "testing"

func TestDefaultTableResolvesNFLAbbreviations(t *testing.T) {
	table := DefaultTable()

	team, ok := table.Resolve("nfl", "ne")
	if !ok || team.Name != "Patriots" {
		t.Fatalf("expected Patriots, got %+v ok=%v", team, ok)
	}
	if _, ok := table.Resolve("", "SF"); !ok {
		t.Fatal("expected cross-league lookup to resolve SF")
	}
}

func TestTableDoesNotResolveUnknownAbbreviations(t *testing.T) {
	table := DefaultTable()

	for _, abbr := range []string{"", "WAS", "XYZ"} {
		if _, ok := table.Resolve("nfl", abbr); ok {
			t.Fatalf("expected %q not to resolve", abbr)
		}
	}
	if _, ok := table.Resolve("mlb", "NE"); ok {
		t.Fatal("expected unknown league not to resolve")
	}
	var nilTable *Table
	if _, ok := nilTable.Resolve("nfl", "NE"); ok {
		t.Fatal("expected nil table not to resolve")
	}
}

func TestNFLHasThirtyTwoUniqueTeams(t *testing.T) {
	seen := map[string]bool{}
	for _, team := range NFL() {
		if seen[team.Abbreviation] {
			t.Fatalf("duplicate abbreviation %s", team.Abbreviation)
		}
		seen[team.Abbreviation] = true
	}
	if len(seen) != 32 {
		t.Fatalf("expected 32 teams, got %d", len(seen))
	}
}

func TestSameAbbreviation(t *testing.T) {
	if !SameAbbreviation("NE", " ne ") {
		t.Fatal("expected case-insensitive match")
	}
	if SameAbbreviation("", "") {
		t.Fatal("expected empty abbreviations not to match")
	}
}

func TestTableTeamsListsByLeague(t *testing.T) {
	table := NewTable(map[string][]Team{
		"nfl":   {{Abbreviation: "NYJ"}, {Abbreviation: "BUF"}},
		"ncaaf": {{Abbreviation: "UGA"}},
	})
	nfl := table.Teams("NFL")
	if len(nfl) != 2 || nfl[0].Abbreviation != "BUF" || nfl[1].Abbreviation != "NYJ" {
		t.Fatalf("unexpected nfl teams %+v", nfl)
	}
	if all := table.Teams(""); len(all) != 3 {
		t.Fatalf("expected every league, got %d", len(all))
	}
	var nilTable *Table
	if nilTable.Teams("nfl") != nil {
		t.Fatalf("expected nil for nil table")
	}
}
