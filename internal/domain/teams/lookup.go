package teams

import (
	"sort"
	"strings"
)

// Lookup resolves team abbreviations found in feed text.
type Lookup interface {
	Resolve(league, abbreviation string) (Team, bool)
}

// Table is a fixed, per-league abbreviation table. Abbreviations missing from the table do
// not resolve; callers treat that as "no attribution".
type Table struct {
	leagues map[string]map[string]Team
}

// NewTable builds a table from per-league team lists.
func NewTable(byLeague map[string][]Team) *Table {
	t := &Table{leagues: make(map[string]map[string]Team, len(byLeague))}
	for league, list := range byLeague {
		idx := make(map[string]Team, len(list))
		for _, team := range list {
			idx[strings.ToUpper(team.Abbreviation)] = team
		}
		t.leagues[strings.ToLower(league)] = idx
	}
	return t
}

// DefaultTable returns the built-in table (NFL).
func DefaultTable() *Table {
	return NewTable(map[string][]Team{"nfl": NFL()})
}

// Resolve finds a team by abbreviation. An empty league searches every league.
func (t *Table) Resolve(league, abbreviation string) (Team, bool) {
	if t == nil || abbreviation == "" {
		return Team{}, false
	}
	key := strings.ToUpper(strings.TrimSpace(abbreviation))
	if league != "" {
		team, ok := t.leagues[strings.ToLower(league)][key]
		return team, ok
	}
	for _, idx := range t.leagues {
		if team, ok := idx[key]; ok {
			return team, true
		}
	}
	return Team{}, false
}

// Teams lists a league's teams ordered by abbreviation. An empty league lists every league.
func (t *Table) Teams(league string) []Team {
	if t == nil {
		return nil
	}
	var out []Team
	for name, idx := range t.leagues {
		if league != "" && name != strings.ToLower(league) {
			continue
		}
		for _, team := range idx {
			out = append(out, team)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Abbreviation < out[j].Abbreviation })
	return out
}
