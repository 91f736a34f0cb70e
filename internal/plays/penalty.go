package plays

import "strings"

type infraction struct {
	phrase string
	name   string
	side   string
}

// infractions is checked in order, so longer phrases precede the ones they contain.
var infractions = []infraction{
	{"offensive pass interference", "Offensive Pass Interference", PenaltyOffense},
	{"defensive pass interference", "Defensive Pass Interference", PenaltyDefense},
	{"offensive holding", "Offensive Holding", PenaltyOffense},
	{"defensive holding", "Defensive Holding", PenaltyDefense},
	{"illegal block in the back", "Illegal Block in the Back", PenaltyOffense},
	{"intentional grounding", "Intentional Grounding", PenaltyOffense},
	{"illegal forward pass", "Illegal Forward Pass", PenaltyOffense},
	{"ineligible downfield", "Ineligible Downfield Pass", PenaltyOffense},
	{"illegal formation", "Illegal Formation", PenaltyOffense},
	{"illegal motion", "Illegal Motion", PenaltyOffense},
	{"illegal shift", "Illegal Shift", PenaltyOffense},
	{"false start", "False Start", PenaltyOffense},
	{"delay of game", "Delay of Game", PenaltyOffense},
	{"chop block", "Chop Block", PenaltyOffense},
	{"neutral zone infraction", "Neutral Zone Infraction", PenaltyDefense},
	{"roughing the passer", "Roughing the Passer", PenaltyDefense},
	{"roughing the kicker", "Roughing the Kicker", PenaltyDefense},
	{"running into the kicker", "Running Into the Kicker", PenaltyDefense},
	{"illegal contact", "Illegal Contact", PenaltyDefense},
	{"horse collar", "Horse Collar Tackle", PenaltyDefense},
	{"encroachment", "Encroachment", PenaltyDefense},
	{"offside", "Offside", PenaltyDefense},
	{"face mask", "Face Mask", PenaltyDefense},
	{"pass interference", "Pass Interference", PenaltyDefense},
	{"unnecessary roughness", "Unnecessary Roughness", ""},
	{"unsportsmanlike conduct", "Unsportsmanlike Conduct", ""},
	{"taunting", "Taunting", ""},
	{"too many men", "Too Many Men on the Field", ""},
	{"personal foul", "Personal Foul", ""},
	{"holding", "Holding", PenaltyOffense},
}

// classifyInfraction matches lower-cased play text against the vocabulary. Explicit
// "offensive"/"defensive" wording overrides the vocabulary's side.
func classifyInfraction(lower string) (name, side string) {
	for _, inf := range infractions {
		if strings.Contains(lower, inf.phrase) {
			name, side = inf.name, inf.side
			break
		}
	}
	switch {
	case containsAny(lower, "offensive", "on offense", "offense,"):
		side = PenaltyOffense
	case containsAny(lower, "defensive", "on defense", "defense,"):
		side = PenaltyDefense
	}
	return name, side
}
