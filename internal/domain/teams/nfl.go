package teams

func nflTeam(abbr, city, name, conf, div string) Team {
	return Team{
		ID:           "nfl-" + abbr,
		Name:         name,
		FullName:     city + " " + name,
		Abbreviation: abbr,
		City:         city,
		Conference:   conf,
		Division:     div,
	}
}

// NFL returns the league's teams keyed by the abbreviations used in play-by-play copy.
func NFL() []Team {
	return []Team{
		nflTeam("BUF", "Buffalo", "Bills", "AFC", "East"),
		nflTeam("MIA", "Miami", "Dolphins", "AFC", "East"),
		nflTeam("NE", "New England", "Patriots", "AFC", "East"),
		nflTeam("NYJ", "New York", "Jets", "AFC", "East"),
		nflTeam("BAL", "Baltimore", "Ravens", "AFC", "North"),
		nflTeam("CIN", "Cincinnati", "Bengals", "AFC", "North"),
		nflTeam("CLE", "Cleveland", "Browns", "AFC", "North"),
		nflTeam("PIT", "Pittsburgh", "Steelers", "AFC", "North"),
		nflTeam("HOU", "Houston", "Texans", "AFC", "South"),
		nflTeam("IND", "Indianapolis", "Colts", "AFC", "South"),
		nflTeam("JAX", "Jacksonville", "Jaguars", "AFC", "South"),
		nflTeam("TEN", "Tennessee", "Titans", "AFC", "South"),
		nflTeam("DEN", "Denver", "Broncos", "AFC", "West"),
		nflTeam("KC", "Kansas City", "Chiefs", "AFC", "West"),
		nflTeam("LV", "Las Vegas", "Raiders", "AFC", "West"),
		nflTeam("LAC", "Los Angeles", "Chargers", "AFC", "West"),
		nflTeam("DAL", "Dallas", "Cowboys", "NFC", "East"),
		nflTeam("NYG", "New York", "Giants", "NFC", "East"),
		nflTeam("PHI", "Philadelphia", "Eagles", "NFC", "East"),
		nflTeam("WSH", "Washington", "Commanders", "NFC", "East"),
		nflTeam("CHI", "Chicago", "Bears", "NFC", "North"),
		nflTeam("DET", "Detroit", "Lions", "NFC", "North"),
		nflTeam("GB", "Green Bay", "Packers", "NFC", "North"),
		nflTeam("MIN", "Minnesota", "Vikings", "NFC", "North"),
		nflTeam("ATL", "Atlanta", "Falcons", "NFC", "South"),
		nflTeam("CAR", "Carolina", "Panthers", "NFC", "South"),
		nflTeam("NO", "New Orleans", "Saints", "NFC", "South"),
		nflTeam("TB", "Tampa Bay", "Buccaneers", "NFC", "South"),
		nflTeam("ARI", "Arizona", "Cardinals", "NFC", "West"),
		nflTeam("LAR", "Los Angeles", "Rams", "NFC", "West"),
		nflTeam("SF", "San Francisco", "49ers", "NFC", "West"),
		nflTeam("SEA", "Seattle", "Seahawks", "NFC", "West"),
	}
}
