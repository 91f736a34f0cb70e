package scoreboard

type gamesResponse struct {
	Data []gameResponse `json:"data"`
	Meta metaResponse   `json:"meta"`
}

type gameResponse struct {
	ID               int               `json:"id"`
	League           string            `json:"league"`
	Status           string            `json:"status"`
	HomeTeam         teamResponse      `json:"home_team"`
	VisitorTeam      teamResponse      `json:"visitor_team"`
	HomeTeamScore    int               `json:"home_team_score"`
	VisitorTeamScore int               `json:"visitor_team_score"`
	Situation        situationResponse `json:"situation"`
}

type teamResponse struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
	City         string `json:"city"`
	Conference   string `json:"conference"`
	Division     string `json:"division"`
	FullName     string `json:"full_name"`
	Name         string `json:"name"`
	Logo         string `json:"logo"`
	Timeouts     *int   `json:"timeouts"`
}

// situationResponse is the live down-and-distance block; absent before kickoff.
type situationResponse struct {
	Down             int     `json:"down"`
	Distance         int     `json:"distance"`
	DownDistanceText string  `json:"down_distance_text"`
	Possession       string  `json:"possession"`
	YardLine         float64 `json:"yard_line"`
	LastPlay         string  `json:"last_play"`
}

type metaResponse struct {
	TotalPages int `json:"total_pages"`
}
