package scoreboard

import "time"

const (
	providerName       = "scoreboard"
	defaultBaseURL     = "https://scoreboard.example.com/v1"
	defaultPerPage     = 50
	defaultHTTPTimeout = 10 * time.Second
	defaultTimezone    = "America/New_York"
	defaultMaxPages    = 5
)
