package teams

import "strings"

// Team represents the normalized team shape for use inside games.
// Kept in its own package to keep domain models modular and reusable across providers/fixtures.
type Team struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FullName     string `json:"fullName"`
	Abbreviation string `json:"abbreviation"`
	City         string `json:"city"`
	Conference   string `json:"conference"`
	Division     string `json:"division"`
	LogoURL      string `json:"logoUrl,omitempty"`
}

// SameAbbreviation compares two abbreviations case-insensitively.
func SameAbbreviation(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
