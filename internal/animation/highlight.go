package animation

import (
	"regexp"
	"sort"
)

var (
	capsWordRe = regexp.MustCompile(`\b[A-Z][A-Z'&]+\b`)
	yardageRe  = regexp.MustCompile(`(?i)-?\b\d+\s*(?:yards?|yds?)\b`)
)

// Highlights returns the conspicuous tokens of a play description in reading order:
// all-caps words (team abbreviations included) and yardage figures.
func Highlights(text string) []string {
	type span struct {
		start int
		token string
	}
	var spans []span
	for _, re := range []*regexp.Regexp{capsWordRe, yardageRe} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, span{start: loc[0], token: text[loc[0]:loc[1]]})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	seen := make(map[string]struct{}, len(spans))
	out := make([]string, 0, len(spans))
	for _, s := range spans {
		if _, ok := seen[s.token]; ok {
			continue
		}
		seen[s.token] = struct{}{}
		out = append(out, s.token)
	}
	return out
}
