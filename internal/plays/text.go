package plays

import (
	"regexp"
	"strings"
)

var (
	interceptedByRe = regexp.MustCompile(`(?i)intercepted by ([A-Z]{2,4})-`)
	recoveredByRe   = regexp.MustCompile(`(?i)recovered by ([A-Z]{2,4})-`)
	penaltyOnRe     = regexp.MustCompile(`(?:PENALTY|Penalty|penalty) on ([A-Z]{2,4})-([A-Za-z][A-Za-z.'\-]*(?: [A-Z][A-Za-z'\-]+)?)`)
	timeoutByRe     = regexp.MustCompile(`(?i)timeout #(\d) by ([A-Z]{2,4})`)
	puntDistanceRe  = regexp.MustCompile(`(?i)punts (\d+) yards?`)
	kickDistanceRe  = regexp.MustCompile(`(?i)(\d+)[ -]?(?:yd|yard)s?\s+field goal`)
	yardsRe         = regexp.MustCompile(`(?i)(-?\d+)\s+yards?`)
	forYardsRe      = regexp.MustCompile(`(?i)for (-?\d+) yards?`)
	sackedByRe      = regexp.MustCompile(`(?:SACKED|[Ss]acked)\b.*?\bby\s+([A-Z][A-Za-z.'\-]+(?: [A-Z][A-Za-z'\-]+)?)`)
	sackParenRe     = regexp.MustCompile(`\(([A-Z][A-Za-z.'\-]+(?:[ ;,]+[A-Z][A-Za-z.'\-]+)*)\)`)
	nameBeforeRe    = regexp.MustCompile(`([A-Z]\.\s?[A-Za-z'\-]+)\s+(?i:sack)\b`)

	fgWordRe       = regexp.MustCompile(`\bfg\b`)
	patWordRe      = regexp.MustCompile(`\b(?:PAT|XP)\b`)
	goodWordRe     = regexp.MustCompile(`\bgood\b`)
	flagWordRe     = regexp.MustCompile(`\bflags?\b`)
	kickAfterRe    = regexp.MustCompile(`\b(?:extra point|two-point|2-pt|conversion)\b`)
	firstDownRe    = regexp.MustCompile(`\b(?:1st down|first down)\b`)
	firstAndTenRe  = regexp.MustCompile(`(?i)^\s*1st\s*(?:&|and)\s*10\b`)
	puntWordRe     = regexp.MustCompile(`\bpunts?\b`)
	kickoffWordRe  = regexp.MustCompile(`\bkick(?:s|ed|off)?\b`)
	touchdownRe    = regexp.MustCompile(`\btouchdown\b|\bfor a td\b`)
	successTokenRe = regexp.MustCompile(`\b(?:succeeds|successful|is good|good)\b`)
)

// missTokens is ordered most specific first so a direction wins over a bare "no good".
var missTokens = []string{"wide left", "wide right", "blocked", "short", "no good", "missed"}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// firstMatch returns the first submatch group of re in s, or "".
func firstMatch(re *regexp.Regexp, s string, group int) string {
	m := re.FindStringSubmatch(s)
	if len(m) <= group {
		return ""
	}
	return strings.TrimSpace(m[group])
}

// missReason returns the first miss token present, or "".
func missReason(lower string) string {
	for _, tok := range missTokens {
		if strings.Contains(lower, tok) {
			return tok
		}
	}
	return ""
}

// negated reports whether the play was wiped out. A penalty enforced between downs lets the
// play stand.
func negated(lower string) bool {
	return strings.Contains(lower, "no play") && !strings.Contains(lower, "enforced between downs")
}

// sackAttacker finds the defender credited with a sack.
func sackAttacker(raw string) string {
	name := firstMatch(sackedByRe, raw, 1)
	if name == "" {
		if idx := strings.Index(strings.ToLower(raw), "sack"); idx >= 0 && idx < len(raw) {
			name = firstMatch(sackParenRe, raw[idx:], 1)
		}
	}
	if name == "" {
		name = firstMatch(nameBeforeRe, raw, 1)
	}
	return strings.TrimRight(name, ".,;")
}
