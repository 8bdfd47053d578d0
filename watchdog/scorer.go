package watchdog

import (
	"strings"
	"unicode/utf8"

	"github.com/nsneverhax/nhxinfobot/models"
)

const maxLabelLineLen = 60

var bulletMarkers = []string{"•", "-", "—"}

// Scorer rates a single message for solicitation pitch patterns. Higher scores
// look more like the "open to roles, DM me" spam that targets dev servers.
type Scorer struct {
	minTextLen int
	phrases    []string
	keywords   []string
}

func NewScorer(cfg models.ScamPitchConfig) *Scorer {
	return &Scorer{
		minTextLen: cfg.MinTextLen,
		phrases:    lowerAll(cfg.Phrases),
		keywords:   lowerAll(cfg.Keywords),
	}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Score returns the heuristic score of text. Empty text scores zero.
func (s *Scorer) Score(text string) int {
	norm := NormalizeText(text)
	if norm == "" {
		return 0
	}

	score := 0

	if utf8.RuneCountInString(norm) >= s.minTextLen {
		score += 2
	}

	for _, p := range s.phrases {
		if strings.Contains(norm, p) {
			score += 4
			break
		}
	}

	hits := 0
	for _, k := range s.keywords {
		if strings.Contains(norm, k) {
			hits++
		}
	}
	switch {
	case hits >= 4:
		score += 3
	case hits >= 2:
		score += 2
	case hits >= 1:
		score++
	}

	switch labels := labelLines(text); {
	case labels >= 3:
		score += 2
	case labels >= 2:
		score++
	}

	if strings.Contains(text, "\n") && containsAny(text, bulletMarkers) {
		score++
	}

	return score
}

// isLineBreak reports whether r ends a line, Unicode separators included.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// labelLines counts short "Category: ..." style lines in the raw text.
func labelLines(text string) int {
	n := 0
	for _, ln := range strings.FieldsFunc(text, isLineBreak) {
		if strings.Contains(ln, ":") && utf8.RuneCountInString(strings.TrimSpace(ln)) <= maxLabelLineLen {
			n++
		}
	}
	return n
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
