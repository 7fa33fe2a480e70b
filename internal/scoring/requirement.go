package scoring

import "strings"

const defaultRequiredYears = 2

// requirementLevels is checked top to bottom; the first tier with a cue wins.
var requirementLevels = []struct {
	years int
	cues  []string
}{
	{years: 7, cues: []string{"senior", "lead", "10+ years", "8+ years"}},
	{years: 5, cues: []string{"5+ years", "5 years"}},
	{years: 3, cues: []string{"mid", "intermediate", "3+ years"}},
	{years: 1, cues: []string{"junior", "entry", "graduate", "1+ year"}},
}

// RequiredYears infers the experience a job asks for from keyword cues.
func RequiredYears(text string) int {
	text = strings.ToLower(text)
	for _, level := range requirementLevels {
		for _, cue := range level.cues {
			if strings.Contains(text, cue) {
				return level.years
			}
		}
	}
	return defaultRequiredYears
}
