package scoring

import (
	"math"
	"strings"
)

const (
	skillsWeight = 40
	// skillsDenominatorCap keeps long skill lists from diluting the ratio.
	skillsDenominatorCap = 10
)

// SkillMatch is the Skill Normalizer output.
type SkillMatch struct {
	Matched  []string
	Distinct int
	Score    float64
}

// MatchSkills returns the user skills found in jobText, directly or through
// the synonym table, and the 0-40 skills score.
func MatchSkills(skills []string, jobText string) SkillMatch {
	text := Normalize(jobText)

	seen := make(map[string]struct{}, len(skills))
	matched := make([]string, 0)
	for _, raw := range skills {
		skill := Normalize(raw)
		if skill == "" {
			continue
		}
		if _, dup := seen[skill]; dup {
			continue
		}
		seen[skill] = struct{}{}

		if strings.Contains(text, skill) || matchesViaSynonym(skill, text) {
			matched = append(matched, skill)
		}
	}

	distinct := len(seen)
	if distinct == 0 {
		return SkillMatch{Matched: matched}
	}

	denominator := max(1, min(distinct, skillsDenominatorCap))
	score := math.Min(skillsWeight, float64(len(matched))/float64(denominator)*skillsWeight)

	return SkillMatch{Matched: matched, Distinct: distinct, Score: score}
}

func matchesViaSynonym(skill, text string) bool {
	for _, group := range synonymGroups {
		if !skillInGroup(skill, group) {
			continue
		}
		for _, variant := range group {
			if containsPhrase(text, variant) {
				return true
			}
		}
	}
	return false
}

func skillInGroup(skill string, group []string) bool {
	for _, variant := range group {
		if containsPhrase(skill, variant) || containsPhrase(variant, skill) {
			return true
		}
	}
	return false
}
