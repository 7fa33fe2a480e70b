package scoring

import (
	"strings"

	"github.com/careerlink/job-matcher/internal/domain"
)

// ScoreExperience compares the user's years with the job's requirement (0-20).
func ScoreExperience(years float64, required int) int {
	req := float64(required)
	switch {
	case years >= req:
		return 20
	case years >= 0.7*req:
		return 15
	case years >= 0.5*req:
		return 10
	default:
		return 5
	}
}

// ScoreIndustry returns 15 when a preferred industry appears in the job text,
// 8 otherwise (including when no preferences are set).
func ScoreIndustry(preferred []string, jobText string) int {
	if anyContained(preferred, Normalize(jobText)) {
		return 15
	}
	return 8
}

// ScoreLocation scores the job location against the user's preferences (0-10).
func ScoreLocation(preferred []string, job *domain.JobPosting) int {
	if job.RemoteOption {
		return 10
	}
	if !hasAny(preferred) {
		return 7
	}

	location := Normalize(job.Location)
	if location == "" {
		return 7
	}
	if anyContained(preferred, location) {
		return 10
	}
	return 5
}

// ScoreSalary compares the first number of the job's salary text with the
// user's expected range (0-10). Missing data on either side is neutral.
func ScoreSalary(userMin, userMax *float64, salaryRange string) int {
	if userMin == nil || *userMin <= 0 {
		return 7
	}
	offered, ok := ParseSalary(salaryRange)
	if !ok {
		return 7
	}

	floor := *userMin
	switch {
	case offered >= floor && (userMax == nil || *userMax <= 0 || offered <= *userMax):
		return 10
	case offered >= 0.8*floor:
		return 7
	default:
		return 4
	}
}

// ScoreJobType matches preferred job types against the job type field (0-5).
func ScoreJobType(preferred []string, jobType string) int {
	if !hasAny(preferred) {
		return 3
	}
	kind := foldJobType(jobType)
	if kind == "" {
		return 3
	}
	for _, p := range preferred {
		if p := foldJobType(p); p != "" && strings.Contains(kind, p) {
			return 5
		}
	}
	return 2
}

// foldJobType makes "Full-Time", "full time" and "fulltime" compare equal.
func foldJobType(s string) string {
	s = Normalize(s)
	return strings.NewReplacer("-", "", " ", "", "_", "").Replace(s)
}

func anyContained(needles []string, haystack string) bool {
	if haystack == "" {
		return false
	}
	for _, n := range needles {
		if n = Normalize(n); n != "" && strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func hasAny(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
