package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/careerlink/job-matcher/internal/domain"
)

// dateLayouts are tried in order when parsing free-form experience dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01",
	"01/2006",
	"1/2006",
	"Jan 2006",
	"January 2006",
	"2006",
}

var ongoingMarkers = map[string]struct{}{
	"present": {},
	"current": {},
	"now":     {},
	"ongoing": {},
}

// ParseDate parses a free-form date. ok is false when no layout fits.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// EstimateYears sums the whole months of every entry and returns the total in
// years with one decimal. Entries with an unparseable start are skipped; a
// missing, ongoing or unparseable end date means now.
func EstimateYears(entries []domain.WorkExperience, now time.Time) float64 {
	total := 0
	for _, e := range entries {
		start, ok := ParseDate(e.StartDate)
		if !ok {
			continue
		}
		total += monthsBetween(start, endDate(e.EndDate, now))
	}
	return math.Round(float64(total)/12*10) / 10
}

func endDate(raw *string, now time.Time) time.Time {
	if raw == nil {
		return now
	}
	if _, ongoing := ongoingMarkers[strings.ToLower(strings.TrimSpace(*raw))]; ongoing {
		return now
	}
	if end, ok := ParseDate(*raw); ok {
		return end
	}
	return now
}

// monthsBetween counts calendar months from start to end, never below zero.
func monthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	return max(months, 0)
}
