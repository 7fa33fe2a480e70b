package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/careerlink/job-matcher/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestEstimateYears(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	entries := []domain.WorkExperience{
		{JobTitle: "Analyst", StartDate: "2020-01", EndDate: strPtr("2022-01")},
		{JobTitle: "Engineer", StartDate: "2023-06-01", EndDate: nil},
		{JobTitle: "Broken", StartDate: "sometime in the past", EndDate: strPtr("2021-01")},
		{JobTitle: "Reversed", StartDate: "2024-01", EndDate: strPtr("2023-01")},
	}

	assert.Equal(t, 3.0, EstimateYears(entries, now))
}

func TestEstimateYears_RoundsToOneDecimal(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	entries := []domain.WorkExperience{
		{StartDate: "2019-03", EndDate: strPtr("2019-10")},
	}

	assert.Equal(t, 0.6, EstimateYears(entries, now))
}

func TestEstimateYears_OngoingMarkersUseNow(t *testing.T) {
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	entries := []domain.WorkExperience{
		{StartDate: "Jan 2022", EndDate: strPtr("Present")},
		{StartDate: "2023", EndDate: strPtr("not a date")},
	}

	assert.Equal(t, 3.0, EstimateYears(entries, now))
}

func TestEstimateYears_Empty(t *testing.T) {
	assert.Equal(t, 0.0, EstimateYears(nil, time.Now()))
}

func TestParseDate(t *testing.T) {
	for _, raw := range []string{"2021-04-09", "2021-04", "04/2021", "Apr 2021", "April 2021", "2021-04-09T10:00:00Z"} {
		got, ok := ParseDate(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, 2021, got.Year(), raw)
		assert.Equal(t, time.April, got.Month(), raw)
	}

	_, ok := ParseDate("")
	assert.False(t, ok)
	_, ok = ParseDate("yesterday")
	assert.False(t, ok)
}

func TestRequiredYears(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Senior Backend Engineer", 7},
		{"Team Lead wanted", 7},
		{"10+ years of experience", 7},
		{"at least 5+ years in sales", 5},
		{"5 years of accounting", 5},
		{"Mid-level designer", 3},
		{"intermediate python", 3},
		{"3+ years required", 3},
		{"Junior developer", 1},
		{"entry level role", 1},
		{"graduate programme", 1},
		{"1+ year of customer support", 1},
		{"Data analyst", 2},
		{"senior role for a junior budget", 7},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RequiredYears(tt.text), tt.text)
	}
}
