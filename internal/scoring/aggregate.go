// Package scoring computes the compatibility score between a user profile and a
// job posting: six weighted criteria, a geo sponsorship bonus, a clamp to
// [0, 100] and a status classification.
package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/careerlink/job-matcher/internal/domain"
)

const (
	// PersistThreshold is the minimum total score that is ever stored.
	PersistThreshold = 30

	minScore = 0
	maxScore = 100
)

// Result is the outcome of scoring one job for one user.
type Result struct {
	Breakdown     domain.Breakdown `json:"breakdown"`
	Score         int              `json:"score"`
	Label         string           `json:"label"`
	Status        string           `json:"status"`
	MatchedSkills []string         `json:"matched_skills"`
	UserYears     float64          `json:"user_years"`
	RequiredYears int              `json:"required_years"`
}

// Persistable reports whether the result clears the persistence threshold.
func (r Result) Persistable() bool {
	return r.Score >= PersistThreshold
}

// ToMatch converts the result into a match record for the given pair.
func (r Result) ToMatch(userID, jobID string, at time.Time) *domain.MatchResult {
	return &domain.MatchResult{
		UserID:        userID,
		JobID:         jobID,
		Score:         r.Score,
		Breakdown:     r.Breakdown,
		Label:         r.Label,
		Status:        r.Status,
		MatchedSkills: append([]string(nil), r.MatchedSkills...),
		MatchedAt:     at,
		CreatedAt:     at,
	}
}

type Option func(*Scorer)

// WithFairAsLowMatch stores 40-49 scores as low_match instead of new.
func WithFairAsLowMatch(enabled bool) Option {
	return func(s *Scorer) { s.fairAsLowMatch = enabled }
}

// WithClock overrides the time source used for ongoing experience.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// Scorer is stateless apart from its options and safe for concurrent use.
type Scorer struct {
	fairAsLowMatch bool
	now            func() time.Time
}

func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes every criterion for the pair and aggregates them.
func (s *Scorer) Score(data *domain.UserData, job *domain.JobPosting) Result {
	profile := data.Profile
	if profile == nil {
		profile = &domain.Profile{}
	}

	jobText := job.Text()
	skills := MatchSkills(data.SkillNames(), jobText)
	years := EstimateYears(data.Experience, s.now())
	required := RequiredYears(jobText)

	b := domain.Breakdown{
		Skills:     int(math.Round(skills.Score)),
		Experience: ScoreExperience(years, required),
		Industry:   ScoreIndustry(profile.PreferredIndustries, strings.Join([]string{jobText, job.Company}, " ")),
		Location:   ScoreLocation(profile.LocationPreferences, job),
		Salary:     ScoreSalary(profile.SalaryMin, profile.SalaryMax, job.SalaryRange),
		JobType:    ScoreJobType(profile.JobTypes, job.JobType),
		Bonus:      GeoBonus(profile.Location, job.VisaSponsorship),
	}

	total := Clamp(b.Sum())
	label, status := s.Classify(total)

	return Result{
		Breakdown:     b,
		Score:         total,
		Label:         label,
		Status:        status,
		MatchedSkills: skills.Matched,
		UserYears:     years,
		RequiredYears: required,
	}
}

// Clamp bounds a raw total to [0, 100].
func Clamp(total int) int {
	return min(max(total, minScore), maxScore)
}

// Classify maps a total score to its label and stored status.
func (s *Scorer) Classify(score int) (label, status string) {
	switch {
	case score >= 70:
		return domain.LabelExcellent, domain.StatusNew
	case score >= 50:
		return domain.LabelGood, domain.StatusNew
	case score >= 40:
		if s.fairAsLowMatch {
			return domain.LabelFair, domain.StatusLowMatch
		}
		return domain.LabelFair, domain.StatusNew
	default:
		return domain.LabelLow, domain.StatusLowMatch
	}
}
