package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlink/job-matcher/internal/domain"
)

var fixedNow = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func newTestScorer(opts ...Option) *Scorer {
	return NewScorer(append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func TestScorer_NeutralProfileWithGeoBonus(t *testing.T) {
	data := &domain.UserData{
		Profile: &domain.Profile{ID: "u1", Location: "Accra, Ghana"},
		Skills:  []domain.Skill{{Name: "Python"}, {Name: "SQL"}},
	}
	job := &domain.JobPosting{
		ID:              "j1",
		Title:           "Data Analyst",
		Description:     "Python developer with SQL",
		VisaSponsorship: true,
	}

	r := newTestScorer().Score(data, job)

	assert.Equal(t, domain.Breakdown{
		Skills:     40,
		Experience: 5,
		Industry:   8,
		Location:   7,
		Salary:     7,
		JobType:    3,
		Bonus:      10,
	}, r.Breakdown)
	assert.Equal(t, 80, r.Score)
	assert.Equal(t, domain.LabelExcellent, r.Label)
	assert.Equal(t, domain.StatusNew, r.Status)
	assert.Equal(t, 2, r.RequiredYears)
	assert.True(t, r.Persistable())
}

func TestScorer_SeniorJobWithoutExperience(t *testing.T) {
	data := &domain.UserData{Profile: &domain.Profile{ID: "u1"}}
	job := &domain.JobPosting{Title: "Senior Engineer"}

	r := newTestScorer().Score(data, job)

	assert.Equal(t, 7, r.RequiredYears)
	assert.Equal(t, 5, r.Breakdown.Experience)
}

func TestScorer_ClampsAtHundred(t *testing.T) {
	data := &domain.UserData{
		Profile: &domain.Profile{
			ID:                  "u1",
			Location:            "Lagos, Nigeria",
			SalaryMin:           floatPtr(5000),
			PreferredIndustries: []string{"fintech"},
			JobTypes:            []string{"full-time"},
		},
		Skills: []domain.Skill{{Name: "Python"}},
		Experience: []domain.WorkExperience{
			{StartDate: "2010-01", EndDate: strPtr("2020-01")},
		},
	}
	job := &domain.JobPosting{
		Title:           "Senior Python Engineer",
		Description:     "Join a fintech scale-up",
		SalaryRange:     "GHS 6,000 - 9,000",
		JobType:         "Full Time",
		RemoteOption:    true,
		VisaSponsorship: true,
	}

	r := newTestScorer().Score(data, job)

	require.Equal(t, 110, r.Breakdown.Sum())
	assert.Equal(t, 100, r.Score)
	assert.Equal(t, 10.0, r.UserYears)
}

func TestScorer_TotalEqualsClampedSum(t *testing.T) {
	data := &domain.UserData{
		Profile: &domain.Profile{ID: "u1", LocationPreferences: []string{"Kumasi"}, JobTypes: []string{"contract"}},
		Skills:  []domain.Skill{{Name: "Go"}, {Name: "Kubernetes"}, {Name: "Excel"}},
	}
	jobs := []*domain.JobPosting{
		{Title: "Go developer", Location: "Accra", JobType: "Full-time"},
		{Title: "Office assistant", Requirements: "spreadsheets", Location: "Kumasi", JobType: "Contract"},
		{Title: "Chef"},
	}

	s := newTestScorer()
	for _, job := range jobs {
		r := s.Score(data, job)
		assert.Equal(t, Clamp(r.Breakdown.Sum()), r.Score, job.Title)
		assert.GreaterOrEqual(t, r.Score, 0)
		assert.LessOrEqual(t, r.Score, 100)
	}
}

func TestScorer_Idempotent(t *testing.T) {
	data := &domain.UserData{
		Profile: &domain.Profile{ID: "u1", Location: "Nairobi"},
		Skills:  []domain.Skill{{Name: "React"}, {Name: "Node.js"}},
	}
	job := &domain.JobPosting{Title: "Full Stack Developer", Requirements: "reactjs and nodejs", VisaSponsorship: true}

	s := newTestScorer()
	assert.Equal(t, s.Score(data, job), s.Score(data, job))
}

func TestScorer_NilProfileIsNeutral(t *testing.T) {
	r := newTestScorer().Score(&domain.UserData{}, &domain.JobPosting{Title: "Cashier"})

	assert.Equal(t, 8, r.Breakdown.Industry)
	assert.Equal(t, 0, r.Breakdown.Bonus)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score  int
		label  string
		status string
	}{
		{100, domain.LabelExcellent, domain.StatusNew},
		{70, domain.LabelExcellent, domain.StatusNew},
		{69, domain.LabelGood, domain.StatusNew},
		{50, domain.LabelGood, domain.StatusNew},
		{49, domain.LabelFair, domain.StatusNew},
		{40, domain.LabelFair, domain.StatusNew},
		{39, domain.LabelLow, domain.StatusLowMatch},
		{0, domain.LabelLow, domain.StatusLowMatch},
	}

	s := NewScorer()
	for _, tt := range tests {
		label, status := s.Classify(tt.score)
		assert.Equal(t, tt.label, label, tt.score)
		assert.Equal(t, tt.status, status, tt.score)
	}
}

func TestClassify_FairAsLowMatch(t *testing.T) {
	s := NewScorer(WithFairAsLowMatch(true))

	label, status := s.Classify(45)
	assert.Equal(t, domain.LabelFair, label)
	assert.Equal(t, domain.StatusLowMatch, status)

	_, status = s.Classify(50)
	assert.Equal(t, domain.StatusNew, status)
}

func TestResult_PersistThresholdBoundary(t *testing.T) {
	assert.True(t, Result{Score: 30}.Persistable())
	assert.False(t, Result{Score: 29}.Persistable())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-5))
	assert.Equal(t, 100, Clamp(110))
	assert.Equal(t, 42, Clamp(42))
}
