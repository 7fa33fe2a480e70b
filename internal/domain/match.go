package domain

import "time"

// Match statuses as stored in job_matches.status.
const (
	StatusNew      = "new"
	StatusLowMatch = "low_match"
)

// Labels describe the score band a match falls into.
const (
	LabelExcellent = "excellent"
	LabelGood      = "good"
	LabelFair      = "fair"
	LabelLow       = "low"
)

// Breakdown holds the six weighted sub-scores and the geo bonus.
type Breakdown struct {
	Skills     int `json:"skills"`
	Experience int `json:"experience"`
	Industry   int `json:"industry"`
	Location   int `json:"location"`
	Salary     int `json:"salary"`
	JobType    int `json:"job_type"`
	Bonus      int `json:"bonus"`
}

// Sum is the unclamped total.
func (b Breakdown) Sum() int {
	return b.Skills + b.Experience + b.Industry + b.Location + b.Salary + b.JobType + b.Bonus
}

type MatchResult struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	JobID         string    `json:"job_id"`
	Score         int       `json:"match_score"`
	Breakdown     Breakdown `json:"breakdown"`
	Label         string    `json:"label,omitempty"`
	Status        string    `json:"status"`
	MatchedSkills []string  `json:"matched_skills,omitempty"`
	MatchedAt     time.Time `json:"matched_at"`
	CreatedAt     time.Time `json:"created_at"`
}
