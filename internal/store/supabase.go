package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	supabase "github.com/nedpals/supabase-go"

	"github.com/careerlink/job-matcher/internal/domain"
)

const (
	tableProfiles       = "profiles"
	tableSkills         = "skills"
	tableWorkExperience = "work_experience"
	tableJobs           = "jobs"
	tableJobMatches     = "job_matches"
)

// Supabase talks to the same tables through the PostgREST API.
type Supabase struct {
	client *supabase.Client
}

// matchRecord is the job_matches row. Only the original sub-score columns are
// stored; industry, job type and bonus live in the total.
type matchRecord struct {
	ID                   string     `json:"id,omitempty"`
	UserID               string     `json:"user_id"`
	JobID                string     `json:"job_id"`
	MatchScore           int        `json:"match_score"`
	SkillsMatchScore     int        `json:"skills_match_score"`
	ExperienceMatchScore int        `json:"experience_match_score"`
	LocationMatchScore   int        `json:"location_match_score"`
	SalaryMatchScore     int        `json:"salary_match_score"`
	Status               string     `json:"status"`
	MatchedAt            time.Time  `json:"matched_at"`
	CreatedAt            *time.Time `json:"created_at,omitempty"`
}

func NewSupabase(url, key string) (*Supabase, error) {
	if url == "" || key == "" {
		return nil, errors.New("supabase url and key must be provided")
	}
	return &Supabase{client: supabase.CreateClient(url, key)}, nil
}

func (s *Supabase) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	var rows []map[string]any
	if err := s.client.DB.From(tableProfiles).Select("*").Eq("id", userID).Execute(&rows); err != nil {
		return nil, fmt.Errorf("select %s: %w", tableProfiles, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	var profile domain.Profile
	if err := decodeRow(rows[0], &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}

func (s *Supabase) ListSkills(_ context.Context, userID string) ([]domain.Skill, error) {
	var rows []map[string]any
	if err := s.client.DB.From(tableSkills).Select("*").Eq("user_id", userID).Execute(&rows); err != nil {
		return nil, fmt.Errorf("select %s: %w", tableSkills, err)
	}

	skills := make([]domain.Skill, 0, len(rows))
	if err := decodeRow(rows, &skills); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}
	return skills, nil
}

func (s *Supabase) ListWorkExperience(_ context.Context, userID string) ([]domain.WorkExperience, error) {
	var rows []map[string]any
	if err := s.client.DB.From(tableWorkExperience).Select("*").Eq("user_id", userID).Execute(&rows); err != nil {
		return nil, fmt.Errorf("select %s: %w", tableWorkExperience, err)
	}

	entries := make([]domain.WorkExperience, 0, len(rows))
	if err := decodeRow(rows, &entries); err != nil {
		return nil, fmt.Errorf("decode work experience: %w", err)
	}
	sortExperience(entries)
	return entries, nil
}

func (s *Supabase) ListActiveJobs(_ context.Context) ([]domain.JobPosting, error) {
	var rows []map[string]any
	if err := s.client.DB.From(tableJobs).Select("*").Eq("is_active", "true").Execute(&rows); err != nil {
		return nil, fmt.Errorf("select %s: %w", tableJobs, err)
	}

	jobs := make([]domain.JobPosting, 0, len(rows))
	if err := decodeRow(rows, &jobs); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	return jobs, nil
}

func (s *Supabase) ListUserIDs(_ context.Context) ([]string, error) {
	var rows []struct {
		ID string `json:"id"`
	}
	if err := s.client.DB.From(tableProfiles).Select("id").Execute(&rows); err != nil {
		return nil, fmt.Errorf("select %s: %w", tableProfiles, err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (s *Supabase) GetMatch(_ context.Context, userID, jobID string) (*domain.MatchResult, error) {
	var rows []map[string]any
	err := s.client.DB.From(tableJobMatches).Select("*").
		Eq("user_id", userID).
		Eq("job_id", jobID).
		Execute(&rows)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", tableJobMatches, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	var rec matchRecord
	if err := decodeRow(rows[0], &rec); err != nil {
		return nil, fmt.Errorf("decode match: %w", err)
	}
	return rec.toMatch(), nil
}

func (s *Supabase) InsertMatch(_ context.Context, m *domain.MatchResult) error {
	var results []matchRecord
	if err := s.client.DB.From(tableJobMatches).Insert(newMatchRecord(m)).Execute(&results); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", tableJobMatches, err)
	}
	if len(results) > 0 {
		m.ID = results[0].ID
	}
	return nil
}

func (s *Supabase) UpdateMatch(_ context.Context, m *domain.MatchResult) error {
	var results []matchRecord
	err := s.client.DB.From(tableJobMatches).Update(newMatchRecord(m)).
		Eq("user_id", m.UserID).
		Eq("job_id", m.JobID).
		Execute(&results)
	if err != nil {
		return fmt.Errorf("update %s: %w", tableJobMatches, err)
	}
	if len(results) == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Supabase) Close() error { return nil }

func newMatchRecord(m *domain.MatchResult) matchRecord {
	return matchRecord{
		UserID:               m.UserID,
		JobID:                m.JobID,
		MatchScore:           m.Score,
		SkillsMatchScore:     m.Breakdown.Skills,
		ExperienceMatchScore: m.Breakdown.Experience,
		LocationMatchScore:   m.Breakdown.Location,
		SalaryMatchScore:     m.Breakdown.Salary,
		Status:               m.Status,
		MatchedAt:            m.MatchedAt,
	}
}

func (r matchRecord) toMatch() *domain.MatchResult {
	m := &domain.MatchResult{
		ID:     r.ID,
		UserID: r.UserID,
		JobID:  r.JobID,
		Score:  r.MatchScore,
		Breakdown: domain.Breakdown{
			Skills:     r.SkillsMatchScore,
			Experience: r.ExperienceMatchScore,
			Location:   r.LocationMatchScore,
			Salary:     r.SalaryMatchScore,
		},
		Status:    r.Status,
		MatchedAt: r.MatchedAt,
	}
	if r.CreatedAt != nil {
		m.CreatedAt = *r.CreatedAt
	}
	return m
}

// decodeRow decodes loosely typed PostgREST rows into out using json tags.
func decodeRow(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// isUniqueViolation recognizes PostgREST's unique constraint error (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}
