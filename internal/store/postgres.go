package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerlink/job-matcher/internal/domain"
)

// Postgres reads and writes the application tables directly.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("database url is not configured")
	}
	pool, err := NewPostgresPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	err := p.pool.QueryRow(ctx,
		`SELECT id::text, COALESCE(full_name, ''), COALESCE(location, ''),
		        COALESCE(career_level::text, ''), salary_min::float8, salary_max::float8,
		        COALESCE(preferred_industries, '{}'), COALESCE(job_types, '{}'),
		        COALESCE(location_preferences, '{}')
		 FROM profiles
		 WHERE id = $1`,
		userID,
	).Scan(
		&profile.ID, &profile.FullName, &profile.Location,
		&profile.CareerLevel, &profile.SalaryMin, &profile.SalaryMax,
		&profile.PreferredIndustries, &profile.JobTypes,
		&profile.LocationPreferences,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getProfile: %w", err)
	}
	return &profile, nil
}

func (p *Postgres) ListSkills(ctx context.Context, userID string) ([]domain.Skill, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT skill_name, COALESCE(skill_type::text, ''), COALESCE(proficiency_level::text, '')
		 FROM skills
		 WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listSkills query: %w", err)
	}
	defer rows.Close()

	skills := make([]domain.Skill, 0)
	for rows.Next() {
		var s domain.Skill
		if err := rows.Scan(&s.Name, &s.Type, &s.Proficiency); err != nil {
			return nil, fmt.Errorf("listSkills scan: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

func (p *Postgres) ListWorkExperience(ctx context.Context, userID string) ([]domain.WorkExperience, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT COALESCE(job_title, ''), COALESCE(company, ''),
		        COALESCE(start_date::text, ''), end_date::text
		 FROM work_experience
		 WHERE user_id = $1
		 ORDER BY start_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listWorkExperience query: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.WorkExperience, 0)
	for rows.Next() {
		var e domain.WorkExperience
		if err := rows.Scan(&e.JobTitle, &e.Company, &e.StartDate, &e.EndDate); err != nil {
			return nil, fmt.Errorf("listWorkExperience scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *Postgres) ListActiveJobs(ctx context.Context) ([]domain.JobPosting, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id::text, COALESCE(title, ''), COALESCE(company, ''), COALESCE(location, ''),
		        COALESCE(job_type, ''), COALESCE(salary_range, ''), COALESCE(description, ''),
		        COALESCE(requirements, ''), COALESCE(remote_option, false),
		        COALESCE(visa_sponsorship, false), is_active, COALESCE(source_url, '')
		 FROM jobs
		 WHERE is_active = true`,
	)
	if err != nil {
		return nil, fmt.Errorf("listActiveJobs query: %w", err)
	}
	defer rows.Close()

	jobs := make([]domain.JobPosting, 0)
	for rows.Next() {
		var j domain.JobPosting
		if err := rows.Scan(
			&j.ID, &j.Title, &j.Company, &j.Location,
			&j.JobType, &j.SalaryRange, &j.Description,
			&j.Requirements, &j.RemoteOption,
			&j.VisaSponsorship, &j.IsActive, &j.SourceURL,
		); err != nil {
			return nil, fmt.Errorf("listActiveJobs scan: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (p *Postgres) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT id::text FROM profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listUserIDs query: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("listUserIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (p *Postgres) GetMatch(ctx context.Context, userID, jobID string) (*domain.MatchResult, error) {
	var m domain.MatchResult
	err := p.pool.QueryRow(ctx,
		`SELECT id::text, user_id::text, job_id::text, match_score,
		        COALESCE(skills_match_score, 0), COALESCE(experience_match_score, 0),
		        COALESCE(location_match_score, 0), COALESCE(salary_match_score, 0),
		        status::text, COALESCE(matched_at, created_at), created_at
		 FROM job_matches
		 WHERE user_id = $1 AND job_id = $2`,
		userID, jobID,
	).Scan(
		&m.ID, &m.UserID, &m.JobID, &m.Score,
		&m.Breakdown.Skills, &m.Breakdown.Experience,
		&m.Breakdown.Location, &m.Breakdown.Salary,
		&m.Status, &m.MatchedAt, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getMatch: %w", err)
	}
	return &m, nil
}

// InsertMatch returns ErrDuplicate when the (user_id, job_id) row already exists.
func (p *Postgres) InsertMatch(ctx context.Context, m *domain.MatchResult) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO job_matches (user_id, job_id, match_score, skills_match_score,
		                          experience_match_score, location_match_score,
		                          salary_match_score, status, matched_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id, job_id) DO NOTHING
		 RETURNING id::text`,
		m.UserID, m.JobID, m.Score, m.Breakdown.Skills,
		m.Breakdown.Experience, m.Breakdown.Location,
		m.Breakdown.Salary, m.Status, m.MatchedAt,
	).Scan(&m.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrDuplicate
		}
		return fmt.Errorf("insertMatch: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateMatch(ctx context.Context, m *domain.MatchResult) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE job_matches
		 SET match_score = $3, skills_match_score = $4, experience_match_score = $5,
		     location_match_score = $6, salary_match_score = $7, status = $8,
		     matched_at = $9
		 WHERE user_id = $1 AND job_id = $2`,
		m.UserID, m.JobID, m.Score, m.Breakdown.Skills,
		m.Breakdown.Experience, m.Breakdown.Location,
		m.Breakdown.Salary, m.Status, m.MatchedAt,
	)
	if err != nil {
		return fmt.Errorf("updateMatch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
