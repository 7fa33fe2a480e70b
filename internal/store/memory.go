package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/careerlink/job-matcher/internal/domain"
)

type matchKey struct {
	userID string
	jobID  string
}

// Memory keeps everything in process. It backs tests and dry runs.
type Memory struct {
	mu         sync.RWMutex
	profiles   map[string]*domain.Profile
	skills     map[string][]domain.Skill
	experience map[string][]domain.WorkExperience
	jobs       []domain.JobPosting
	matches    map[matchKey]*domain.MatchResult
}

func NewMemory() *Memory {
	return &Memory{
		profiles:   make(map[string]*domain.Profile),
		skills:     make(map[string][]domain.Skill),
		experience: make(map[string][]domain.WorkExperience),
		matches:    make(map[matchKey]*domain.MatchResult),
	}
}

// PutUser stores the profile and replaces the user's skills and experience.
func (m *Memory) PutUser(data *domain.UserData) {
	if data == nil || data.Profile == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p := *data.Profile
	m.profiles[p.ID] = &p
	m.skills[p.ID] = append([]domain.Skill(nil), data.Skills...)
	m.experience[p.ID] = append([]domain.WorkExperience(nil), data.Experience...)
}

func (m *Memory) AddJobs(jobs ...domain.JobPosting) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, jobs...)
}

// Matches returns a snapshot of every stored match.
func (m *Memory) Matches() []*domain.MatchResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.MatchResult, 0, len(m.matches))
	for _, match := range m.matches {
		c := *match
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].JobID < out[j].JobID
	})
	return out
}

func (m *Memory) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *Memory) ListSkills(_ context.Context, userID string) ([]domain.Skill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Skill(nil), m.skills[userID]...), nil
}

func (m *Memory) ListWorkExperience(_ context.Context, userID string) ([]domain.WorkExperience, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := append([]domain.WorkExperience(nil), m.experience[userID]...)
	sortExperience(out)
	return out, nil
}

func (m *Memory) ListActiveJobs(_ context.Context) ([]domain.JobPosting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.JobPosting, 0, len(m.jobs))
	for _, job := range m.jobs {
		if job.IsActive {
			out = append(out, job)
		}
	}
	return out, nil
}

func (m *Memory) ListUserIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.profiles))
	for id := range m.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Memory) GetMatch(_ context.Context, userID, jobID string) (*domain.MatchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	match, ok := m.matches[matchKey{userID, jobID}]
	if !ok {
		return nil, ErrNotFound
	}
	c := *match
	return &c, nil
}

func (m *Memory) InsertMatch(_ context.Context, match *domain.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := matchKey{match.UserID, match.JobID}
	if _, exists := m.matches[key]; exists {
		return ErrDuplicate
	}
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	c := *match
	m.matches[key] = &c
	return nil
}

func (m *Memory) UpdateMatch(_ context.Context, match *domain.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := matchKey{match.UserID, match.JobID}
	current, ok := m.matches[key]
	if !ok {
		return ErrNotFound
	}
	c := *match
	c.ID = current.ID
	c.CreatedAt = current.CreatedAt
	m.matches[key] = &c
	return nil
}

// restoreMatch puts prev back under its key, or drops the key when prev is nil.
func (m *Memory) restoreMatch(userID, jobID string, prev *domain.MatchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := matchKey{userID, jobID}
	if prev == nil {
		delete(m.matches, key)
		return
	}
	m.matches[key] = prev
}

func (m *Memory) Close() error { return nil }

// sortExperience orders entries newest first. Start dates are compared as
// text, which is correct for the ISO layouts the CV extraction produces.
func sortExperience(entries []domain.WorkExperience) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartDate > entries[j].StartDate
	})
}
