package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/careerlink/job-matcher/internal/domain"
)

// File serves profiles and jobs from JSON files and keeps matches in a JSON
// file that is rewritten after every write.
type File struct {
	*Memory
	matchesPath string

	// mu serializes a write with its flush so a failed flush can be undone.
	mu sync.Mutex
}

// profileDocument is the structured CV extraction output plus the profile
// preferences the user fills in.
type profileDocument struct {
	ID           string `json:"id"`
	PersonalInfo struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Location string `json:"location"`
	} `json:"personal_info"`
	CareerLevel string `json:"career_level"`
	Skills      []struct {
		Name        string `json:"name"`
		Type        string `json:"type"`
		Proficiency string `json:"proficiency"`
	} `json:"skills"`
	WorkExperience []struct {
		JobTitle  string  `json:"job_title"`
		Company   string  `json:"company"`
		StartDate string  `json:"start_date"`
		EndDate   *string `json:"end_date"`
	} `json:"work_experience"`
	Preferences struct {
		SalaryMin           *float64 `json:"salary_min"`
		SalaryMax           *float64 `json:"salary_max"`
		PreferredIndustries []string `json:"preferred_industries"`
		JobTypes            []string `json:"job_types"`
		LocationPreferences []string `json:"location_preferences"`
	} `json:"preferences"`
}

type matchesFile struct {
	Matches []*domain.MatchResult `json:"matches"`
}

func NewFile(opts FileOptions) (*File, error) {
	if opts.Profile == "" || opts.Jobs == "" {
		return nil, errors.New("file store needs both a profile and a jobs file")
	}

	users, err := LoadProfileDocuments(opts.Profile)
	if err != nil {
		return nil, err
	}
	jobs, err := LoadJobsFile(opts.Jobs)
	if err != nil {
		return nil, err
	}

	f := &File{Memory: NewMemory(), matchesPath: opts.Matches}
	for _, u := range users {
		f.PutUser(u)
	}
	f.AddJobs(jobs...)

	if opts.Matches != "" {
		existing, err := matchesFromFile(opts.Matches)
		if err != nil {
			return nil, err
		}
		for _, m := range existing {
			if err := f.Memory.InsertMatch(context.Background(), m); err != nil {
				return nil, fmt.Errorf("loading match %s/%s: %w", m.UserID, m.JobID, err)
			}
		}
	}

	return f, nil
}

// InsertMatch stores m and rewrites the matches file. The match is dropped
// again if the file cannot be written.
func (f *File) InsertMatch(ctx context.Context, m *domain.MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.Memory.InsertMatch(ctx, m); err != nil {
		return err
	}
	if err := f.flush(); err != nil {
		f.restoreMatch(m.UserID, m.JobID, nil)
		return err
	}
	return nil
}

// UpdateMatch replaces the stored match and rewrites the matches file. The
// previous record is restored if the file cannot be written.
func (f *File) UpdateMatch(ctx context.Context, m *domain.MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, err := f.Memory.GetMatch(ctx, m.UserID, m.JobID)
	if err != nil {
		return err
	}
	if err := f.Memory.UpdateMatch(ctx, m); err != nil {
		return err
	}
	if err := f.flush(); err != nil {
		f.restoreMatch(m.UserID, m.JobID, prev)
		return err
	}
	return nil
}

func (f *File) flush() error {
	if f.matchesPath == "" {
		return nil
	}
	if err := matchesToFile(f.matchesPath, f.Matches()); err != nil {
		return fmt.Errorf("writing matches file: %w", err)
	}
	return nil
}

// LoadProfileDocuments reads a file holding one profile document or an array
// of them. Every document is validated before it is decoded.
func LoadProfileDocuments(path string) ([]*domain.UserData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	var raw []json.RawMessage
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("parsing profile file: %w", err)
		}
	} else {
		raw = []json.RawMessage{data}
	}

	users := make([]*domain.UserData, 0, len(raw))
	for i, doc := range raw {
		if err := ValidateProfileDocument(doc); err != nil {
			return nil, fmt.Errorf("profile document %d: %w", i, err)
		}

		var pd profileDocument
		if err := json.Unmarshal(doc, &pd); err != nil {
			return nil, fmt.Errorf("profile document %d: %w", i, err)
		}
		users = append(users, pd.toUserData())
	}
	return users, nil
}

func (d *profileDocument) toUserData() *domain.UserData {
	data := &domain.UserData{
		Profile: &domain.Profile{
			ID:                  d.ID,
			FullName:            d.PersonalInfo.FullName,
			Location:            d.PersonalInfo.Location,
			CareerLevel:         d.CareerLevel,
			SalaryMin:           d.Preferences.SalaryMin,
			SalaryMax:           d.Preferences.SalaryMax,
			PreferredIndustries: d.Preferences.PreferredIndustries,
			JobTypes:            d.Preferences.JobTypes,
			LocationPreferences: d.Preferences.LocationPreferences,
		},
	}
	for _, s := range d.Skills {
		data.Skills = append(data.Skills, domain.Skill{Name: s.Name, Type: s.Type, Proficiency: s.Proficiency})
	}
	for _, e := range d.WorkExperience {
		data.Experience = append(data.Experience, domain.WorkExperience{
			JobTitle:  e.JobTitle,
			Company:   e.Company,
			StartDate: e.StartDate,
			EndDate:   e.EndDate,
		})
	}
	return data
}

// LoadJobsFile reads a JSON array of job postings.
func LoadJobsFile(path string) ([]domain.JobPosting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading jobs file: %w", err)
	}

	var jobs []domain.JobPosting
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("parsing jobs file: %w", err)
	}
	return jobs, nil
}

func matchesFromFile(path string) ([]*domain.MatchResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading matches file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var mf matchesFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parsing matches file: %w", err)
	}
	return mf.Matches, nil
}

func matchesToFile(path string, matches []*domain.MatchResult) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(matchesFile{Matches: matches})
}
