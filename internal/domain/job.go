package domain

import "strings"

const (
	JobIDField      = "ID"
	JobCompanyField = "Company"
)

type JobPosting struct {
	ID              string `json:"id" mapstructure:"id"`
	Title           string `json:"title" mapstructure:"title"`
	Company         string `json:"company" mapstructure:"company"`
	Location        string `json:"location,omitempty" mapstructure:"location"`
	JobType         string `json:"job_type,omitempty" mapstructure:"job_type"`
	SalaryRange     string `json:"salary_range,omitempty" mapstructure:"salary_range"`
	Description     string `json:"description,omitempty" mapstructure:"description"`
	Requirements    string `json:"requirements,omitempty" mapstructure:"requirements"`
	RemoteOption    bool   `json:"remote_option" mapstructure:"remote_option"`
	VisaSponsorship bool   `json:"visa_sponsorship" mapstructure:"visa_sponsorship"`
	IsActive        bool   `json:"is_active" mapstructure:"is_active"`
	SourceURL       string `json:"source_url,omitempty" mapstructure:"source_url"`
}

// Text is the title, description and requirements joined together, the
// haystack used by skill and requirement matching.
func (j *JobPosting) Text() string {
	return strings.Join([]string{j.Title, j.Description, j.Requirements}, " ")
}

func (j *JobPosting) GetStringField(name string) string {
	switch name {
	case JobIDField:
		return j.ID
	case JobCompanyField:
		return j.Company
	default:
		return ""
	}
}

type JobPostings struct {
	Items []*JobPosting
}

func NewJobPostings(jobs []JobPosting) *JobPostings {
	items := make([]*JobPosting, 0, len(jobs))
	for i := range jobs {
		items = append(items, &jobs[i])
	}
	return &JobPostings{Items: items}
}

func (j *JobPostings) Len() int {
	return len(j.Items)
}

func (j *JobPostings) FindByID(id string) *JobPosting {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

// Exclude removes every job whose field equals one of targets (case-insensitive)
// and returns the removed job ids. Order is not preserved.
func (j *JobPostings) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	var excluded []string
	for idx := 0; idx < len(j.Items); {
		job := j.Items[idx]
		if _, ok := set[strings.ToLower(strings.TrimSpace(job.GetStringField(name)))]; ok {
			j.RemoveByIndex(idx)
			excluded = append(excluded, job.ID)
			continue
		}
		idx++
	}
	return excluded
}

// ExcludeInactive drops postings that are no longer active.
func (j *JobPostings) ExcludeInactive() []string {
	var excluded []string
	for idx := 0; idx < len(j.Items); {
		job := j.Items[idx]
		if !job.IsActive {
			j.RemoveByIndex(idx)
			excluded = append(excluded, job.ID)
			continue
		}
		idx++
	}
	return excluded
}

// RemoveByIndex remove job from list by index. Do not preserve order.
func (j *JobPostings) RemoveByIndex(idx int) {
	j.Items[idx] = j.Items[len(j.Items)-1]
	j.Items = j.Items[:len(j.Items)-1]
}
