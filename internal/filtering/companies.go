package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/careerlink/job-matcher/internal/domain"
)

type companiesFilter struct {
	companies []string
	enabled   bool
	reason    string
}

// NewExcludedCompanies creates a filter that removes postings of the companies listed in the config.
func NewExcludedCompanies() Filter {
	return &companiesFilter{enabled: true}
}

func (f *companiesFilter) Name() string { return ExcludeCompaniesFilter }

func (f *companiesFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *companiesFilter) IsEnabled() bool { return f.enabled }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg != nil {
		for _, c := range cfg.ExcludeCompanies {
			if c = strings.TrimSpace(c); c != "" {
				f.companies = append(f.companies, c)
			}
		}
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, jobs *domain.JobPostings) (*domain.JobPostings, Step, error) {
	initial := jobs.Len()
	if len(f.companies) == 0 {
		return jobs, Step{Initial: initial, Dropped: 0, Left: jobs.Len()}, nil
	}

	excluded := jobs.Exclude(domain.JobCompanyField, f.companies)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding jobs by company",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", jobs.Len()),
		)
	}

	return jobs, Step{Initial: initial, Dropped: len(excluded), Left: jobs.Len()}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.enabled, Reason: f.reason, Details: details}
}

type inactiveFilter struct{}

// NewInactive creates a filter that removes postings no longer marked active.
// Stores already return active postings only; this guards file inputs.
func NewInactive() Filter {
	return &inactiveFilter{}
}

func (f *inactiveFilter) Name() string { return "inactive" }

func (f *inactiveFilter) Disable(string) {}

func (f *inactiveFilter) IsEnabled() bool { return true }

func (f *inactiveFilter) Validate(*Config) error { return nil }

func (f *inactiveFilter) Apply(_ context.Context, deps Deps, jobs *domain.JobPostings) (*domain.JobPostings, Step, error) {
	initial := jobs.Len()
	excluded := jobs.ExcludeInactive()
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding inactive jobs",
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", jobs.Len()),
		)
	}

	return jobs, Step{Initial: initial, Dropped: len(excluded), Left: jobs.Len()}, nil
}
