// Package filtering drops job postings that should never be scored for a user.
package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/careerlink/job-matcher/internal/domain"
)

// Filter represents a single filtering step applied to job postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, jobs *domain.JobPostings) (*domain.JobPostings, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	ExcludeCompanies []string
	ExcludeFile      string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// ExcludeCompaniesFilter is the name of the company exclusion step.
const ExcludeCompaniesFilter = "exclude_companies"

// Default returns the filters every sweep runs, in order.
func Default() []Filter {
	return []Filter{
		NewInactive(),
		NewExcludedCompanies(),
		NewExcludeFile(),
	}
}

// ForConfig returns the default filters with the steps cfg leaves empty
// disabled.
func ForConfig(cfg *Config) []Filter {
	steps := Default()
	if cfg == nil || !hasCompanies(cfg.ExcludeCompanies) {
		DisableByName(steps, ExcludeCompaniesFilter, "no companies configured")
	}
	return steps
}

func hasCompanies(companies []string) bool {
	for _, c := range companies {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates and then executes the supplied filters sequentially. The
// total number of dropped postings is returned alongside the remaining list.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, jobs *domain.JobPostings) (*domain.JobPostings, int, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	dropped := 0
	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, jobs)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		dropped += info.Dropped
		jobs = next
	}

	return jobs, dropped, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
