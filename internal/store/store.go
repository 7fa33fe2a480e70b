// Package store provides the storage backends the matching engine reads user
// data and jobs from and writes match records to.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/careerlink/job-matcher/internal/domain"
)

const (
	DriverPostgres = "postgres"
	DriverSupabase = "supabase"
	DriverFile     = "file"
	DriverMemory   = "memory"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by InsertMatch when a match for the same
	// (user, job) pair already exists.
	ErrDuplicate = errors.New("duplicate match")
)

type UnsupportedDriverError struct {
	Driver string
}

func (e *UnsupportedDriverError) Error() string {
	return fmt.Sprintf("unsupported store driver %q", e.Driver)
}

// Reader loads the inputs of a scoring sweep.
type Reader interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	ListSkills(ctx context.Context, userID string) ([]domain.Skill, error)
	// ListWorkExperience returns entries ordered by start date, newest first.
	ListWorkExperience(ctx context.Context, userID string) ([]domain.WorkExperience, error)
	ListActiveJobs(ctx context.Context) ([]domain.JobPosting, error)
}

// MatchStore persists match records keyed by (user, job).
type MatchStore interface {
	GetMatch(ctx context.Context, userID, jobID string) (*domain.MatchResult, error)
	InsertMatch(ctx context.Context, m *domain.MatchResult) error
	UpdateMatch(ctx context.Context, m *domain.MatchResult) error
}

type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

type Store interface {
	Reader
	MatchStore
	UserLister
	Close() error
}

// Options carries the driver specific settings resolved from configuration.
type Options struct {
	DatabaseURL string
	Supabase    SupabaseOptions
	File        FileOptions
}

type SupabaseOptions struct {
	URL string
	Key string
}

type FileOptions struct {
	Profile string
	Jobs    string
	Matches string
}

// Open builds the store for driver.
func Open(ctx context.Context, driver string, opts Options) (Store, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgres(ctx, opts.DatabaseURL)
	case DriverSupabase:
		return NewSupabase(opts.Supabase.URL, opts.Supabase.Key)
	case DriverFile:
		return NewFile(opts.File)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, &UnsupportedDriverError{Driver: driver}
	}
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*File)(nil)
	_ Store = (*Postgres)(nil)
	_ Store = (*Supabase)(nil)
	_ Store = (*DryRun)(nil)
)
