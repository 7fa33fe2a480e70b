package store

import (
	"context"
	"errors"

	"github.com/careerlink/job-matcher/internal/domain"
)

// DryRun reads through to a backing store but keeps every match write in
// memory, so a sweep reports what it would change without changing it.
type DryRun struct {
	Store
	overlay *Memory
}

func NewDryRun(backing Store) *DryRun {
	return &DryRun{Store: backing, overlay: NewMemory()}
}

func (d *DryRun) GetMatch(ctx context.Context, userID, jobID string) (*domain.MatchResult, error) {
	m, err := d.overlay.GetMatch(ctx, userID, jobID)
	if err == nil {
		return m, nil
	}
	return d.Store.GetMatch(ctx, userID, jobID)
}

func (d *DryRun) InsertMatch(ctx context.Context, m *domain.MatchResult) error {
	if _, err := d.Store.GetMatch(ctx, m.UserID, m.JobID); err == nil {
		return ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return d.overlay.InsertMatch(ctx, m)
}

func (d *DryRun) UpdateMatch(ctx context.Context, m *domain.MatchResult) error {
	err := d.overlay.UpdateMatch(ctx, m)
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, err := d.Store.GetMatch(ctx, m.UserID, m.JobID); err != nil {
		return err
	}
	return d.overlay.InsertMatch(ctx, m)
}

// Pending returns the writes a real run would have made.
func (d *DryRun) Pending() []*domain.MatchResult {
	return d.overlay.Matches()
}
