package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlink/job-matcher/internal/domain"
)

func TestDryRun_KeepsWritesOutOfBackingStore(t *testing.T) {
	ctx := context.Background()
	backing := NewMemory()
	require.NoError(t, backing.InsertMatch(ctx, &domain.MatchResult{UserID: "u1", JobID: "j1", Score: 40}))

	d := NewDryRun(backing)

	assert.ErrorIs(t, d.InsertMatch(ctx, &domain.MatchResult{UserID: "u1", JobID: "j1", Score: 50}), ErrDuplicate)
	require.NoError(t, d.InsertMatch(ctx, &domain.MatchResult{UserID: "u1", JobID: "j2", Score: 60}))
	require.NoError(t, d.UpdateMatch(ctx, &domain.MatchResult{UserID: "u1", JobID: "j1", Score: 70}))
	assert.ErrorIs(t, d.UpdateMatch(ctx, &domain.MatchResult{UserID: "u1", JobID: "j9", Score: 70}), ErrNotFound)

	got, err := d.GetMatch(ctx, "u1", "j1")
	require.NoError(t, err)
	assert.Equal(t, 70, got.Score)

	stored, err := backing.GetMatch(ctx, "u1", "j1")
	require.NoError(t, err)
	assert.Equal(t, 40, stored.Score)

	_, err = backing.GetMatch(ctx, "u1", "j2")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Len(t, d.Pending(), 2)
}
