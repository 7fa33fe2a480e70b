package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/careerlink/job-matcher/internal/domain"
	"github.com/careerlink/job-matcher/internal/events"
	"github.com/careerlink/job-matcher/internal/logger"
	"github.com/careerlink/job-matcher/internal/scoring"
	"github.com/careerlink/job-matcher/internal/store"
)

// Action is what the reconciler does with a freshly computed score.
type Action int

const (
	ActionNone Action = iota
	ActionInsert
	ActionUpdate
	ActionDiscard
	ActionKeepStale
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionDiscard:
		return "discard"
	case ActionKeepStale:
		return "keep_stale"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Decide compares the stored match (nil when there is none) with a new score.
// A stored match whose new score fell below the persistence threshold is kept
// as it is.
func Decide(existing *domain.MatchResult, candidate scoring.Result) Action {
	if existing == nil {
		if candidate.Persistable() {
			return ActionInsert
		}
		return ActionDiscard
	}
	if existing.Score == candidate.Score {
		return ActionNone
	}
	if candidate.Persistable() {
		return ActionUpdate
	}
	return ActionKeepStale
}

// Reconciler applies Decide against a MatchStore and announces the writes.
type Reconciler struct {
	matches   store.MatchStore
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewReconciler(matches store.MatchStore, publisher events.Publisher, log *zap.Logger) *Reconciler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{matches: matches, publisher: publisher, logger: log, now: time.Now}
}

// Apply reconciles one (user, job) score with the store and returns the action
// that was carried out. An insert that loses a race against a concurrent
// writer is retried once as a read followed by an update.
func (r *Reconciler) Apply(ctx context.Context, userID, jobID string, candidate scoring.Result) (Action, error) {
	log := logger.WithMatchFields(r.logger, userID, jobID)

	existing, err := r.lookup(ctx, userID, jobID)
	if err != nil {
		return ActionNone, err
	}

	action := Decide(existing, candidate)
	if action == ActionInsert {
		err := r.insert(ctx, userID, jobID, candidate)
		if !errors.Is(err, store.ErrDuplicate) {
			return action, err
		}

		log.Debug("match inserted concurrently, re-reading")
		if existing, err = r.lookup(ctx, userID, jobID); err != nil {
			return ActionNone, err
		}
		if existing == nil {
			return ActionNone, fmt.Errorf("match reported as duplicate but not found: %w", store.ErrNotFound)
		}
		action = Decide(existing, candidate)
	}

	switch action {
	case ActionUpdate:
		return action, r.update(ctx, existing, candidate)
	case ActionKeepStale:
		log.Info("stored match is stale but new score is below threshold",
			zap.Int("stored_score", existing.Score),
			zap.Int("score", candidate.Score),
		)
	}
	return action, nil
}

func (r *Reconciler) lookup(ctx context.Context, userID, jobID string) (*domain.MatchResult, error) {
	existing, err := r.matches.GetMatch(ctx, userID, jobID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	return existing, nil
}

func (r *Reconciler) insert(ctx context.Context, userID, jobID string, candidate scoring.Result) error {
	m := candidate.ToMatch(userID, jobID, r.now())
	if err := r.matches.InsertMatch(ctx, m); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return err
		}
		return fmt.Errorf("insert match: %w", err)
	}

	r.publish(ctx, events.Event{
		Type:   events.TypeMatchCreated,
		UserID: userID,
		JobID:  jobID,
		Score:  m.Score,
		Status: m.Status,
		At:     m.MatchedAt,
	})
	return nil
}

func (r *Reconciler) update(ctx context.Context, existing *domain.MatchResult, candidate scoring.Result) error {
	m := candidate.ToMatch(existing.UserID, existing.JobID, r.now())
	m.ID = existing.ID
	m.CreatedAt = existing.CreatedAt
	if err := r.matches.UpdateMatch(ctx, m); err != nil {
		return fmt.Errorf("update match: %w", err)
	}

	previous := existing.Score
	r.publish(ctx, events.Event{
		Type:          events.TypeMatchUpdated,
		UserID:        m.UserID,
		JobID:         m.JobID,
		Score:         m.Score,
		PreviousScore: &previous,
		Status:        m.Status,
		At:            m.MatchedAt,
	})
	return nil
}

// publish never fails the reconcile; the match is already stored.
func (r *Reconciler) publish(ctx context.Context, e events.Event) {
	if err := r.publisher.Publish(ctx, e); err != nil {
		logger.WithMatchFields(r.logger, e.UserID, e.JobID).Warn("publishing match event failed",
			zap.String("type", e.Type),
			zap.Error(err),
		)
	}
}
