// Package scheduler wires up the cron job that periodically re-scores every
// user against the active job postings.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/careerlink/job-matcher/internal/logger"
	"github.com/careerlink/job-matcher/internal/matching"
	"github.com/careerlink/job-matcher/internal/store"
	"github.com/careerlink/job-matcher/internal/utils"
)

const DefaultSpec = "@every 6h"

// Runner scores one user and persists the outcome.
type Runner interface {
	Run(ctx context.Context, userID string) (matching.Summary, error)
}

// Scheduler wraps robfig/cron and manages the sweep loop.
type Scheduler struct {
	cron      *cron.Cron
	users     store.UserLister
	runner    Runner
	spec      string
	userDelay time.Duration
	logger    *zap.Logger

	startup sync.WaitGroup
}

// New creates a Scheduler firing on spec. Overlapping sweeps are skipped.
func New(users store.UserLister, runner Runner, spec string, userDelay time.Duration, log *zap.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	if log == nil {
		log = zap.NewNop()
	}
	cl := logger.Cron(log)
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		users:     users,
		runner:    runner,
		spec:      spec,
		userDelay: userDelay,
		logger:    log,
	}
}

// Start registers the sweep and starts the scheduler. One sweep also runs
// immediately so matches are fresh without waiting for the first tick. It
// goes through the same job chain as the ticks, so it never overlaps them.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddJob(s.spec, cron.FuncJob(func() {
		s.Sweep(ctx)
	}))
	if err != nil {
		return fmt.Errorf("cron.AddJob: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	job := s.cron.Entry(id).WrappedJob
	s.startup.Add(1)
	go func() {
		defer s.startup.Done()
		job.Run()
	}()

	return nil
}

// Stop halts the scheduler and waits for running sweeps, the startup one
// included, to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.startup.Wait()
	s.logger.Info("scheduler stopped")
}

// Sweep runs the matcher for every user in turn and returns the totals.
func (s *Scheduler) Sweep(ctx context.Context) matching.Summary {
	var total matching.Summary

	ids, err := s.users.ListUserIDs(ctx)
	if err != nil {
		s.logger.Error("listing users failed", zap.Error(err))
		return total
	}

	if len(ids) == 0 {
		s.logger.Info("no users to match")
		return total
	}

	s.logger.Info("sweep started", zap.Int("users", len(ids)))
	for i, id := range ids {
		if i > 0 {
			if err := utils.WaitFor(ctx, s.userDelay); err != nil {
				s.logger.Info("sweep interrupted", zap.Error(err))
				return total
			}
		}

		summary, err := s.runner.Run(ctx, id)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				s.logger.Info("sweep interrupted", zap.String(logger.FieldUserID, id))
				return total
			}
			s.logger.Warn("matching failed for user", zap.String(logger.FieldUserID, id), zap.Error(err))
			continue
		}
		add(&total, summary)
	}

	s.logger.Info("sweep complete",
		zap.Int("created", total.MatchesCreated),
		zap.Int("updated", total.MatchesUpdated),
		zap.Int("failed", total.Failed),
	)
	return total
}

func add(total *matching.Summary, s matching.Summary) {
	total.MatchesCreated += s.MatchesCreated
	total.MatchesUpdated += s.MatchesUpdated
	total.Unchanged += s.Unchanged
	total.Discarded += s.Discarded
	total.Stale += s.Stale
	total.Failed += s.Failed
	total.Filtered += s.Filtered
}
