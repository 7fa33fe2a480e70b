// Package matching runs scoring sweeps: it loads a user's data and the active
// job postings, filters and scores every posting, and reconciles the results
// with the stored matches.
package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/careerlink/job-matcher/internal/domain"
	"github.com/careerlink/job-matcher/internal/events"
	"github.com/careerlink/job-matcher/internal/filtering"
	"github.com/careerlink/job-matcher/internal/logger"
	"github.com/careerlink/job-matcher/internal/scoring"
	"github.com/careerlink/job-matcher/internal/store"
	"github.com/careerlink/job-matcher/internal/utils"
)

const logTitleLimit = 80

// Source is the part of a store a sweep needs.
type Source interface {
	store.Reader
	store.MatchStore
}

// Summary reports what a sweep did for one user.
type Summary struct {
	MatchesCreated int `json:"matchesCreated"`
	MatchesUpdated int `json:"matchesUpdated"`
	Unchanged      int `json:"unchanged"`
	Discarded      int `json:"discarded"`
	Stale          int `json:"stale"`
	Failed         int `json:"failed"`
	Filtered       int `json:"filtered"`
}

func (s *Summary) count(a Action) {
	switch a {
	case ActionInsert:
		s.MatchesCreated++
	case ActionUpdate:
		s.MatchesUpdated++
	case ActionNone:
		s.Unchanged++
	case ActionDiscard:
		s.Discarded++
	case ActionKeepStale:
		s.Stale++
	}
}

// JobResult pairs a posting with its score.
type JobResult struct {
	Job    *domain.JobPosting `json:"job"`
	Result scoring.Result     `json:"result"`
}

// Evaluation is a scored but not yet persisted sweep.
type Evaluation struct {
	UserID   string
	Jobs     *domain.JobPostings
	Results  []JobResult
	Filtered int
}

// Persistable returns the results at or above the persistence threshold.
func (ev *Evaluation) Persistable() []JobResult {
	out := make([]JobResult, 0, len(ev.Results))
	for _, r := range ev.Results {
		if r.Result.Persistable() {
			out = append(out, r)
		}
	}
	return out
}

// DumpToTmpFile writes the scored results, breakdowns included, to a new
// temporary JSON file and returns its name.
func (ev *Evaluation) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		UserID  string      `json:"userId"`
		Results []JobResult `json:"results"`
	}{UserID: ev.UserID, Results: ev.Results}); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByLabel groups the scored postings by score band.
func (ev *Evaluation) ReportByLabel() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, r := range ev.Results {
		report[r.Result.Label] = append(report[r.Result.Label], map[string]string{
			"id":             r.Job.ID,
			"title":          r.Job.Title,
			"company":        r.Job.Company,
			"url":            r.Job.SourceURL,
			"score":          fmt.Sprintf("%d", r.Result.Score),
			"status":         r.Result.Status,
			"matched skills": strings.Join(r.Result.MatchedSkills, ", "),
		})
	}
	return report
}

type Engine struct {
	source     Source
	scorer     *scoring.Scorer
	reconciler *Reconciler
	filters    []filtering.Filter
	filterCfg  *filtering.Config
	logger     *zap.Logger
}

type Option func(*engineOptions)

type engineOptions struct {
	scorer    *scoring.Scorer
	publisher events.Publisher
	filters   []filtering.Filter
	filterCfg *filtering.Config
	logger    *zap.Logger
	now       func() time.Time
}

func WithScorer(s *scoring.Scorer) Option {
	return func(o *engineOptions) { o.scorer = s }
}

func WithPublisher(p events.Publisher) Option {
	return func(o *engineOptions) { o.publisher = p }
}

// WithFilters replaces the default filter chain.
func WithFilters(cfg *filtering.Config, steps ...filtering.Filter) Option {
	return func(o *engineOptions) {
		o.filterCfg = cfg
		if len(steps) > 0 {
			o.filters = steps
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *engineOptions) { o.logger = l }
}

// WithClock sets the time stamped on stored matches.
func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) { o.now = now }
}

func NewEngine(source Source, opts ...Option) *Engine {
	o := &engineOptions{
		filterCfg: &filtering.Config{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.scorer == nil {
		o.scorer = scoring.NewScorer()
	}
	if o.filters == nil {
		o.filters = filtering.ForConfig(o.filterCfg)
	}

	r := NewReconciler(source, o.publisher, o.logger)
	if o.now != nil {
		r.now = o.now
	}

	return &Engine{
		source:     source,
		scorer:     o.scorer,
		reconciler: r,
		filters:    o.filters,
		filterCfg:  o.filterCfg,
		logger:     o.logger,
	}
}

// Load reads the user's profile, skills and experience and the active jobs
// concurrently. Any failure aborts the load.
func (e *Engine) Load(ctx context.Context, userID string) (*domain.UserData, []domain.JobPosting, error) {
	var (
		data = &domain.UserData{}
		jobs []domain.JobPosting
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := e.source.GetProfile(gctx, userID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		data.Profile = p
		return nil
	})
	g.Go(func() error {
		skills, err := e.source.ListSkills(gctx, userID)
		if err != nil {
			return fmt.Errorf("load skills: %w", err)
		}
		data.Skills = skills
		return nil
	})
	g.Go(func() error {
		exp, err := e.source.ListWorkExperience(gctx, userID)
		if err != nil {
			return fmt.Errorf("load work experience: %w", err)
		}
		data.Experience = exp
		return nil
	})
	g.Go(func() error {
		active, err := e.source.ListActiveJobs(gctx)
		if err != nil {
			return fmt.Errorf("load active jobs: %w", err)
		}
		jobs = active
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return data, jobs, nil
}

// Evaluate loads, filters and scores without touching stored matches.
func (e *Engine) Evaluate(ctx context.Context, userID string) (*Evaluation, error) {
	data, active, err := e.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	log := logger.WithMatchFields(e.logger, userID, "")
	log.Debug("filter chain", zap.Any("filters", filtering.Describe(e.filters)))
	jobs, filtered, err := filtering.Run(ctx, e.filterCfg, filtering.Deps{Logger: log}, e.filters, domain.NewJobPostings(active))
	if err != nil {
		return nil, fmt.Errorf("filter jobs: %w", err)
	}

	ev := &Evaluation{UserID: userID, Jobs: jobs, Filtered: filtered}
	for _, job := range jobs.Items {
		ev.Results = append(ev.Results, JobResult{Job: job, Result: e.scorer.Score(data, job)})
	}
	sort.SliceStable(ev.Results, func(i, j int) bool {
		return ev.Results[i].Result.Score > ev.Results[j].Result.Score
	})

	log.Info("jobs scored",
		zap.Int("active", len(active)),
		zap.Int("filtered", filtered),
		zap.Int("scored", len(ev.Results)),
		zap.Int("persistable", len(ev.Persistable())),
	)
	return ev, nil
}

// Persist reconciles every result of ev one job at a time. A failure on one
// job is logged and counted; a cancelled context stops the sweep between jobs.
func (e *Engine) Persist(ctx context.Context, ev *Evaluation) (Summary, error) {
	summary := Summary{Filtered: ev.Filtered}
	for _, r := range ev.Results {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		action, err := e.reconciler.Apply(ctx, ev.UserID, r.Job.ID, r.Result)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			summary.Failed++
			logger.WithMatchFields(e.logger, ev.UserID, r.Job.ID).Warn("persisting match failed",
				zap.String("title", utils.TruncateForLog(r.Job.Title, logTitleLimit)),
				zap.Int("score", r.Result.Score),
				zap.Error(err),
			)
			continue
		}

		summary.count(action)
		logger.WithMatchFields(e.logger, ev.UserID, r.Job.ID).Debug("match reconciled",
			zap.Stringer("action", action),
			zap.Int("score", r.Result.Score),
			zap.String("label", r.Result.Label),
		)
	}

	e.logger.Info("matching complete",
		zap.String(logger.FieldUserID, ev.UserID),
		zap.Int("created", summary.MatchesCreated),
		zap.Int("updated", summary.MatchesUpdated),
		zap.Int("unchanged", summary.Unchanged),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// Run evaluates and persists the sweep for one user.
func (e *Engine) Run(ctx context.Context, userID string) (Summary, error) {
	ev, err := e.Evaluate(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return e.Persist(ctx, ev)
}

// Explain scores a single pair. Filters are not applied, so dismissed jobs
// can still be inspected; the job must be active.
func (e *Engine) Explain(ctx context.Context, userID, jobID string) (*JobResult, error) {
	data, active, err := e.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	job := domain.NewJobPostings(active).FindByID(jobID)
	if job == nil {
		return nil, fmt.Errorf("active job %q: %w", jobID, store.ErrNotFound)
	}
	return &JobResult{Job: job, Result: e.scorer.Score(data, job)}, nil
}
