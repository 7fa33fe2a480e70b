package matching

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/careerlink/job-matcher/internal/domain"
	"github.com/careerlink/job-matcher/internal/events"
	"github.com/careerlink/job-matcher/internal/filtering"
	"github.com/careerlink/job-matcher/internal/scoring"
	"github.com/careerlink/job-matcher/internal/store"
)

var testNow = time.Date(2024, time.June, 15, 8, 0, 0, 0, time.UTC)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func testUser() *domain.UserData {
	return &domain.UserData{
		Profile: &domain.Profile{
			ID:                  "u1",
			Location:            "Accra, Ghana",
			SalaryMin:           floatPtr(6000),
			LocationPreferences: []string{"Kumasi"},
			JobTypes:            []string{"full-time"},
		},
		Skills: []domain.Skill{{Name: "Python"}, {Name: "SQL"}},
	}
}

// seed stores a user and three jobs: j1 scores 80, j2 scores 24 and j3 is
// inactive.
func seed(t *testing.T) *store.Memory {
	t.Helper()

	m := store.NewMemory()
	m.PutUser(testUser())
	m.AddJobs(
		domain.JobPosting{ID: "j1", Title: "Data Analyst", Description: "Python and SQL", VisaSponsorship: true, IsActive: true},
		domain.JobPosting{ID: "j2", Title: "Chef", Description: "Cook meals", Location: "Lagos", JobType: "Part-time", SalaryRange: "GHS 1,000", IsActive: true},
		domain.JobPosting{ID: "j3", Title: "Python SQL Analyst", IsActive: false},
	)
	return m
}

func newTestEngine(source Source, opts ...Option) *Engine {
	base := []Option{
		WithScorer(scoring.NewScorer(scoring.WithClock(func() time.Time { return testNow }))),
		WithClock(func() time.Time { return testNow }),
	}
	return NewEngine(source, append(base, opts...)...)
}

func TestDecide(t *testing.T) {
	stored := &domain.MatchResult{Score: 55}

	tests := []struct {
		name     string
		existing *domain.MatchResult
		score    int
		want     Action
	}{
		{name: "new above threshold", score: 30, want: ActionInsert},
		{name: "new below threshold", score: 29, want: ActionDiscard},
		{name: "same score", existing: stored, score: 55, want: ActionNone},
		{name: "changed above threshold", existing: stored, score: 61, want: ActionUpdate},
		{name: "changed below threshold", existing: stored, score: 12, want: ActionKeepStale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.existing, scoring.Result{Score: tt.score}))
		})
	}
}

func TestEngineRun_CreatesThenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := seed(t)
	pub := &recordingPublisher{}
	engine := newTestEngine(mem, WithPublisher(pub))

	first, err := engine.Run(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, Summary{MatchesCreated: 1, Discarded: 1}, first)

	stored, err := mem.GetMatch(ctx, "u1", "j1")
	require.NoError(t, err)
	assert.Equal(t, 80, stored.Score)
	assert.Equal(t, domain.StatusNew, stored.Status)
	assert.Equal(t, domain.LabelExcellent, stored.Label)
	assert.Equal(t, testNow, stored.MatchedAt)

	_, err = mem.GetMatch(ctx, "u1", "j2")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeMatchCreated, pub.events[0].Type)
	assert.Nil(t, pub.events[0].PreviousScore)

	second, err := engine.Run(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, Summary{Unchanged: 1, Discarded: 1}, second)
	assert.Len(t, mem.Matches(), 1)
	assert.Len(t, pub.events, 1)
}

func TestEngineRun_UpdatesChangedScores(t *testing.T) {
	ctx := context.Background()
	mem := seed(t)
	pub := &recordingPublisher{}
	engine := newTestEngine(mem, WithPublisher(pub))

	_, err := engine.Run(ctx, "u1")
	require.NoError(t, err)

	user := testUser()
	user.Experience = []domain.WorkExperience{{StartDate: "2015-01", EndDate: strPtr("2020-01")}}
	mem.PutUser(user)

	summary, err := engine.Run(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, Summary{MatchesCreated: 1, MatchesUpdated: 1}, summary)

	j1, err := mem.GetMatch(ctx, "u1", "j1")
	require.NoError(t, err)
	assert.Equal(t, 95, j1.Score)
	assert.Equal(t, 20, j1.Breakdown.Experience)

	j2, err := mem.GetMatch(ctx, "u1", "j2")
	require.NoError(t, err)
	assert.Equal(t, 39, j2.Score)
	assert.Equal(t, domain.StatusLowMatch, j2.Status)

	var updated *events.Event
	for i := range pub.events {
		if pub.events[i].Type == events.TypeMatchUpdated {
			updated = &pub.events[i]
		}
	}
	require.NotNil(t, updated)
	require.NotNil(t, updated.PreviousScore)
	assert.Equal(t, 80, *updated.PreviousScore)
	assert.Equal(t, 95, updated.Score)
}

func TestEngineRun_KeepsStaleMatchBelowThreshold(t *testing.T) {
	ctx := context.Background()
	mem := seed(t)
	require.NoError(t, mem.InsertMatch(ctx, &domain.MatchResult{UserID: "u1", JobID: "j2", Score: 50, Status: domain.StatusNew}))

	summary, err := newTestEngine(mem).Run(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Stale)
	assert.Equal(t, 1, summary.MatchesCreated)

	j2, err := mem.GetMatch(ctx, "u1", "j2")
	require.NoError(t, err)
	assert.Equal(t, 50, j2.Score)
}

func TestEngineRun_AppliesFilters(t *testing.T) {
	mem := seed(t)
	engine := newTestEngine(mem, WithFilters(&filtering.Config{ExcludeCompanies: []string{""}}))

	ev, err := engine.Evaluate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, ev.Filtered)
	require.Len(t, ev.Results, 2)
	assert.Equal(t, "j1", ev.Results[0].Job.ID)

	mem.AddJobs(domain.JobPosting{ID: "j4", Company: "Acme", Title: "Python SQL", IsActive: true})
	engine = newTestEngine(mem, WithFilters(&filtering.Config{ExcludeCompanies: []string{"acme"}}))

	summary, err := engine.Run(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Filtered)
	assert.Equal(t, 1, summary.MatchesCreated)
}

type failingStore struct {
	*store.Memory
	failJob string
}

func (f *failingStore) InsertMatch(ctx context.Context, m *domain.MatchResult) error {
	if m.JobID == f.failJob {
		return errors.New("connection reset")
	}
	return f.Memory.InsertMatch(ctx, m)
}

func TestEngineRun_CountsFailuresAndContinues(t *testing.T) {
	mem := seed(t)
	mem.AddJobs(domain.JobPosting{ID: "j5", Title: "Python engineer", IsActive: true})
	core, observed := observer.New(zapcore.WarnLevel)

	engine := newTestEngine(&failingStore{Memory: mem, failJob: "j1"}, WithLogger(zap.New(core)))

	summary, err := engine.Run(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.MatchesCreated)

	entries := observed.FilterMessage("persisting match failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "j1", entries[0].ContextMap()["job_id"])
	assert.Equal(t, "Data Analyst", entries[0].ContextMap()["title"])
}

func TestEngineEvaluate_LogsFilterChain(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	engine := newTestEngine(seed(t), WithLogger(zap.New(core)))

	_, err := engine.Evaluate(context.Background(), "u1")
	require.NoError(t, err)

	entries := observed.FilterMessage("filter chain").All()
	require.Len(t, entries, 1)
	statuses, ok := entries[0].ContextMap()["filters"].([]filtering.Status)
	require.True(t, ok)
	require.Len(t, statuses, 3)
	assert.Equal(t, filtering.ExcludeCompaniesFilter, statuses[1].Name)
	assert.False(t, statuses[1].Enabled)
	assert.Equal(t, 1, observed.FilterMessage("filter disabled").Len())
}

func TestEngineRun_PublishFailureIsNotFatal(t *testing.T) {
	mem := seed(t)
	core, observed := observer.New(zapcore.WarnLevel)
	pub := &recordingPublisher{err: errors.New("redis down")}

	summary, err := newTestEngine(mem, WithPublisher(pub), WithLogger(zap.New(core))).Run(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.MatchesCreated)
	assert.Equal(t, 1, observed.FilterMessage("publishing match event failed").Len())
}

func TestEngineRun_MissingProfileIsFatal(t *testing.T) {
	_, err := newTestEngine(seed(t)).Run(context.Background(), "nobody")

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "load profile")
}

func TestEnginePersist_StopsOnCancelledContext(t *testing.T) {
	mem := seed(t)
	engine := newTestEngine(mem)

	ev, err := engine.Evaluate(context.Background(), "u1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = engine.Persist(ctx, ev)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mem.Matches())
}

type racyStore struct {
	*store.Memory
	raced bool
}

// GetMatch reports no match once while a concurrent writer stores one.
func (r *racyStore) GetMatch(ctx context.Context, userID, jobID string) (*domain.MatchResult, error) {
	if !r.raced {
		r.raced = true
		_ = r.Memory.InsertMatch(ctx, &domain.MatchResult{UserID: userID, JobID: jobID, Score: 35, Status: domain.StatusLowMatch})
		return nil, store.ErrNotFound
	}
	return r.Memory.GetMatch(ctx, userID, jobID)
}

func TestReconciler_DuplicateInsertFallsBackToUpdate(t *testing.T) {
	ctx := context.Background()
	racy := &racyStore{Memory: store.NewMemory()}
	pub := &recordingPublisher{}
	r := NewReconciler(racy, pub, nil)

	action, err := r.Apply(ctx, "u1", "j1", scoring.Result{Score: 72, Label: domain.LabelExcellent, Status: domain.StatusNew})
	require.NoError(t, err)
	assert.Equal(t, ActionUpdate, action)

	m, err := racy.Memory.GetMatch(ctx, "u1", "j1")
	require.NoError(t, err)
	assert.Equal(t, 72, m.Score)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeMatchUpdated, pub.events[0].Type)
	assert.Equal(t, 35, *pub.events[0].PreviousScore)
}

func TestEngineExplain(t *testing.T) {
	engine := newTestEngine(seed(t))

	res, err := engine.Explain(context.Background(), "u1", "j1")
	require.NoError(t, err)
	assert.Equal(t, 80, res.Result.Score)
	assert.ElementsMatch(t, []string{"python", "sql"}, res.Result.MatchedSkills)

	_, err = engine.Explain(context.Background(), "u1", "j3")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEvaluationReportByLabel(t *testing.T) {
	ev, err := newTestEngine(seed(t)).Evaluate(context.Background(), "u1")
	require.NoError(t, err)

	report := ev.ReportByLabel()
	require.Len(t, report[domain.LabelExcellent], 1)
	assert.Equal(t, "80", report[domain.LabelExcellent][0]["score"])
	require.Len(t, report[domain.LabelLow], 1)
	assert.Len(t, ev.Persistable(), 1)
}

func TestEvaluationDumpToTmpFile(t *testing.T) {
	ev, err := newTestEngine(seed(t)).Evaluate(context.Background(), "u1")
	require.NoError(t, err)

	path, err := ev.DumpToTmpFile()
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var dumped struct {
		UserID  string      `json:"userId"`
		Results []JobResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &dumped))
	assert.Equal(t, "u1", dumped.UserID)
	require.Len(t, dumped.Results, 2)
	assert.Equal(t, "j1", dumped.Results[0].Job.ID)
	assert.Equal(t, 80, dumped.Results[0].Result.Score)
	assert.Equal(t, ev.Results[0].Result.Breakdown, dumped.Results[0].Result.Breakdown)
}
