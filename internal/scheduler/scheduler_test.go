package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/careerlink/job-matcher/internal/matching"
)

type staticUsers struct {
	ids []string
	err error
}

func (s staticUsers) ListUserIDs(context.Context) ([]string, error) { return s.ids, s.err }

type fakeRunner struct {
	calls []string
	fail  map[string]error
}

func (f *fakeRunner) Run(_ context.Context, userID string) (matching.Summary, error) {
	f.calls = append(f.calls, userID)
	if err := f.fail[userID]; err != nil {
		return matching.Summary{}, err
	}
	return matching.Summary{MatchesCreated: 2, MatchesUpdated: 1}, nil
}

func TestSweepRunsEveryUser(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	runner := &fakeRunner{fail: map[string]error{"u2": errors.New("load profile: not found")}}
	s := New(staticUsers{ids: []string{"u1", "u2", "u3"}}, runner, "", 0, zap.New(core))

	total := s.Sweep(context.Background())

	if len(runner.calls) != 3 {
		t.Fatalf("expected 3 runs, got %v", runner.calls)
	}
	if total.MatchesCreated != 4 || total.MatchesUpdated != 2 {
		t.Fatalf("unexpected totals %+v", total)
	}
	if observed.FilterMessage("matching failed for user").Len() != 1 {
		t.Fatalf("expected the failing user to be logged")
	}
}

func TestSweepStopsWhenCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{fail: map[string]error{"u1": context.Canceled}}
	s := New(staticUsers{ids: []string{"u1", "u2"}}, runner, "", 0, nil)

	s.Sweep(ctx)

	if len(runner.calls) != 1 {
		t.Fatalf("expected the sweep to stop after the first user, got %v", runner.calls)
	}
}

func TestSweepListFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	s := New(staticUsers{err: errors.New("db down")}, runner, "", 0, nil)

	if total := s.Sweep(context.Background()); total != (matching.Summary{}) {
		t.Fatalf("expected empty totals, got %+v", total)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("expected no runs, got %v", runner.calls)
	}
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	t.Parallel()

	s := New(staticUsers{}, &fakeRunner{}, "every now and then", 0, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected invalid spec to fail")
	}
}

type blockingRunner struct {
	active    atomic.Int32
	maxActive atomic.Int32
	calls     atomic.Int32
	finished  atomic.Int32
	started   chan struct{}
	release   chan struct{}
}

func (b *blockingRunner) Run(context.Context, string) (matching.Summary, error) {
	b.calls.Add(1)
	n := b.active.Add(1)
	for {
		cur := b.maxActive.Load()
		if n <= cur || b.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}
	select {
	case b.started <- struct{}{}:
	default:
	}

	<-b.release
	b.active.Add(-1)
	b.finished.Add(1)
	return matching.Summary{}, nil
}

func TestStartupSweepDoesNotOverlapTicks(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := New(staticUsers{ids: []string{"u1"}}, runner, "@every 1s", 0, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-runner.started:
	case <-time.After(5 * time.Second):
		t.Fatalf("startup sweep did not run")
	}

	// Let at least one tick fire while the startup sweep is still running.
	time.Sleep(1500 * time.Millisecond)
	close(runner.release)
	s.Stop()

	if got := runner.maxActive.Load(); got != 1 {
		t.Fatalf("expected sweeps to never overlap, saw %d at once", got)
	}
	if runner.finished.Load() != runner.calls.Load() {
		t.Fatalf("stop returned with %d of %d sweeps unfinished",
			runner.calls.Load()-runner.finished.Load(), runner.calls.Load())
	}
}
