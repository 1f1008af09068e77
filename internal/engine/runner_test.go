package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	sharedredis "pipeline-backend/internal/shared/redis"
	"pipeline-backend/internal/submissions"
)

type fakeLock struct {
	released bool
}

func (l *fakeLock) Release(ctx context.Context) error {
	l.released = true
	return nil
}

type fakeLocker struct {
	err      error
	acquired int
	lock     *fakeLock
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	l.acquired++
	if l.err != nil {
		return nil, l.err
	}
	l.lock = &fakeLock{}
	return l.lock, nil
}

func TestRunCycleHeldLockSkipsEvaluation(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f.seedSubmission(t, submissions.Submission{
		ID: "sub-1", Stage: submissions.StageSubmitted,
		SubmittedAt: now, LastActivityAt: now,
	})

	locker := &fakeLocker{err: sharedredis.ErrLockNotAcquired}
	runner := &Runner{Engine: f.svc, Locker: locker, LockTTL: time.Minute}

	summary, ran, err := runner.RunCycle(context.Background(), now)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if ran {
		t.Fatal("cycle ran while lock was held elsewhere")
	}
	if summary.Processed != 0 {
		t.Fatalf("processed = %d, want 0", summary.Processed)
	}
	if _, err := f.health.GetBySubmission(context.Background(), "sub-1"); err == nil {
		t.Fatal("skipped cycle must not touch health snapshots")
	}
}

func TestRunCycleAcquiresRunsAndReleases(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f.seedSubmission(t, submissions.Submission{
		ID: "sub-1", Stage: submissions.StageSubmitted,
		SubmittedAt: now, LastActivityAt: now,
	})

	locker := &fakeLocker{}
	runner := &Runner{Engine: f.svc, Locker: locker, LockTTL: time.Minute}

	summary, ran, err := runner.RunCycle(context.Background(), now)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if !ran {
		t.Fatal("cycle did not run")
	}
	if summary.Processed != 1 {
		t.Fatalf("processed = %d, want 1", summary.Processed)
	}
	if locker.acquired != 1 {
		t.Fatalf("acquired = %d, want 1", locker.acquired)
	}
	if locker.lock == nil || !locker.lock.released {
		t.Fatal("lock was not released after the cycle")
	}
}

func TestRunCyclePropagatesLockerFailure(t *testing.T) {
	f := newFixture(t)
	wantErr := errors.New("redis unreachable")
	runner := &Runner{Engine: f.svc, Locker: &fakeLocker{err: wantErr}, LockTTL: time.Minute}

	_, ran, err := runner.RunCycle(context.Background(), time.Now())
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if ran {
		t.Fatal("cycle must not run when the locker fails")
	}
}

func TestRunCycleWithoutLockerRunsDirectly(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	runner := &Runner{Engine: f.svc}
	_, ran, err := runner.RunCycle(context.Background(), now)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if !ran {
		t.Fatal("lockless runner must always run")
	}
}
