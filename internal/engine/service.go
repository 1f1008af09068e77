package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"pipeline-backend/internal/behavior"
	"pipeline-backend/internal/deadlines"
	"pipeline-backend/internal/dealhealth"
	"pipeline-backend/internal/shared/metrics"
	"pipeline-backend/internal/shared/telemetry"
	"pipeline-backend/internal/submissions"
)

// ErrNotFound is returned from single-item evaluation when the submission
// does not exist. Batch runs skip and log instead.
var ErrNotFound = errors.New("submission not found")

// Summary aggregates one batch run.
type Summary struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// Service runs the evaluation cycle: deadline state machine first, then
// behavior refresh for affected actors, then the health aggregation that
// reads the post-transition deadline state.
type Service struct {
	Submissions submissions.Repo
	Deadlines   deadlines.Repo
	Machine     *deadlines.Machine
	Behavior    *behavior.Service
	Health      dealhealth.Repo

	// Concurrency bounds the batch fan-out; <=1 runs sequentially.
	Concurrency int
	// CompletionLookback is how far back a batch run scans completed
	// deadlines when picking actors for a behavior refresh.
	CompletionLookback time.Duration
}

// Evaluate recomputes one submission synchronously and returns the fresh
// health snapshot.
func (s *Service) Evaluate(ctx context.Context, submissionID string, now time.Time) (dealhealth.DealHealth, error) {
	metrics.IncEvaluationStarted()
	start := time.Now()

	health, err := s.evaluate(ctx, submissionID, now)
	metrics.ObserveEvaluationDurationMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.IncEvaluationFailed()
		return dealhealth.DealHealth{}, err
	}
	metrics.IncEvaluationCompleted()
	return health, nil
}

func (s *Service) evaluate(ctx context.Context, submissionID string, now time.Time) (dealhealth.DealHealth, error) {
	sub, err := s.Submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, submissions.ErrNotFound) {
			return dealhealth.DealHealth{}, ErrNotFound
		}
		return dealhealth.DealHealth{}, fmt.Errorf("load submission: %w", err)
	}

	// Step 1: advance the deadline state machine. The aggregation below must
	// read post-transition statuses.
	results, err := s.Machine.ProcessEntity(ctx, deadlines.EntitySubmission, sub.ID, now)
	if err != nil {
		return dealhealth.DealHealth{}, fmt.Errorf("process deadlines: %w", err)
	}

	// Step 2: refresh reputation for every actor whose deadline just went
	// overdue. A refresh failure degrades to the stale snapshot.
	for actorID := range breachedActors(results) {
		if _, err := s.Behavior.Refresh(ctx, actorID, now); err != nil {
			telemetry.Warn("behavior.refresh_failed", map[string]any{
				"actor_id": actorID,
				"error":    err.Error(),
			})
		}
	}

	// Step 3: aggregate health from the post-transition state.
	open, err := s.Deadlines.ListOpenByEntity(ctx, deadlines.EntitySubmission, sub.ID)
	if err != nil {
		return dealhealth.DealHealth{}, fmt.Errorf("list open deadlines: %w", err)
	}

	in := dealhealth.Inputs{
		Submission:    sub,
		OpenDeadlines: open,
		Recruiter:     s.snapshot(ctx, sub.RecruiterActorID),
		Client:        s.snapshot(ctx, sub.ClientActorID),
	}
	health := dealhealth.Calculate(in, now)
	if err := s.Health.Upsert(ctx, health); err != nil {
		return dealhealth.DealHealth{}, fmt.Errorf("store health: %w", err)
	}
	return health, nil
}

// snapshot fetches an actor's behavior score, treating a missing snapshot as
// absent (the aggregator defaults it to neutral).
func (s *Service) snapshot(ctx context.Context, actorID string) *behavior.Score {
	if actorID == "" {
		return nil
	}
	score, err := s.Behavior.GetScore(ctx, actorID)
	if err != nil {
		if !errors.Is(err, behavior.ErrNotFound) {
			telemetry.Warn("behavior.load_failed", map[string]any{
				"actor_id": actorID,
				"error":    err.Error(),
			})
		}
		return nil
	}
	return &score
}

// breachedActors collects the responsible actor of every transition that
// marks an obligation overdue.
func breachedActors(results []deadlines.Result) map[string]struct{} {
	actors := make(map[string]struct{})
	for _, r := range results {
		switch r.Action {
		case deadlines.ActionRemindNow, deadlines.ActionEscalateNow:
			if r.Deadline.ActorID != "" {
				actors[r.Deadline.ActorID] = struct{}{}
			}
		}
	}
	return actors
}

// EvaluateAll runs one full cycle over every submission in an active stage.
// Items fan out under a semaphore; one item's failure is counted, logged,
// and never aborts the rest. The context cancels the run between items.
func (s *Service) EvaluateAll(ctx context.Context, now time.Time) (Summary, error) {
	s.refreshRecentCompleters(ctx, now)

	active, err := s.Submissions.ListByStages(ctx, submissions.ActiveStages)
	if err != nil {
		return Summary{}, fmt.Errorf("list active submissions: %w", err)
	}

	limit := int64(s.Concurrency)
	if limit < 1 {
		limit = 1
	}
	sem := semaphore.NewWeighted(limit)

	var (
		wg        sync.WaitGroup
		processed atomic.Int64
		failed    atomic.Int64
	)
	for _, sub := range active {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Cancelled mid-cycle. Everything committed so far stands.
			break
		}
		wg.Add(1)
		go func(submissionID string) {
			defer wg.Done()
			defer sem.Release(1)
			if _, err := s.Evaluate(ctx, submissionID, now); err != nil {
				failed.Add(1)
				telemetry.Error("engine.item.failed", map[string]any{
					"submission_id": submissionID,
					"error":         err.Error(),
				})
				return
			}
			processed.Add(1)
		}(sub.ID)
	}
	wg.Wait()

	summary := Summary{Processed: int(processed.Load()), Failed: int(failed.Load())}
	telemetry.Info("engine.cycle.finished", map[string]any{
		"processed": summary.Processed,
		"failed":    summary.Failed,
		"selected":  len(active),
	})
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// refreshRecentCompleters recomputes behavior for every actor that fulfilled
// an obligation inside the lookback window, so compliance credit lands even
// when no deadline transition fires this cycle.
func (s *Service) refreshRecentCompleters(ctx context.Context, now time.Time) {
	lookback := s.CompletionLookback
	if lookback <= 0 {
		return
	}
	completed, err := s.Deadlines.ListCompletedSince(ctx, now.Add(-lookback))
	if err != nil {
		telemetry.Warn("behavior.completion_scan_failed", map[string]any{"error": err.Error()})
		return
	}
	seen := make(map[string]struct{})
	for _, d := range completed {
		if d.ActorID == "" {
			continue
		}
		if _, ok := seen[d.ActorID]; ok {
			continue
		}
		seen[d.ActorID] = struct{}{}
		if _, err := s.Behavior.Refresh(ctx, d.ActorID, now); err != nil {
			telemetry.Warn("behavior.refresh_failed", map[string]any{
				"actor_id": d.ActorID,
				"error":    err.Error(),
			})
		}
	}
}
