package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"pipeline-backend/internal/actors"
	"pipeline-backend/internal/behavior"
	"pipeline-backend/internal/deadlines"
	"pipeline-backend/internal/dealhealth"
	"pipeline-backend/internal/notify"
	"pipeline-backend/internal/submissions"
)

type fixture struct {
	svc       *Service
	subs      *submissions.MemoryRepo
	dls       *deadlines.MemoryRepo
	rules     *deadlines.MemoryRulesRepo
	acts      *actors.MemoryRepo
	scores    *behavior.MemoryScoresRepo
	health    *dealhealth.MemoryRepo
	notifier  *notify.MemoryRecorder
	behaviors *behavior.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	subs := submissions.NewMemoryRepo()
	dls := deadlines.NewMemoryRepo()
	rules := deadlines.NewMemoryRulesRepo()
	acts := actors.NewMemoryRepo()
	scores := behavior.NewMemoryScoresRepo()
	health := dealhealth.NewMemoryRepo()
	notifier := notify.NewMemoryRecorder()

	behaviors := &behavior.Service{
		Scores:       scores,
		Observations: behavior.NewMemoryObservationsRepo(),
		Deadlines:    dls,
	}
	svc := &Service{
		Submissions: subs,
		Deadlines:   dls,
		Machine: &deadlines.Machine{
			Deadlines: dls,
			Rules:     rules,
			Actors:    acts,
			Notifier:  notifier,
		},
		Behavior:           behaviors,
		Health:             health,
		Concurrency:        2,
		CompletionLookback: 15 * time.Minute,
	}
	return &fixture{
		svc: svc, subs: subs, dls: dls, rules: rules, acts: acts,
		scores: scores, health: health, notifier: notifier, behaviors: behaviors,
	}
}

func (f *fixture) seedSubmission(t *testing.T, sub submissions.Submission) {
	t.Helper()
	if err := f.subs.Create(context.Background(), sub); err != nil {
		t.Fatalf("seed submission: %v", err)
	}
}

func TestEvaluateUnknownSubmission(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Evaluate(context.Background(), "missing", time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// An overdue escalating deadline moves to escalated, stamps breached_at,
// broadcasts to admins, and recomputes the responsible actor's reputation
// with the breach counted, all within one evaluation.
func TestEvaluateEscalatesOverdueDeadline(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	if err := f.acts.Create(context.Background(), actors.Actor{ID: "admin-1", Name: "Ops", Role: actors.RoleAdmin}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	f.seedSubmission(t, submissions.Submission{
		ID: "sub-1", Stage: submissions.StageInReview,
		RecruiterActorID: "rec-1", ClientActorID: "cli-1",
		SubmittedAt: now.AddDate(0, 0, -3), LastActivityAt: now.Add(-time.Hour),
	})
	rule := deadlines.Rule{ID: "rule-1", Name: "Client feedback", EntityType: deadlines.EntitySubmission,
		WarningHours: 24, DeadlineHours: 48, DeadlineAction: deadlines.ActionEscalate}
	if err := f.rules.Create(context.Background(), rule); err != nil {
		t.Fatalf("seed rule: %v", err)
	}
	if err := f.dls.Create(context.Background(), deadlines.Deadline{
		ID: "dl-1", EntityType: deadlines.EntitySubmission, EntityID: "sub-1",
		ActorID: "cli-1", RuleID: "rule-1",
		WarningAt: now.Add(-25 * time.Hour), DeadlineAt: now.Add(-time.Hour),
		Status: deadlines.StatusWarningSent, CreatedAt: now.Add(-49 * time.Hour), UpdatedAt: now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("seed deadline: %v", err)
	}

	health, err := f.svc.Evaluate(context.Background(), "sub-1", now)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	d, err := f.dls.GetByID(context.Background(), "dl-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if d.Status != deadlines.StatusEscalated {
		t.Fatalf("status = %q, want escalated", d.Status)
	}
	if d.BreachedAt == nil || !d.BreachedAt.Equal(now) {
		t.Fatalf("breached_at = %v, want %v", d.BreachedAt, now)
	}

	sent := f.notifier.Sent()
	if len(sent) != 1 {
		t.Fatalf("notifications = %d, want 1 admin broadcast", len(sent))
	}
	if sent[0].RecipientID != "admin-1" || sent[0].Category != notify.CategorySLAEscalation {
		t.Fatalf("unexpected notification %+v", sent[0])
	}

	score, err := f.scores.GetByActor(context.Background(), "cli-1")
	if err != nil {
		t.Fatalf("behavior snapshot missing: %v", err)
	}
	if score.SLAComplianceRate != 0 {
		t.Fatalf("compliance = %v, want 0 after the only deadline escalated", score.SLAComplianceRate)
	}
	if score.GhostRate != 100 {
		t.Fatalf("ghost rate = %v, want 100", score.GhostRate)
	}

	// Escalated deadlines are closed, so the aggregation sees no open ones.
	if health.HealthScore == 0 {
		t.Fatal("expected a non-zero health score")
	}
	stored, err := f.health.GetBySubmission(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("stored health missing: %v", err)
	}
	if stored.HealthScore != health.HealthScore {
		t.Fatalf("stored health %d differs from returned %d", stored.HealthScore, health.HealthScore)
	}
}

// Re-running evaluation with unchanged inputs yields an identical health
// record while the remind loop keeps incrementing its counter.
func TestEvaluateHealthPureButRemindersAreNot(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	f.seedSubmission(t, submissions.Submission{
		ID: "sub-1", Stage: submissions.StageInReview,
		RecruiterActorID: "rec-1", ClientActorID: "cli-1",
		SubmittedAt: now.AddDate(0, 0, -3), LastActivityAt: now.Add(-time.Hour),
	})
	rule := deadlines.Rule{ID: "rule-1", Name: "First touch", EntityType: deadlines.EntitySubmission,
		WarningHours: 24, DeadlineHours: 48, DeadlineAction: deadlines.ActionRemind}
	if err := f.rules.Create(context.Background(), rule); err != nil {
		t.Fatalf("seed rule: %v", err)
	}
	if err := f.dls.Create(context.Background(), deadlines.Deadline{
		ID: "dl-1", EntityType: deadlines.EntitySubmission, EntityID: "sub-1",
		ActorID: "rec-1", RuleID: "rule-1",
		WarningAt: now.Add(-25 * time.Hour), DeadlineAt: now.Add(-time.Hour),
		Status: deadlines.StatusWarningSent,
	}); err != nil {
		t.Fatalf("seed deadline: %v", err)
	}

	first, err := f.svc.Evaluate(context.Background(), "sub-1", now)
	if err != nil {
		t.Fatalf("first Evaluate: %v", err)
	}
	second, err := f.svc.Evaluate(context.Background(), "sub-1", now)
	if err != nil {
		t.Fatalf("second Evaluate: %v", err)
	}

	if first.HealthScore != second.HealthScore ||
		first.RiskLevel != second.RiskLevel ||
		first.DropOffProbability != second.DropOffProbability ||
		first.Assessment != second.Assessment {
		t.Fatalf("health diverged across identical runs: %+v vs %+v", first, second)
	}

	d, err := f.dls.GetByID(context.Background(), "dl-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if d.RemindersSent != 2 {
		t.Fatalf("reminders = %d, want one per run", d.RemindersSent)
	}
	if d.Status != deadlines.StatusWarningSent {
		t.Fatalf("status = %q, remind loop must not change it", d.Status)
	}
}

func TestEvaluateAllIsolatesItemFailures(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"sub-1", "sub-2", "sub-3"} {
		f.seedSubmission(t, submissions.Submission{
			ID: id, Stage: submissions.StageSubmitted,
			RecruiterActorID: "rec-1", ClientActorID: "cli-1",
			SubmittedAt: now.AddDate(0, 0, -1), LastActivityAt: now,
		})
	}
	// A deadline referencing a rule that no longer exists makes sub-2's
	// state machine pass log-and-skip, which is not an item failure; break
	// its health upsert instead via a failing repo.
	f.svc.Health = &failingOnce{inner: f.health, failFor: "sub-2"}

	summary, err := f.svc.EvaluateAll(context.Background(), now)
	if err != nil {
		t.Fatalf("EvaluateAll: %v", err)
	}
	if summary.Processed != 2 {
		t.Fatalf("processed = %d, want 2", summary.Processed)
	}
	if summary.Failed != 1 {
		t.Fatalf("failed = %d, want 1", summary.Failed)
	}

	// The healthy items still got snapshots.
	for _, id := range []string{"sub-1", "sub-3"} {
		if _, err := f.health.GetBySubmission(context.Background(), id); err != nil {
			t.Fatalf("health for %s missing: %v", id, err)
		}
	}
}

func TestEvaluateAllSkipsTerminalStages(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	f.seedSubmission(t, submissions.Submission{
		ID: "sub-live", Stage: submissions.StageOffer,
		SubmittedAt: now.AddDate(0, 0, -1), LastActivityAt: now,
	})
	f.seedSubmission(t, submissions.Submission{
		ID: "sub-done", Stage: submissions.StagePlaced,
		SubmittedAt: now.AddDate(0, 0, -30), LastActivityAt: now.AddDate(0, 0, -10),
	})

	summary, err := f.svc.EvaluateAll(context.Background(), now)
	if err != nil {
		t.Fatalf("EvaluateAll: %v", err)
	}
	if summary.Processed != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want exactly the live item", summary)
	}
	if _, err := f.health.GetBySubmission(context.Background(), "sub-done"); !errors.Is(err, dealhealth.ErrNotFound) {
		t.Fatalf("terminal submission got a snapshot: err = %v", err)
	}
}

func TestEvaluateAllRefreshesRecentCompleters(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	rule := deadlines.Rule{ID: "rule-1", Name: "First touch", EntityType: deadlines.EntitySubmission,
		WarningHours: 24, DeadlineHours: 48, DeadlineAction: deadlines.ActionRemind}
	if err := f.rules.Create(context.Background(), rule); err != nil {
		t.Fatalf("seed rule: %v", err)
	}
	completedAt := now.Add(-5 * time.Minute)
	if err := f.dls.Create(context.Background(), deadlines.Deadline{
		ID: "dl-1", EntityType: deadlines.EntitySubmission, EntityID: "sub-old",
		ActorID: "rec-1", RuleID: "rule-1",
		WarningAt: now.Add(-48 * time.Hour), DeadlineAt: now.Add(-24 * time.Hour),
		Status: deadlines.StatusCompleted, CompletedAt: &completedAt,
	}); err != nil {
		t.Fatalf("seed deadline: %v", err)
	}

	if _, err := f.svc.EvaluateAll(context.Background(), now); err != nil {
		t.Fatalf("EvaluateAll: %v", err)
	}

	score, err := f.scores.GetByActor(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("completer snapshot missing: %v", err)
	}
	if score.SLAComplianceRate != 100 {
		t.Fatalf("compliance = %v, want 100", score.SLAComplianceRate)
	}
	if score.GhostRate != 0 {
		t.Fatalf("ghost rate = %v, want 0", score.GhostRate)
	}
}

func TestEvaluateAllStopsOnCancellation(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	f.seedSubmission(t, submissions.Submission{
		ID: "sub-1", Stage: submissions.StageSubmitted,
		SubmittedAt: now, LastActivityAt: now,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.svc.EvaluateAll(ctx, now)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

// failingOnce wraps a health repo and fails the upsert for one submission.
type failingOnce struct {
	inner   dealhealth.Repo
	failFor string
}

func (f *failingOnce) Upsert(ctx context.Context, health dealhealth.DealHealth) error {
	if health.SubmissionID == f.failFor {
		return errors.New("simulated store failure")
	}
	return f.inner.Upsert(ctx, health)
}

func (f *failingOnce) GetBySubmission(ctx context.Context, submissionID string) (dealhealth.DealHealth, error) {
	return f.inner.GetBySubmission(ctx, submissionID)
}
