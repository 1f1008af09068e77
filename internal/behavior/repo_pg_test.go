package behavior

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGScoresRepoUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	score := Score{
		ActorID:              "actor-1",
		AvgResponseTimeHours: 6,
		ResponseCount:        12,
		GhostRate:            10,
		SLAComplianceRate:    85,
		BehaviorClass:        ClassNeutral,
		RiskScore:            12.5,
		CalculatedAt:         now,
	}

	mock.ExpectExec("INSERT INTO behavior_scores").
		WithArgs(score.ActorID, score.AvgResponseTimeHours, score.ResponseCount, score.GhostRate,
			score.SLAComplianceRate, score.BehaviorClass, score.RiskScore, score.CalculatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGScoresRepo{DB: db}
	if err := repo.Upsert(context.Background(), score); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGScoresRepoGetByActorNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM behavior_scores").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"actor_id", "avg_response_time_hours", "response_count", "ghost_rate",
			"sla_compliance_rate", "behavior_class", "risk_score", "calculated_at",
		}))

	repo := &PGScoresRepo{DB: db}
	if _, err := repo.GetByActor(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGObservationsRepoListRecentByActor(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "actor_id", "latency_hours", "observed_at"}).
		AddRow("obs-2", "actor-1", 2.0, now).
		AddRow("obs-1", "actor-1", 4.0, now.Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM response_observations").
		WithArgs("actor-1", ObservationWindow).
		WillReturnRows(rows)

	repo := &PGObservationsRepo{DB: db}
	got, err := repo.ListRecentByActor(context.Background(), "actor-1", ObservationWindow)
	if err != nil {
		t.Fatalf("ListRecentByActor: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "obs-2" || got[1].ID != "obs-1" {
		t.Fatalf("unexpected order: %q, %q", got[0].ID, got[1].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
