package behavior

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"pipeline-backend/internal/deadlines"
)

// Service recomputes behavior snapshots from observations and deadline
// outcomes.
type Service struct {
	Scores       ScoresRepo
	Observations ObservationsRepo
	Deadlines    deadlines.Repo
}

// RecordObservation stores one response latency for an actor. Negative
// latencies are rejected; the clock only runs forward.
func (s *Service) RecordObservation(ctx context.Context, actorID string, latencyHours float64, observedAt time.Time) (Observation, error) {
	if actorID == "" || latencyHours < 0 {
		return Observation{}, ErrInvalidInput
	}
	obs := Observation{
		ID:           uuid.NewString(),
		ActorID:      actorID,
		LatencyHours: latencyHours,
		ObservedAt:   observedAt,
	}
	if err := s.Observations.Record(ctx, obs); err != nil {
		return Observation{}, err
	}
	return obs, nil
}

// Refresh recomputes and stores the snapshot for an actor from its recent
// observations and lifetime deadline outcomes. The previous snapshot, when
// one exists, supplies the response-average fallback for actors with no
// observations in the window.
func (s *Service) Refresh(ctx context.Context, actorID string, now time.Time) (Score, error) {
	if actorID == "" {
		return Score{}, ErrInvalidInput
	}

	recent, err := s.Observations.ListRecentByActor(ctx, actorID, ObservationWindow)
	if err != nil {
		return Score{}, err
	}
	latencies := make([]float64, 0, len(recent))
	for _, obs := range recent {
		latencies = append(latencies, obs.LatencyHours)
	}

	counts, err := s.Deadlines.CountOutcomesByActor(ctx, actorID, now)
	if err != nil {
		return Score{}, err
	}

	var prev *Score
	if existing, err := s.Scores.GetByActor(ctx, actorID); err == nil {
		prev = &existing
	} else if !errors.Is(err, ErrNotFound) {
		return Score{}, err
	}

	score := Compute(actorID, latencies, counts, prev, now)
	if err := s.Scores.Upsert(ctx, score); err != nil {
		return Score{}, err
	}
	return score, nil
}

// GetScore returns the stored snapshot for an actor.
func (s *Service) GetScore(ctx context.Context, actorID string) (Score, error) {
	return s.Scores.GetByActor(ctx, actorID)
}
