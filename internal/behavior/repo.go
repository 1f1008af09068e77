package behavior

import "context"

// ScoresRepo defines persistence operations for behavior snapshots. Upsert
// fully replaces any prior snapshot for the actor.
type ScoresRepo interface {
	Upsert(ctx context.Context, score Score) error
	GetByActor(ctx context.Context, actorID string) (Score, error)
}

// ObservationsRepo stores response-latency observations.
type ObservationsRepo interface {
	Record(ctx context.Context, obs Observation) error
	ListRecentByActor(ctx context.Context, actorID string, limit int) ([]Observation, error)
}
