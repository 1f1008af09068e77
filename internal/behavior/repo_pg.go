package behavior

import (
	"context"
	"database/sql"
	"errors"
)

// PGScoresRepo implements ScoresRepo using Postgres.
type PGScoresRepo struct {
	DB *sql.DB
}

// Upsert replaces the snapshot for an actor.
func (r *PGScoresRepo) Upsert(ctx context.Context, score Score) error {
	const query = `
INSERT INTO behavior_scores (
	actor_id, avg_response_time_hours, response_count, ghost_rate,
	sla_compliance_rate, behavior_class, risk_score, calculated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (actor_id) DO UPDATE SET
	avg_response_time_hours = EXCLUDED.avg_response_time_hours,
	response_count = EXCLUDED.response_count,
	ghost_rate = EXCLUDED.ghost_rate,
	sla_compliance_rate = EXCLUDED.sla_compliance_rate,
	behavior_class = EXCLUDED.behavior_class,
	risk_score = EXCLUDED.risk_score,
	calculated_at = EXCLUDED.calculated_at`
	_, err := r.DB.ExecContext(ctx, query,
		score.ActorID,
		score.AvgResponseTimeHours,
		score.ResponseCount,
		score.GhostRate,
		score.SLAComplianceRate,
		score.BehaviorClass,
		score.RiskScore,
		score.CalculatedAt,
	)
	return err
}

// GetByActor returns the snapshot for an actor.
func (r *PGScoresRepo) GetByActor(ctx context.Context, actorID string) (Score, error) {
	const query = `
SELECT actor_id, avg_response_time_hours, response_count, ghost_rate,
       sla_compliance_rate, behavior_class, risk_score, calculated_at
FROM behavior_scores
WHERE actor_id = $1`
	var score Score
	err := r.DB.QueryRowContext(ctx, query, actorID).Scan(
		&score.ActorID,
		&score.AvgResponseTimeHours,
		&score.ResponseCount,
		&score.GhostRate,
		&score.SLAComplianceRate,
		&score.BehaviorClass,
		&score.RiskScore,
		&score.CalculatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Score{}, ErrNotFound
		}
		return Score{}, err
	}
	return score, nil
}

// PGObservationsRepo implements ObservationsRepo using Postgres.
type PGObservationsRepo struct {
	DB *sql.DB
}

// Record stores an observation.
func (r *PGObservationsRepo) Record(ctx context.Context, obs Observation) error {
	const query = `
INSERT INTO response_observations (id, actor_id, latency_hours, observed_at)
VALUES ($1, $2, $3, $4)`
	_, err := r.DB.ExecContext(ctx, query, obs.ID, obs.ActorID, obs.LatencyHours, obs.ObservedAt)
	return err
}

// ListRecentByActor returns up to limit observations, newest first.
func (r *PGObservationsRepo) ListRecentByActor(ctx context.Context, actorID string, limit int) ([]Observation, error) {
	const query = `
SELECT id, actor_id, latency_hours, observed_at
FROM response_observations
WHERE actor_id = $1
ORDER BY observed_at DESC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, actorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Observation
	for rows.Next() {
		var obs Observation
		if err := rows.Scan(&obs.ID, &obs.ActorID, &obs.LatencyHours, &obs.ObservedAt); err != nil {
			return nil, err
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}
