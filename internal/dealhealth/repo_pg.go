package dealhealth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres. The factor and action lists are
// stored as JSONB.
type PGRepo struct {
	DB *sql.DB
}

// Upsert replaces the snapshot for a submission.
func (r *PGRepo) Upsert(ctx context.Context, health DealHealth) error {
	factors, err := json.Marshal(orEmpty(health.RiskFactors))
	if err != nil {
		return fmt.Errorf("marshal risk factors: %w", err)
	}
	actions, err := json.Marshal(orEmpty(health.RecommendedActions))
	if err != nil {
		return fmt.Errorf("marshal recommended actions: %w", err)
	}

	const query = `
INSERT INTO deal_health (
	submission_id, health_score, risk_level, drop_off_probability,
	days_since_last_activity, bottleneck, bottleneck_actor_id, bottleneck_days,
	risk_factors, recommended_actions, assessment, calculated_at
)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $11, $12)
ON CONFLICT (submission_id) DO UPDATE SET
	health_score = EXCLUDED.health_score,
	risk_level = EXCLUDED.risk_level,
	drop_off_probability = EXCLUDED.drop_off_probability,
	days_since_last_activity = EXCLUDED.days_since_last_activity,
	bottleneck = EXCLUDED.bottleneck,
	bottleneck_actor_id = EXCLUDED.bottleneck_actor_id,
	bottleneck_days = EXCLUDED.bottleneck_days,
	risk_factors = EXCLUDED.risk_factors,
	recommended_actions = EXCLUDED.recommended_actions,
	assessment = EXCLUDED.assessment,
	calculated_at = EXCLUDED.calculated_at`
	_, err = r.DB.ExecContext(ctx, query,
		health.SubmissionID,
		health.HealthScore,
		health.RiskLevel,
		health.DropOffProbability,
		health.DaysSinceLastActivity,
		health.Bottleneck,
		health.BottleneckActorID,
		health.BottleneckDays,
		factors,
		actions,
		health.Assessment,
		health.CalculatedAt,
	)
	return err
}

// GetBySubmission returns the snapshot for a submission.
func (r *PGRepo) GetBySubmission(ctx context.Context, submissionID string) (DealHealth, error) {
	const query = `
SELECT submission_id, health_score, risk_level, drop_off_probability,
       days_since_last_activity, COALESCE(bottleneck, ''),
       COALESCE(bottleneck_actor_id, ''), bottleneck_days,
       risk_factors, recommended_actions, assessment, calculated_at
FROM deal_health
WHERE submission_id = $1`
	var (
		health  DealHealth
		factors []byte
		actions []byte
	)
	err := r.DB.QueryRowContext(ctx, query, submissionID).Scan(
		&health.SubmissionID,
		&health.HealthScore,
		&health.RiskLevel,
		&health.DropOffProbability,
		&health.DaysSinceLastActivity,
		&health.Bottleneck,
		&health.BottleneckActorID,
		&health.BottleneckDays,
		&factors,
		&actions,
		&health.Assessment,
		&health.CalculatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DealHealth{}, ErrNotFound
		}
		return DealHealth{}, err
	}
	if err := json.Unmarshal(factors, &health.RiskFactors); err != nil {
		return DealHealth{}, fmt.Errorf("unmarshal risk factors: %w", err)
	}
	if err := json.Unmarshal(actions, &health.RecommendedActions); err != nil {
		return DealHealth{}, fmt.Errorf("unmarshal recommended actions: %w", err)
	}
	return health, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
