package submissions

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const submissionColumns = `
id, candidate_name, job_title, stage, recruiter_actor_id, client_actor_id,
match_score, submitted_at, last_activity_at, archived_at, created_at, updated_at`

// Create inserts a submission.
func (r *PGRepo) Create(ctx context.Context, sub Submission) error {
	const query = `
INSERT INTO submissions (
	id, candidate_name, job_title, stage, recruiter_actor_id, client_actor_id,
	match_score, submitted_at, last_activity_at, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	var matchScore any
	if sub.MatchScore != nil {
		matchScore = *sub.MatchScore
	}
	_, err := r.DB.ExecContext(ctx, query,
		sub.ID,
		sub.CandidateName,
		sub.JobTitle,
		sub.Stage,
		sub.RecruiterActorID,
		sub.ClientActorID,
		matchScore,
		sub.SubmittedAt,
		sub.LastActivityAt,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	return err
}

// GetByID returns a submission by id.
func (r *PGRepo) GetByID(ctx context.Context, submissionID string) (Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	row := r.DB.QueryRowContext(ctx, query, submissionID)
	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, err
	}
	return sub, nil
}

// ListByStages returns unarchived submissions in the given stages.
func (r *PGRepo) ListByStages(ctx context.Context, stages []string) ([]Submission, error) {
	query := `SELECT ` + submissionColumns + `
FROM submissions
WHERE stage = ANY($1) AND archived_at IS NULL
ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query, stages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// UpdateStage moves a submission to a new stage and counts as activity.
func (r *PGRepo) UpdateStage(ctx context.Context, submissionID, stage string, at time.Time) error {
	const query = `
UPDATE submissions SET stage = $1, last_activity_at = $2, updated_at = $2 WHERE id = $3`
	return execExpectingRow(ctx, r.DB, query, stage, at, submissionID)
}

// TouchActivity records activity on a submission.
func (r *PGRepo) TouchActivity(ctx context.Context, submissionID string, at time.Time) error {
	const query = `
UPDATE submissions SET last_activity_at = $1, updated_at = $1 WHERE id = $2`
	return execExpectingRow(ctx, r.DB, query, at, submissionID)
}

// Archive marks a submission archived.
func (r *PGRepo) Archive(ctx context.Context, submissionID string, at time.Time) error {
	const query = `
UPDATE submissions SET archived_at = $1, updated_at = $1 WHERE id = $2`
	return execExpectingRow(ctx, r.DB, query, at, submissionID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (Submission, error) {
	var sub Submission
	var matchScore sql.NullFloat64
	var archivedAt sql.NullTime
	err := row.Scan(
		&sub.ID,
		&sub.CandidateName,
		&sub.JobTitle,
		&sub.Stage,
		&sub.RecruiterActorID,
		&sub.ClientActorID,
		&matchScore,
		&sub.SubmittedAt,
		&sub.LastActivityAt,
		&archivedAt,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return Submission{}, err
	}
	if matchScore.Valid {
		value := matchScore.Float64
		sub.MatchScore = &value
	}
	if archivedAt.Valid {
		value := archivedAt.Time
		sub.ArchivedAt = &value
	}
	return sub, nil
}

func execExpectingRow(ctx context.Context, db *sql.DB, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
