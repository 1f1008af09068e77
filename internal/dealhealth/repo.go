package dealhealth

import "context"

// Repo defines persistence for health snapshots. Upsert fully replaces any
// prior snapshot for the submission.
type Repo interface {
	Upsert(ctx context.Context, health DealHealth) error
	GetBySubmission(ctx context.Context, submissionID string) (DealHealth, error)
}
