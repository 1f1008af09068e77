package submissions

import (
	"context"
	"time"
)

// Repo defines persistence operations for submissions.
type Repo interface {
	Create(ctx context.Context, sub Submission) error
	GetByID(ctx context.Context, submissionID string) (Submission, error)
	ListByStages(ctx context.Context, stages []string) ([]Submission, error)
	UpdateStage(ctx context.Context, submissionID, stage string, at time.Time) error
	TouchActivity(ctx context.Context, submissionID string, at time.Time) error
	Archive(ctx context.Context, submissionID string, at time.Time) error
}
