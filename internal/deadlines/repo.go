package deadlines

import (
	"context"
	"time"
)

// Repo defines persistence operations for deadlines.
type Repo interface {
	Create(ctx context.Context, d Deadline) error
	GetByID(ctx context.Context, deadlineID string) (Deadline, error)
	ListOpenByEntity(ctx context.Context, entityType, entityID string) ([]Deadline, error)
	Update(ctx context.Context, d Deadline) error
	Complete(ctx context.Context, deadlineID string, at time.Time) (Deadline, error)
	CountOutcomesByActor(ctx context.Context, actorID string, now time.Time) (OutcomeCounts, error)
	ListCompletedSince(ctx context.Context, since time.Time) ([]Deadline, error)
}

// RulesRepo defines persistence operations for SLA rules.
type RulesRepo interface {
	Create(ctx context.Context, rule Rule) error
	GetByID(ctx context.Context, ruleID string) (Rule, error)
	List(ctx context.Context) ([]Rule, error)
}
