package actors

import "context"

// Repo defines persistence operations for actors.
type Repo interface {
	Create(ctx context.Context, actor Actor) error
	GetByID(ctx context.Context, actorID string) (Actor, error)
	ListAdminIDs(ctx context.Context) ([]string, error)
}
