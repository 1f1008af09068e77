package actors

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Actor
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Actor)}
}

// Create stores an actor.
func (r *MemoryRepo) Create(ctx context.Context, actor Actor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[actor.ID] = actor
	return nil
}

// GetByID returns an actor by id.
func (r *MemoryRepo) GetByID(ctx context.Context, actorID string) (Actor, error) {
	if err := ctx.Err(); err != nil {
		return Actor{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	actor, ok := r.data[actorID]
	if !ok {
		return Actor{}, ErrNotFound
	}
	return actor, nil
}

// ListAdminIDs returns ids of all actors with the admin role, sorted for
// deterministic broadcast order.
func (r *MemoryRepo) ListAdminIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0)
	for _, actor := range r.data {
		if actor.Role == RoleAdmin {
			out = append(out, actor.ID)
		}
	}
	sort.Strings(out)
	return out, nil
}
