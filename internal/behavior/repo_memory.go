package behavior

import (
	"context"
	"sort"
	"sync"
)

// MemoryScoresRepo is an in-memory implementation of ScoresRepo.
type MemoryScoresRepo struct {
	mu   sync.RWMutex
	data map[string]Score
}

// NewMemoryScoresRepo constructs a MemoryScoresRepo.
func NewMemoryScoresRepo() *MemoryScoresRepo {
	return &MemoryScoresRepo{data: make(map[string]Score)}
}

// Upsert replaces the snapshot for an actor.
func (r *MemoryScoresRepo) Upsert(ctx context.Context, score Score) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[score.ActorID] = score
	return nil
}

// GetByActor returns the snapshot for an actor.
func (r *MemoryScoresRepo) GetByActor(ctx context.Context, actorID string) (Score, error) {
	if err := ctx.Err(); err != nil {
		return Score{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	score, ok := r.data[actorID]
	if !ok {
		return Score{}, ErrNotFound
	}
	return score, nil
}

// MemoryObservationsRepo is an in-memory implementation of ObservationsRepo.
type MemoryObservationsRepo struct {
	mu   sync.RWMutex
	data map[string][]Observation
}

// NewMemoryObservationsRepo constructs a MemoryObservationsRepo.
func NewMemoryObservationsRepo() *MemoryObservationsRepo {
	return &MemoryObservationsRepo{data: make(map[string][]Observation)}
}

// Record stores an observation.
func (r *MemoryObservationsRepo) Record(ctx context.Context, obs Observation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[obs.ActorID] = append(r.data[obs.ActorID], obs)
	return nil
}

// ListRecentByActor returns up to limit observations, newest first.
func (r *MemoryObservationsRepo) ListRecentByActor(ctx context.Context, actorID string, limit int) ([]Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	stored := r.data[actorID]
	r.mu.RUnlock()

	out := make([]Observation, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool { return out[i].ObservedAt.After(out[j].ObservedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
