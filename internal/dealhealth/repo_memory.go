package dealhealth

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]DealHealth
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]DealHealth)}
}

// Upsert replaces the snapshot for a submission.
func (r *MemoryRepo) Upsert(ctx context.Context, health DealHealth) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[health.SubmissionID] = health
	return nil
}

// GetBySubmission returns the snapshot for a submission.
func (r *MemoryRepo) GetBySubmission(ctx context.Context, submissionID string) (DealHealth, error) {
	if err := ctx.Err(); err != nil {
		return DealHealth{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	health, ok := r.data[submissionID]
	if !ok {
		return DealHealth{}, ErrNotFound
	}
	return health, nil
}
