package submissions

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Submission
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Submission)}
}

// Create stores a submission.
func (r *MemoryRepo) Create(ctx context.Context, sub Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[sub.ID] = sub
	return nil
}

// GetByID returns a submission by id.
func (r *MemoryRepo) GetByID(ctx context.Context, submissionID string) (Submission, error) {
	if err := ctx.Err(); err != nil {
		return Submission{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.data[submissionID]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return sub, nil
}

// ListByStages returns unarchived submissions in the given stages, ordered by id.
func (r *MemoryRepo) ListByStages(ctx context.Context, stages []string) ([]Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(stages))
	for _, stage := range stages {
		wanted[stage] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Submission, 0)
	for _, sub := range r.data {
		if sub.ArchivedAt != nil {
			continue
		}
		if _, ok := wanted[sub.Stage]; ok {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateStage moves a submission to a new stage and counts as activity.
func (r *MemoryRepo) UpdateStage(ctx context.Context, submissionID, stage string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.data[submissionID]
	if !ok {
		return ErrNotFound
	}
	sub.Stage = stage
	sub.LastActivityAt = at
	sub.UpdatedAt = at
	r.data[submissionID] = sub
	return nil
}

// TouchActivity records activity on a submission.
func (r *MemoryRepo) TouchActivity(ctx context.Context, submissionID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.data[submissionID]
	if !ok {
		return ErrNotFound
	}
	sub.LastActivityAt = at
	sub.UpdatedAt = at
	r.data[submissionID] = sub
	return nil
}

// Archive marks a submission archived. Records are never deleted.
func (r *MemoryRepo) Archive(ctx context.Context, submissionID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.data[submissionID]
	if !ok {
		return ErrNotFound
	}
	sub.ArchivedAt = &at
	sub.UpdatedAt = at
	r.data[submissionID] = sub
	return nil
}
