package deadlines

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Deadline
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Deadline)}
}

// Create stores a deadline.
func (r *MemoryRepo) Create(ctx context.Context, d Deadline) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[d.ID] = d
	return nil
}

// GetByID returns a deadline by id.
func (r *MemoryRepo) GetByID(ctx context.Context, deadlineID string) (Deadline, error) {
	if err := ctx.Err(); err != nil {
		return Deadline{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.data[deadlineID]
	if !ok {
		return Deadline{}, ErrNotFound
	}
	return d, nil
}

// ListOpenByEntity returns open deadlines for one entity, ordered by id.
func (r *MemoryRepo) ListOpenByEntity(ctx context.Context, entityType, entityID string) ([]Deadline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Deadline, 0)
	for _, d := range r.data {
		if d.EntityType == entityType && d.EntityID == entityID && d.IsOpen() {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update replaces a stored deadline. Terminal records never regress to open.
func (r *MemoryRepo) Update(ctx context.Context, d Deadline) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[d.ID]
	if !ok {
		return ErrNotFound
	}
	if (existing.Status == StatusCompleted || existing.Status == StatusEscalated) && d.IsOpen() {
		return ErrClosed
	}
	r.data[d.ID] = d
	return nil
}

// Complete marks a deadline fulfilled. Already-completed records are rejected.
func (r *MemoryRepo) Complete(ctx context.Context, deadlineID string, at time.Time) (Deadline, error) {
	if err := ctx.Err(); err != nil {
		return Deadline{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.data[deadlineID]
	if !ok {
		return Deadline{}, ErrNotFound
	}
	if d.Status == StatusCompleted {
		return Deadline{}, ErrClosed
	}
	d.Status = StatusCompleted
	completedAt := at
	d.CompletedAt = &completedAt
	d.UpdatedAt = at
	r.data[deadlineID] = d
	return d, nil
}

// CountOutcomesByActor aggregates deadline outcomes for an actor. Open
// records past their deadline count as breached.
func (r *MemoryRepo) CountOutcomesByActor(ctx context.Context, actorID string, now time.Time) (OutcomeCounts, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeCounts{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var counts OutcomeCounts
	for _, d := range r.data {
		if d.ActorID != actorID {
			continue
		}
		switch {
		case d.Status == StatusCompleted:
			counts.Completed++
		case d.Status == StatusEscalated:
			counts.Escalated++
		case d.IsOpen() && !now.Before(d.DeadlineAt):
			counts.Breached++
		}
	}
	return counts, nil
}

// ListCompletedSince returns deadlines completed at or after the given instant.
func (r *MemoryRepo) ListCompletedSince(ctx context.Context, since time.Time) ([]Deadline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Deadline, 0)
	for _, d := range r.data {
		if d.Status == StatusCompleted && d.CompletedAt != nil && !d.CompletedAt.Before(since) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MemoryRulesRepo is an in-memory implementation of RulesRepo.
type MemoryRulesRepo struct {
	mu   sync.RWMutex
	data map[string]Rule
}

// NewMemoryRulesRepo constructs a MemoryRulesRepo.
func NewMemoryRulesRepo() *MemoryRulesRepo {
	return &MemoryRulesRepo{data: make(map[string]Rule)}
}

// Create stores a rule.
func (r *MemoryRulesRepo) Create(ctx context.Context, rule Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[rule.ID] = rule
	return nil
}

// GetByID returns a rule by id.
func (r *MemoryRulesRepo) GetByID(ctx context.Context, ruleID string) (Rule, error) {
	if err := ctx.Err(); err != nil {
		return Rule{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.data[ruleID]
	if !ok {
		return Rule{}, ErrRuleNotFound
	}
	return rule, nil
}

// List returns all rules, ordered by id.
func (r *MemoryRulesRepo) List(ctx context.Context) ([]Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Rule, 0, len(r.data))
	for _, rule := range r.data {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
