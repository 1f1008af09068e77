package engine

import (
	"context"
	"errors"
	"time"

	sharedredis "pipeline-backend/internal/shared/redis"
	"pipeline-backend/internal/shared/telemetry"
)

// RunLockKey names the cycle lock shared by worker replicas.
const RunLockKey = "evaluation-cycle"

// Lock is a held cycle lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker hands out cycle locks. A nil Locker on the Runner bypasses locking
// for single-process setups.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Runner drives evaluation cycles on behalf of the worker: take the run
// lock, run one cycle, release. A cycle skipped because another replica
// holds the lock is not an error.
type Runner struct {
	Engine  *Service
	Locker  Locker
	LockTTL time.Duration
}

// RunCycle executes one guarded cycle. The bool reports whether the cycle
// actually ran.
func (r *Runner) RunCycle(ctx context.Context, now time.Time) (Summary, bool, error) {
	if r.Locker != nil {
		lock, err := r.Locker.Acquire(ctx, RunLockKey, r.LockTTL)
		if err != nil {
			if errors.Is(err, sharedredis.ErrLockNotAcquired) {
				telemetry.Info("engine.cycle.skipped", map[string]any{"reason": "lock held elsewhere"})
				return Summary{}, false, nil
			}
			return Summary{}, false, err
		}
		defer func() {
			if err := lock.Release(context.Background()); err != nil {
				telemetry.Warn("engine.cycle.unlock_failed", map[string]any{"error": err.Error()})
			}
		}()
	}

	summary, err := r.Engine.EvaluateAll(ctx, now)
	return summary, true, err
}

// RedisLocker adapts the shared redis locker to the Locker interface.
type RedisLocker struct {
	Inner *sharedredis.Locker
}

// Acquire takes the lock via redis.
func (l RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	return l.Inner.Acquire(ctx, key, ttl)
}
