package notify

import (
	"context"
	"sync"
)

// MemoryRecorder records notifications in memory. Used in tests and as the
// sink of last resort when no broker is configured.
type MemoryRecorder struct {
	mu   sync.Mutex
	sent []Notification

	// FailWith, when set, is returned by Send without recording.
	FailWith error
}

// NewMemoryRecorder constructs a MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Send records the notification.
func (r *MemoryRecorder) Send(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	r.sent = append(r.sent, n)
	return nil
}

// Sent returns a copy of recorded notifications.
func (r *MemoryRecorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.sent))
	copy(out, r.sent)
	return out
}

// Reset clears recorded notifications.
func (r *MemoryRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
