package deadlines

import "time"

// Deadline statuses. A deadline never regresses from escalated or completed
// within the engine.
const (
	StatusActive      = "active"
	StatusWarningSent = "warning_sent"
	StatusEscalated   = "escalated"
	StatusCompleted   = "completed"
)

// Actions taken when a deadline passes unfulfilled.
const (
	ActionRemind   = "remind"
	ActionEscalate = "escalate"
)

// Entity types a deadline can target.
const (
	EntitySubmission = "submission"
)

// Rule is static configuration describing an obligation class. It is
// immutable at evaluation time.
type Rule struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	EntityType     string    `json:"entityType"`
	WarningHours   int       `json:"warningHours"`
	DeadlineHours  int       `json:"deadlineHours"`
	DeadlineAction string    `json:"deadlineAction"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Deadline is one timed obligation tied to a rule, entity, and responsible
// actor. Invariant: WarningAt < DeadlineAt.
type Deadline struct {
	ID             string     `json:"id"`
	EntityType     string     `json:"entityType"`
	EntityID       string     `json:"entityId"`
	ActorID        string     `json:"actorId"`
	RuleID         string     `json:"ruleId"`
	WarningAt      time.Time  `json:"warningAt"`
	DeadlineAt     time.Time  `json:"deadlineAt"`
	Status         string     `json:"status"`
	RemindersSent  int        `json:"remindersSent"`
	LastReminderAt *time.Time `json:"lastReminderAt,omitempty"`
	BreachedAt     *time.Time `json:"breachedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// IsOpen reports whether the deadline still awaits fulfillment.
func (d Deadline) IsOpen() bool {
	return d.Status == StatusActive || d.Status == StatusWarningSent
}

// IsBreached reports whether the deadline passed unfulfilled. Overdue
// remind-loop deadlines count as breached even though their status stays in
// place.
func (d Deadline) IsBreached(now time.Time) bool {
	if d.Status == StatusEscalated {
		return true
	}
	return d.IsOpen() && !now.Before(d.DeadlineAt)
}

// OutcomeCounts aggregates historical deadline outcomes for one actor.
type OutcomeCounts struct {
	Completed int
	Breached  int
	Escalated int
}

// Total returns the denominator for compliance math.
func (c OutcomeCounts) Total() int {
	return c.Completed + c.Breached + c.Escalated
}
