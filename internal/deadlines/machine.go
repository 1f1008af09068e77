package deadlines

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pipeline-backend/internal/actors"
	"pipeline-backend/internal/notify"
	"pipeline-backend/internal/shared/metrics"
	"pipeline-backend/internal/shared/telemetry"
)

// Action is the transition the state machine decided on for one deadline.
type Action int

const (
	ActionNone Action = iota
	ActionWarn
	ActionRemindNow
	ActionEscalateNow
)

// String returns the action name for logs.
func (a Action) String() string {
	switch a {
	case ActionWarn:
		return "warn"
	case ActionRemindNow:
		return "remind"
	case ActionEscalateNow:
		return "escalate"
	default:
		return "none"
	}
}

// Decide returns the transition for a deadline at the given instant. It is a
// pure function: all timing comes from now, never from the wall clock.
func Decide(d Deadline, rule Rule, now time.Time) Action {
	if !d.IsOpen() {
		return ActionNone
	}
	if !now.Before(d.DeadlineAt) {
		if rule.DeadlineAction == ActionEscalate {
			return ActionEscalateNow
		}
		return ActionRemindNow
	}
	if d.Status == StatusActive && !now.Before(d.WarningAt) {
		return ActionWarn
	}
	return ActionNone
}

// Result describes what happened to one deadline during an evaluation pass.
type Result struct {
	Deadline Deadline
	Action   Action
}

// Machine advances deadlines through their lifecycle, emitting notification
// side effects. Status mutations are persisted before notifications are
// attempted, so a failing sink never blocks a transition.
type Machine struct {
	Deadlines Repo
	Rules     RulesRepo
	Actors    actors.Repo
	Notifier  notify.Notifier
}

// ProcessEntity evaluates every open deadline attached to an entity. A
// failure on one record is logged and skipped; the remaining records are
// still processed.
func (m *Machine) ProcessEntity(ctx context.Context, entityType, entityID string, now time.Time) ([]Result, error) {
	open, err := m.Deadlines.ListOpenByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list open deadlines: %w", err)
	}

	results := make([]Result, 0, len(open))
	for _, d := range open {
		result, err := m.process(ctx, d, now)
		if err != nil {
			telemetry.Error("sla.deadline.failed", map[string]any{
				"deadline_id": d.ID,
				"entity_type": d.EntityType,
				"entity_id":   d.EntityID,
				"error":       err.Error(),
			})
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

func (m *Machine) process(ctx context.Context, d Deadline, now time.Time) (Result, error) {
	rule, err := m.Rules.GetByID(ctx, d.RuleID)
	if err != nil {
		return Result{}, fmt.Errorf("load rule %s: %w", d.RuleID, err)
	}

	action := Decide(d, rule, now)
	switch action {
	case ActionWarn:
		return m.applyWarn(ctx, d, rule, now)
	case ActionRemindNow:
		return m.applyRemind(ctx, d, rule, now)
	case ActionEscalateNow:
		return m.applyEscalate(ctx, d, rule, now)
	default:
		return Result{Deadline: d, Action: ActionNone}, nil
	}
}

func (m *Machine) applyWarn(ctx context.Context, d Deadline, rule Rule, now time.Time) (Result, error) {
	d.Status = StatusWarningSent
	reminderAt := now
	d.LastReminderAt = &reminderAt
	d.UpdatedAt = now
	if err := m.Deadlines.Update(ctx, d); err != nil {
		return Result{}, fmt.Errorf("persist warning: %w", err)
	}
	metrics.IncDeadlineWarned()

	remaining := d.DeadlineAt.Sub(now).Round(time.Minute)
	m.send(ctx, notify.Notification{
		ID:          uuid.NewString(),
		RecipientID: d.ActorID,
		Category:    notify.CategorySLAWarning,
		Title:       fmt.Sprintf("%s due soon", rule.Name),
		Message:     fmt.Sprintf("%s is due in %s.", rule.Name, remaining),
		EntityType:  d.EntityType,
		EntityID:    d.EntityID,
		CreatedAt:   now,
	})
	return Result{Deadline: d, Action: ActionWarn}, nil
}

func (m *Machine) applyRemind(ctx context.Context, d Deadline, rule Rule, now time.Time) (Result, error) {
	// Status stays in place; the reminder loop has no cap.
	d.RemindersSent++
	reminderAt := now
	d.LastReminderAt = &reminderAt
	d.UpdatedAt = now
	if err := m.Deadlines.Update(ctx, d); err != nil {
		return Result{}, fmt.Errorf("persist reminder: %w", err)
	}
	metrics.IncDeadlineReminded()

	overdue := now.Sub(d.DeadlineAt).Round(time.Minute)
	m.send(ctx, notify.Notification{
		ID:          uuid.NewString(),
		RecipientID: d.ActorID,
		Category:    notify.CategorySLAOverdue,
		Title:       fmt.Sprintf("%s overdue", rule.Name),
		Message:     fmt.Sprintf("%s is overdue by %s. Reminder %d.", rule.Name, overdue, d.RemindersSent),
		EntityType:  d.EntityType,
		EntityID:    d.EntityID,
		CreatedAt:   now,
	})
	return Result{Deadline: d, Action: ActionRemindNow}, nil
}

func (m *Machine) applyEscalate(ctx context.Context, d Deadline, rule Rule, now time.Time) (Result, error) {
	d.Status = StatusEscalated
	breachedAt := now
	d.BreachedAt = &breachedAt
	d.UpdatedAt = now
	if err := m.Deadlines.Update(ctx, d); err != nil {
		return Result{}, fmt.Errorf("persist escalation: %w", err)
	}
	metrics.IncDeadlineEscalated()

	adminIDs, err := m.Actors.ListAdminIDs(ctx)
	if err != nil {
		telemetry.Error("sla.escalation.broadcast_lookup_failed", map[string]any{
			"deadline_id": d.ID,
			"error":       err.Error(),
		})
		adminIDs = nil
	}
	for _, adminID := range adminIDs {
		m.send(ctx, notify.Notification{
			ID:          uuid.NewString(),
			RecipientID: adminID,
			Category:    notify.CategorySLAEscalation,
			Title:       fmt.Sprintf("%s breached", rule.Name),
			Message:     fmt.Sprintf("%s for %s %s was not fulfilled by %s (responsible: %s).", rule.Name, d.EntityType, d.EntityID, d.DeadlineAt.UTC().Format(time.RFC3339), d.ActorID),
			EntityType:  d.EntityType,
			EntityID:    d.EntityID,
			CreatedAt:   now,
		})
	}
	return Result{Deadline: d, Action: ActionEscalateNow}, nil
}

func (m *Machine) send(ctx context.Context, n notify.Notification) {
	if m.Notifier == nil {
		return
	}
	if err := m.Notifier.Send(ctx, n); err != nil {
		metrics.IncNotificationFailed()
		telemetry.Error("notification.send_failed", map[string]any{
			"notification_id": n.ID,
			"recipient_id":    n.RecipientID,
			"category":        n.Category,
			"error":           err.Error(),
		})
		return
	}
	metrics.IncNotificationSent()
}
