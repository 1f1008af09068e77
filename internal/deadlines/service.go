package deadlines

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for rules and obligations. Fulfillment is
// the external mutation path: the engine itself never completes a deadline.
type Service struct {
	Deadlines Repo
	Rules     RulesRepo
}

// CreateRule validates and stores an SLA rule. Misconfigured windows are
// rejected here, never at evaluation time.
func (s *Service) CreateRule(ctx context.Context, rule Rule) (Rule, error) {
	if strings.TrimSpace(rule.Name) == "" {
		return Rule{}, ErrInvalidInput
	}
	if rule.WarningHours <= 0 || rule.DeadlineHours <= 0 {
		return Rule{}, ErrInvalidRule
	}
	if rule.WarningHours >= rule.DeadlineHours {
		return Rule{}, ErrInvalidRule
	}
	switch rule.DeadlineAction {
	case ActionRemind, ActionEscalate:
	case "":
		rule.DeadlineAction = ActionRemind
	default:
		return Rule{}, fmt.Errorf("%w: unknown deadline action %q", ErrInvalidInput, rule.DeadlineAction)
	}
	if rule.EntityType == "" {
		rule.EntityType = EntitySubmission
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}

	if err := s.Rules.Create(ctx, rule); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// ListRules returns all configured rules.
func (s *Service) ListRules(ctx context.Context) ([]Rule, error) {
	return s.Rules.List(ctx)
}

// StartObligation opens a deadline for an entity under a rule, anchored at
// the given start instant.
func (s *Service) StartObligation(ctx context.Context, entityType, entityID, actorID, ruleID string, startedAt time.Time) (Deadline, error) {
	if entityID == "" || actorID == "" {
		return Deadline{}, ErrInvalidInput
	}
	rule, err := s.Rules.GetByID(ctx, ruleID)
	if err != nil {
		return Deadline{}, err
	}
	if entityType == "" {
		entityType = rule.EntityType
	}

	d := Deadline{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		RuleID:     rule.ID,
		WarningAt:  startedAt.Add(time.Duration(rule.WarningHours) * time.Hour),
		DeadlineAt: startedAt.Add(time.Duration(rule.DeadlineHours) * time.Hour),
		Status:     StatusActive,
		CreatedAt:  startedAt,
		UpdatedAt:  startedAt,
	}
	if err := s.Deadlines.Create(ctx, d); err != nil {
		return Deadline{}, err
	}
	return d, nil
}

// Complete marks an obligation fulfilled. Any status may move to completed,
// except a record that is already completed.
func (s *Service) Complete(ctx context.Context, deadlineID string, at time.Time) (Deadline, error) {
	return s.Deadlines.Complete(ctx, deadlineID, at)
}
