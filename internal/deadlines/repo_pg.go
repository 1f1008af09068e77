package deadlines

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const deadlineColumns = `
id, entity_type, entity_id, actor_id, rule_id, warning_at, deadline_at,
status, reminders_sent, last_reminder_at, breached_at, completed_at,
created_at, updated_at`

// Create inserts a deadline.
func (r *PGRepo) Create(ctx context.Context, d Deadline) error {
	const query = `
INSERT INTO deadlines (
	id, entity_type, entity_id, actor_id, rule_id, warning_at, deadline_at,
	status, reminders_sent, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.ExecContext(ctx, query,
		d.ID,
		d.EntityType,
		d.EntityID,
		d.ActorID,
		d.RuleID,
		d.WarningAt,
		d.DeadlineAt,
		d.Status,
		d.RemindersSent,
		d.CreatedAt,
		d.UpdatedAt,
	)
	return err
}

// GetByID returns a deadline by id.
func (r *PGRepo) GetByID(ctx context.Context, deadlineID string) (Deadline, error) {
	query := `SELECT ` + deadlineColumns + ` FROM deadlines WHERE id = $1`
	d, err := scanDeadline(r.DB.QueryRowContext(ctx, query, deadlineID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Deadline{}, ErrNotFound
		}
		return Deadline{}, err
	}
	return d, nil
}

// ListOpenByEntity returns open deadlines for one entity.
func (r *PGRepo) ListOpenByEntity(ctx context.Context, entityType, entityID string) ([]Deadline, error) {
	query := `SELECT ` + deadlineColumns + `
FROM deadlines
WHERE entity_type = $1 AND entity_id = $2 AND status IN ('active', 'warning_sent')
ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDeadlines(rows)
}

// Update persists the mutable evaluation fields of a deadline. The status
// guard keeps terminal records from regressing.
func (r *PGRepo) Update(ctx context.Context, d Deadline) error {
	const query = `
UPDATE deadlines
SET status = $1, reminders_sent = $2, last_reminder_at = $3, breached_at = $4, updated_at = $5
WHERE id = $6
  AND NOT (status IN ('completed', 'escalated') AND $1 IN ('active', 'warning_sent'))`
	res, err := r.DB.ExecContext(ctx, query,
		d.Status,
		d.RemindersSent,
		nullableTime(d.LastReminderAt),
		nullableTime(d.BreachedAt),
		d.UpdatedAt,
		d.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrClosed
	}
	return nil
}

// Complete marks a deadline fulfilled. Already-completed records are rejected.
func (r *PGRepo) Complete(ctx context.Context, deadlineID string, at time.Time) (Deadline, error) {
	query := `
UPDATE deadlines
SET status = 'completed', completed_at = $1, updated_at = $1
WHERE id = $2 AND status <> 'completed'
RETURNING ` + deadlineColumns
	d, err := scanDeadline(r.DB.QueryRowContext(ctx, query, at, deadlineID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either missing or already completed; disambiguate for the caller.
			if _, getErr := r.GetByID(ctx, deadlineID); getErr != nil {
				return Deadline{}, getErr
			}
			return Deadline{}, ErrClosed
		}
		return Deadline{}, err
	}
	return d, nil
}

// CountOutcomesByActor aggregates deadline outcomes for an actor. Open
// records past their deadline count as breached.
func (r *PGRepo) CountOutcomesByActor(ctx context.Context, actorID string, now time.Time) (OutcomeCounts, error) {
	const query = `
SELECT
	COUNT(*) FILTER (WHERE status = 'completed'),
	COUNT(*) FILTER (WHERE status IN ('active', 'warning_sent') AND deadline_at <= $2),
	COUNT(*) FILTER (WHERE status = 'escalated')
FROM deadlines
WHERE actor_id = $1`
	var counts OutcomeCounts
	err := r.DB.QueryRowContext(ctx, query, actorID, now).Scan(&counts.Completed, &counts.Breached, &counts.Escalated)
	if err != nil {
		return OutcomeCounts{}, err
	}
	return counts, nil
}

// ListCompletedSince returns deadlines completed at or after the given instant.
func (r *PGRepo) ListCompletedSince(ctx context.Context, since time.Time) ([]Deadline, error) {
	query := `SELECT ` + deadlineColumns + `
FROM deadlines
WHERE status = 'completed' AND completed_at >= $1
ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDeadlines(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeadline(row rowScanner) (Deadline, error) {
	var d Deadline
	var lastReminderAt, breachedAt, completedAt sql.NullTime
	err := row.Scan(
		&d.ID,
		&d.EntityType,
		&d.EntityID,
		&d.ActorID,
		&d.RuleID,
		&d.WarningAt,
		&d.DeadlineAt,
		&d.Status,
		&d.RemindersSent,
		&lastReminderAt,
		&breachedAt,
		&completedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return Deadline{}, err
	}
	if lastReminderAt.Valid {
		value := lastReminderAt.Time
		d.LastReminderAt = &value
	}
	if breachedAt.Valid {
		value := breachedAt.Time
		d.BreachedAt = &value
	}
	if completedAt.Valid {
		value := completedAt.Time
		d.CompletedAt = &value
	}
	return d, nil
}

func collectDeadlines(rows *sql.Rows) ([]Deadline, error) {
	var out []Deadline
	for rows.Next() {
		d, err := scanDeadline(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// PGRulesRepo implements RulesRepo using Postgres.
type PGRulesRepo struct {
	DB *sql.DB
}

// Create inserts a rule.
func (r *PGRulesRepo) Create(ctx context.Context, rule Rule) error {
	const query = `
INSERT INTO sla_rules (id, name, entity_type, warning_hours, deadline_hours, deadline_action, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		rule.ID,
		rule.Name,
		rule.EntityType,
		rule.WarningHours,
		rule.DeadlineHours,
		rule.DeadlineAction,
		rule.CreatedAt,
	)
	return err
}

// GetByID returns a rule by id.
func (r *PGRulesRepo) GetByID(ctx context.Context, ruleID string) (Rule, error) {
	const query = `
SELECT id, name, entity_type, warning_hours, deadline_hours, deadline_action, created_at
FROM sla_rules WHERE id = $1`
	var rule Rule
	err := r.DB.QueryRowContext(ctx, query, ruleID).Scan(
		&rule.ID,
		&rule.Name,
		&rule.EntityType,
		&rule.WarningHours,
		&rule.DeadlineHours,
		&rule.DeadlineAction,
		&rule.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Rule{}, ErrRuleNotFound
		}
		return Rule{}, err
	}
	return rule, nil
}

// List returns all rules.
func (r *PGRulesRepo) List(ctx context.Context) ([]Rule, error) {
	const query = `
SELECT id, name, entity_type, warning_hours, deadline_hours, deadline_action, created_at
FROM sla_rules ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rule
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(
			&rule.ID,
			&rule.Name,
			&rule.EntityType,
			&rule.WarningHours,
			&rule.DeadlineHours,
			&rule.DeadlineAction,
			&rule.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}
