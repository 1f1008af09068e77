package actors

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts an actor.
func (r *PGRepo) Create(ctx context.Context, actor Actor) error {
	const query = `
INSERT INTO actors (id, name, role, created_at)
VALUES ($1, $2, $3, $4)`
	_, err := r.DB.ExecContext(ctx, query, actor.ID, actor.Name, actor.Role, actor.CreatedAt)
	return err
}

// GetByID returns an actor by id.
func (r *PGRepo) GetByID(ctx context.Context, actorID string) (Actor, error) {
	const query = `
SELECT id, name, role, created_at FROM actors WHERE id = $1`
	var actor Actor
	err := r.DB.QueryRowContext(ctx, query, actorID).Scan(&actor.ID, &actor.Name, &actor.Role, &actor.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Actor{}, ErrNotFound
		}
		return Actor{}, err
	}
	return actor, nil
}

// ListAdminIDs returns ids of all actors with the admin role.
func (r *PGRepo) ListAdminIDs(ctx context.Context) ([]string, error) {
	const query = `
SELECT id FROM actors WHERE role = $1 ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query, RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
