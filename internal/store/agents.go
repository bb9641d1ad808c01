package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hollis/gaffer/internal/model"
)

// CreateAgent inserts a new agent record and fills in its assigned id.
func (s *SQLiteStore) CreateAgent(ctx context.Context, a *model.Agent) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO agents (name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		a.Name, a.Description, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert agent: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("agent insert id: %w", err)
	}
	a.ID = id
	return nil
}

// GetAgent retrieves a live agent by id.
func (s *SQLiteStore) GetAgent(ctx context.Context, id int64) (*model.Agent, error) {
	a := &model.Agent{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at
		FROM agents WHERE id = ? AND `+aliveClause,
		id,
	).Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: EntityAgent, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}
	return a, nil
}

// ListAgents returns all live agents in id order.
func (s *SQLiteStore) ListAgents(ctx context.Context) ([]*model.Agent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at
		FROM agents WHERE `+aliveClause+` ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []*model.Agent
	for rows.Next() {
		a := &model.Agent{}
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agents: %w", err)
	}
	return agents, nil
}

// UpdateAgent applies a partial update to a live agent and returns the
// updated record.
func (s *SQLiteStore) UpdateAgent(ctx context.Context, id int64, upd AgentUpdate) (*model.Agent, error) {
	a, err := s.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.Description != nil {
		a.Description = *upd.Description
	}
	a.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE agents SET name = ?, description = ?, updated_at = ?
		WHERE id = ? AND `+aliveClause,
		a.Name, a.Description, a.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update agent: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return nil, &NotFoundError{Entity: EntityAgent, ID: id}
	}
	return a, nil
}

// SoftDeleteAgent marks an agent deleted. Deleting an already-deleted agent
// reports not found, since the row no longer resolves.
func (s *SQLiteStore) SoftDeleteAgent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE agents SET deleted_at = ? WHERE id = ? AND `+aliveClause,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return &NotFoundError{Entity: EntityAgent, ID: id}
	}
	return nil
}
