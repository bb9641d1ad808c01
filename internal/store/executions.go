package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hollis/gaffer/internal/model"
)

// CreateExecution inserts a new execution record. The caller sets status and
// started_at; completion fields begin NULL.
func (s *SQLiteStore) CreateExecution(ctx context.Context, e *model.Execution) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO executions (task_id, agent_id, status, started_at)
		VALUES (?, ?, ?, ?)`,
		e.TaskID, e.AgentID, e.Status, e.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("execution insert id: %w", err)
	}
	e.ID = id
	return nil
}

// GetExecution retrieves an execution by id. Executions are history and are
// never soft-deleted.
func (s *SQLiteStore) GetExecution(ctx context.Context, id int64) (*model.Execution, error) {
	e := &model.Execution{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, task_id, agent_id, status, started_at, completed_at, result, error_message
		FROM executions WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.TaskID, &e.AgentID, &e.Status, &e.StartedAt, &e.CompletedAt, &e.Result, &e.ErrorMessage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: EntityExecution, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get execution: %w", err)
	}
	return e, nil
}

// ListExecutions returns all executions in id order.
func (s *SQLiteStore) ListExecutions(ctx context.Context) ([]*model.Execution, error) {
	return s.queryExecutions(ctx,
		`SELECT id, task_id, agent_id, status, started_at, completed_at, result, error_message
		FROM executions ORDER BY id`,
	)
}

// ListExecutionsByStatus returns all executions with the given status in
// id order.
func (s *SQLiteStore) ListExecutionsByStatus(ctx context.Context, status string) ([]*model.Execution, error) {
	return s.queryExecutions(ctx,
		`SELECT id, task_id, agent_id, status, started_at, completed_at, result, error_message
		FROM executions WHERE status = ? ORDER BY id`,
		status,
	)
}

func (s *SQLiteStore) queryExecutions(ctx context.Context, query string, args ...any) ([]*model.Execution, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var executions []*model.Execution
	for rows.Next() {
		e := &model.Execution{}
		if err := rows.Scan(&e.ID, &e.TaskID, &e.AgentID, &e.Status, &e.StartedAt, &e.CompletedAt, &e.Result, &e.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		executions = append(executions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate executions: %w", err)
	}
	return executions, nil
}

// CompleteExecution moves a running execution to its terminal outcome. The
// status guard in the UPDATE makes the transition atomic: once an execution
// leaves running, no second completion can land.
func (s *SQLiteStore) CompleteExecution(ctx context.Context, id int64, outcome model.Outcome) error {
	if !model.ValidTransition(model.StatusRunning, outcome.Status()) {
		return fmt.Errorf("%w: running -> %s", ErrInvalidTransition, outcome.Status())
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE executions SET status = ?, completed_at = ?, result = ?, error_message = ?
		WHERE id = ? AND status = ?`,
		outcome.Status(), time.Now().UTC(), outcome.Result(), outcome.ErrorMessage(), id, model.StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("complete execution: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// Zero rows means either the execution does not exist or it already
	// left the running state. Distinguish for the caller.
	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM executions WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check execution: %w", err)
	}
	if exists == 0 {
		return &NotFoundError{Entity: EntityExecution, ID: id}
	}
	return fmt.Errorf("%w: execution %d is not running", ErrInvalidTransition, id)
}
