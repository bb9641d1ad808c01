package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hollis/gaffer/internal/model"
)

// CreateTask inserts a new task and its agent assignments in one transaction.
// Every id in agentIDs must resolve to a live agent; otherwise
// ErrAgentNotFound is returned and no task row persists.
func (s *SQLiteStore) CreateTask(ctx context.Context, t *model.Task, agentIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := verifyAgentIDs(ctx, tx, agentIDs); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (title, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.Title, t.Description, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("task insert id: %w", err)
	}
	t.ID = id

	if err := insertTaskAgents(ctx, tx, id, agentIDs); err != nil {
		return err
	}

	t.Agents, err = loadTaskAgents(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetTask retrieves a live task by id with its agent assignments embedded.
func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	t := &model.Task{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, status, created_at, updated_at
		FROM tasks WHERE id = ? AND `+aliveClause,
		id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: EntityTask, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	t.Agents, err = loadTaskAgents(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns all live tasks in id order, each with its agent
// assignments embedded.
func (s *SQLiteStore) ListTasks(ctx context.Context) ([]*model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, status, created_at, updated_at
		FROM tasks WHERE `+aliveClause+` ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		t := &model.Task{Agents: []model.AgentSummary{}}
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	// One pass over the join table instead of a query per task.
	byID := make(map[int64]*model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	assignRows, err := s.db.QueryContext(ctx,
		`SELECT ta.task_id, a.id, a.name, a.description
		FROM task_agents ta JOIN agents a ON a.id = ta.agent_id
		ORDER BY ta.task_id, a.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list task agents: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var taskID int64
		var a model.AgentSummary
		if err := assignRows.Scan(&taskID, &a.ID, &a.Name, &a.Description); err != nil {
			return nil, fmt.Errorf("scan task agent: %w", err)
		}
		if t, ok := byID[taskID]; ok {
			t.Agents = append(t.Agents, a)
		}
	}
	if err := assignRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task agents: %w", err)
	}

	return tasks, nil
}

// UpdateTask applies a partial update to a live task and returns the updated
// record. A non-nil agent id list replaces the task's entire authorized set,
// subject to the same verification as creation.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id int64, upd TaskUpdate) (*model.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	t := &model.Task{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, title, description, status, created_at, updated_at
		FROM tasks WHERE id = ? AND `+aliveClause,
		id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: EntityTask, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	if upd.AgentIDs != nil {
		if err := verifyAgentIDs(ctx, tx, upd.AgentIDs); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_agents WHERE task_id = ?`, id); err != nil {
			return nil, fmt.Errorf("clear task agents: %w", err)
		}
		if err := insertTaskAgents(ctx, tx, id, upd.AgentIDs); err != nil {
			return nil, err
		}
	}

	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	t.UpdatedAt = time.Now().UTC()

	if _, err := tx.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Description, t.Status, t.UpdatedAt, id,
	); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	t.Agents, err = loadTaskAgents(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return t, nil
}

// SoftDeleteTask marks a task deleted. Assignments and executions are kept
// for history.
func (s *SQLiteStore) SoftDeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET deleted_at = ? WHERE id = ? AND `+aliveClause,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return &NotFoundError{Entity: EntityTask, ID: id}
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// verifyAgentIDs checks that every id resolves to a distinct live agent.
// Duplicate ids fail the count match and are rejected alongside unknown ones.
// An empty list passes; requiring at least one agent at creation is the
// handler's concern.
func verifyAgentIDs(ctx context.Context, q querier, agentIDs []int64) error {
	if len(agentIDs) == 0 {
		return nil
	}

	args := make([]any, len(agentIDs))
	for i, id := range agentIDs {
		args[i] = id
	}
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM agents WHERE id IN (`+placeholders(len(agentIDs))+`) AND `+aliveClause,
		args...,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("count agents: %w", err)
	}
	if count != len(agentIDs) {
		return ErrAgentNotFound
	}
	return nil
}

func insertTaskAgents(ctx context.Context, tx *sql.Tx, taskID int64, agentIDs []int64) error {
	now := time.Now().UTC()
	for _, agentID := range agentIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO task_agents (task_id, agent_id, assigned_at) VALUES (?, ?, ?)`,
			taskID, agentID, now,
		); err != nil {
			return fmt.Errorf("insert task agent: %w", err)
		}
	}
	return nil
}

// loadTaskAgents returns the task's assigned agents in id order. Assignments
// survive agent soft-deletion, so no alive filter applies here; launching is
// still blocked for deleted agents by the agent existence check.
func loadTaskAgents(ctx context.Context, q querier, taskID int64) ([]model.AgentSummary, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT a.id, a.name, a.description
		FROM task_agents ta JOIN agents a ON a.id = ta.agent_id
		WHERE ta.task_id = ? ORDER BY a.id`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("load task agents: %w", err)
	}
	defer rows.Close()

	agents := []model.AgentSummary{}
	for rows.Next() {
		var a model.AgentSummary
		if err := rows.Scan(&a.ID, &a.Name, &a.Description); err != nil {
			return nil, fmt.Errorf("scan task agent: %w", err)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task agents: %w", err)
	}
	return agents, nil
}
