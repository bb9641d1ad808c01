package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/hollis/gaffer/internal/model"
)

// ErrNotFound is the base error for lookups that resolve to no live record.
// Use errors.As with *NotFoundError to recover the entity and id.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when an execution status transition is not
// allowed, including a second terminal write to an already-terminal execution.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrUserExists is returned when a username or email is already taken.
var ErrUserExists = errors.New("user already exists")

// ErrAgentNotFound is returned when a task's agent id list references agents
// that do not exist or are deleted.
var ErrAgentNotFound = errors.New("one or more agent ids do not exist")

// Entity names carried by NotFoundError, capitalized as they appear in
// client-facing messages.
const (
	EntityAgent     = "Agent"
	EntityTask      = "Task"
	EntityExecution = "Execution"
)

// NotFoundError reports that an id did not resolve to a live record of the
// named entity. It matches ErrNotFound under errors.Is.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AgentUpdate holds the optional fields of a partial agent update. Nil fields
// are left unchanged.
type AgentUpdate struct {
	Name        *string
	Description *string
}

// TaskUpdate holds the optional fields of a partial task update. Nil fields
// are left unchanged; a non-nil AgentIDs fully replaces the task's
// authorized-agent set.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	AgentIDs    []int64
}

// Store defines the persistence operations for users, agents, tasks,
// task-agent assignments, and executions.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetActiveUserByUsername(ctx context.Context, username string) (*model.User, error)

	CreateAgent(ctx context.Context, a *model.Agent) error
	GetAgent(ctx context.Context, id int64) (*model.Agent, error)
	ListAgents(ctx context.Context) ([]*model.Agent, error)
	UpdateAgent(ctx context.Context, id int64, upd AgentUpdate) (*model.Agent, error)
	SoftDeleteAgent(ctx context.Context, id int64) error

	CreateTask(ctx context.Context, t *model.Task, agentIDs []int64) error
	GetTask(ctx context.Context, id int64) (*model.Task, error)
	ListTasks(ctx context.Context) ([]*model.Task, error)
	UpdateTask(ctx context.Context, id int64, upd TaskUpdate) (*model.Task, error)
	SoftDeleteTask(ctx context.Context, id int64) error

	CreateExecution(ctx context.Context, e *model.Execution) error
	GetExecution(ctx context.Context, id int64) (*model.Execution, error)
	ListExecutions(ctx context.Context) ([]*model.Execution, error)
	ListExecutionsByStatus(ctx context.Context, status string) ([]*model.Execution, error)
	CompleteExecution(ctx context.Context, id int64, outcome model.Outcome) error

	Ping(ctx context.Context) error
	Close() error
}
