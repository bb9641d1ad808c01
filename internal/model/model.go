package model

import "time"

// User is an account that may authenticate against the API. The password is
// stored only as a bcrypt hash, and a set deleted_at marker excludes the
// account from every lookup.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// Agent is a named executor that can be assigned to tasks and run executions.
type Agent struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

// AgentSummary is the compact agent shape embedded in task responses.
type AgentSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Task is a unit of work owning the set of agents authorized to execute it.
type Task struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	Agents      []AgentSummary `json:"agents"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   *time.Time     `json:"-"`
}

// Execution is one attempt to run a task by an agent. It is created running
// and reaches exactly one terminal state; exactly one of Result and
// ErrorMessage is set once terminal. Executions are immutable history and are
// never soft-deleted.
type Execution struct {
	ID           int64      `json:"id"`
	TaskID       int64      `json:"task_id"`
	AgentID      int64      `json:"agent_id"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	Result       *string    `json:"result"`
	ErrorMessage *string    `json:"error_message"`
}
