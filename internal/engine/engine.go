package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hollis/gaffer/internal/model"
	"github.com/hollis/gaffer/internal/store"
)

// NotAuthorizedError reports a launch attempt by an agent outside the task's
// authorized set.
type NotAuthorizedError struct {
	TaskID  int64
	AgentID int64
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("Agent %d is not authorized to run task %d", e.AgentID, e.TaskID)
}

// Engine orchestrates asynchronous task execution.
type Engine struct {
	store  store.Store
	runner Runner
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewEngine creates a new execution engine.
func NewEngine(s store.Store, r Runner, logger *slog.Logger) *Engine {
	return &Engine{store: s, runner: r, logger: logger}
}

// Launch verifies that the agent is authorized for the task, records a
// running execution, and completes it in a background goroutine. The returned
// execution has status "running"; callers observe the outcome on a later
// read. The goroutine operates on a copy of the execution to avoid data races
// with the caller.
func (e *Engine) Launch(ctx context.Context, taskID, agentID int64) (*model.Execution, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := e.store.GetAgent(ctx, agentID); err != nil {
		return nil, err
	}

	authorized := false
	for _, a := range task.Agents {
		if a.ID == agentID {
			authorized = true
			break
		}
	}
	if !authorized {
		return nil, &NotAuthorizedError{TaskID: taskID, AgentID: agentID}
	}

	exec := &model.Execution{
		TaskID:    taskID,
		AgentID:   agentID,
		Status:    model.StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := e.store.CreateExecution(ctx, exec); err != nil {
		return nil, fmt.Errorf("create execution: %w", err)
	}

	executionsInflight.Inc()
	execCopy := *exec
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.complete(&execCopy)
	}()

	return exec, nil
}

// Wait blocks until all in-flight execution goroutines complete.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// complete runs the execution to its terminal state. It does not take the
// request context: an execution outlives the request that launched it.
func (e *Engine) complete(exec *model.Execution) {
	defer executionsInflight.Dec()

	start := time.Now()
	result, err := e.runner.Run(context.Background(), exec)
	executionDuration.Observe(time.Since(start).Seconds())

	outcome := model.Succeeded(result)
	if err != nil {
		outcome = model.Failed(err.Error())
	}

	if err := e.store.CompleteExecution(context.Background(), exec.ID, outcome); err != nil {
		e.logger.Error("failed to complete execution", "execution_id", exec.ID, "error", err)
		return
	}
	executionsTotal.WithLabelValues(outcome.Status()).Inc()
}
