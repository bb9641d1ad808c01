package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hollis/gaffer/internal/model"
)

// Runner performs the actual work of an execution and reports the result
// text, or an error when the work fails.
type Runner interface {
	Run(ctx context.Context, exec *model.Execution) (string, error)
}

// SimulatedRunner stands in for real agent dispatch: it waits a fixed delay
// and reports success.
type SimulatedRunner struct {
	Delay time.Duration
}

func (r SimulatedRunner) Run(ctx context.Context, exec *model.Execution) (string, error) {
	select {
	case <-time.After(r.Delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return fmt.Sprintf("Task %d completed successfully by agent %d", exec.TaskID, exec.AgentID), nil
}
