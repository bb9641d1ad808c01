package model

// Task and execution status constants. Tasks may hold any of the four;
// executions are created running and end completed or failed.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// validTransitions maps each execution status to the set of statuses it may
// transition to. Completed and failed are terminal.
var validTransitions = map[string]map[string]bool{
	StatusRunning: {
		StatusCompleted: true,
		StatusFailed:    true,
	},
}

// ValidTransition reports whether transitioning an execution from one status
// to another is allowed.
func ValidTransition(from, to string) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// ValidTaskStatus reports whether s is one of the recognized task statuses.
func ValidTaskStatus(s string) bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}
