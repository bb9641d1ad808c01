// Package engine provides the asynchronous task execution engine. It
// enforces the task's authorized agent set at launch, records executions in
// the store, and drives each one to a terminal state in a background
// goroutine via the configured runner.
package engine
