package model

// Outcome is the terminal result of an execution: success carrying a result
// string, or failure carrying an error message. The zero value is pending
// (not terminal) and is rejected by the store's terminal write. Keeping the
// two payloads behind one tag guarantees at most one of them is ever set.
type Outcome struct {
	status string
	detail string
}

// Succeeded returns a completed outcome carrying the result string.
func Succeeded(result string) Outcome {
	return Outcome{status: StatusCompleted, detail: result}
}

// Failed returns a failed outcome carrying the error message.
func Failed(errMsg string) Outcome {
	return Outcome{status: StatusFailed, detail: errMsg}
}

// Status returns the terminal status this outcome lands the execution in,
// or "" for the pending zero value.
func (o Outcome) Status() string {
	return o.status
}

// Result returns the result string for a completed outcome, nil otherwise.
func (o Outcome) Result() *string {
	if o.status != StatusCompleted {
		return nil
	}
	return &o.detail
}

// ErrorMessage returns the error message for a failed outcome, nil otherwise.
func (o Outcome) ErrorMessage() *string {
	if o.status != StatusFailed {
		return nil
	}
	return &o.detail
}
