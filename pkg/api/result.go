package api

// StepResult is the outcome of processing a single step submission. It is
// constructed only via StepSuccess and StepFailure and is immutable.
type StepResult struct {
	successful bool
	payload    map[string]any
	err        string
}

// StepSuccess returns a successful result carrying the step's payload.
func StepSuccess(payload map[string]any) StepResult {
	if payload == nil {
		payload = map[string]any{}
	}
	return StepResult{successful: true, payload: payload}
}

// StepFailure returns a failed result with an error message that gets
// surfaced to the user when redirecting back to the step.
func StepFailure(message string) StepResult {
	return StepResult{err: message}
}

// Successful reports whether the step accepted the submission.
func (r StepResult) Successful() bool { return r.successful }

// Payload returns the data to merge into the wizard.
func (r StepResult) Payload() map[string]any { return r.payload }

// Error returns the failure message, or "" for successful results.
func (r StepResult) Error() string { return r.err }

// ActionResult is the outcome of the completion action that runs after the
// last step of a wizard. Same shape as StepResult, but kept separate since
// the two travel through different parts of the machine.
type ActionResult struct {
	successful bool
	payload    map[string]any
	err        string
}

// ActionSuccess returns a successful action result.
func ActionSuccess(payload map[string]any) ActionResult {
	if payload == nil {
		payload = map[string]any{}
	}
	return ActionResult{successful: true, payload: payload}
}

// ActionFailure returns a failed action result with an error message.
func ActionFailure(message string) ActionResult {
	return ActionResult{err: message}
}

// Successful reports whether the action ran to completion.
func (r ActionResult) Successful() bool { return r.successful }

// Get returns a single value from the action's payload.
func (r ActionResult) Get(key string) any { return r.payload[key] }

// Payload returns the action's payload.
func (r ActionResult) Payload() map[string]any { return r.payload }

// Error returns the failure message, or "" for successful results.
func (r ActionResult) Error() string { return r.err }
