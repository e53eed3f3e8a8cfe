package checkout

type State string

const (
	StateIdle                 State = "IDLE"
	StateAwaitingConfirmation State = "AWAITING_CONFIRMATION"
	StateSubmitting           State = "SUBMITTING"
	StateCompleted            State = "COMPLETED"
	StateFailed               State = "FAILED"
)

// String representation (for logging)
func (s State) String() string {
	return string(s)
}

// editable reports whether the live session may change in this state.
func (s State) editable() bool {
	return s != StateSubmitting
}
