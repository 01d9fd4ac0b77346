package checkout

// SubmissionStatus tracks an order submission through its pipeline.
type SubmissionStatus string

const (
	StatusIdle                  SubmissionStatus = "IDLE"
	StatusValidating            SubmissionStatus = "VALIDATING"
	StatusPersisting            SubmissionStatus = "PERSISTING"
	StatusDecrementingInventory SubmissionStatus = "DECREMENTING_INVENTORY"
	StatusNotifying             SubmissionStatus = "NOTIFYING"
	StatusCompleted             SubmissionStatus = "COMPLETED"
	StatusFailed                SubmissionStatus = "FAILED"
)

// transitions lists the forward edges of the pipeline. FAILED is reachable
// from every non-terminal state.
var transitions = map[SubmissionStatus]SubmissionStatus{
	StatusIdle:                  StatusValidating,
	StatusValidating:            StatusPersisting,
	StatusPersisting:            StatusDecrementingInventory,
	StatusDecrementingInventory: StatusNotifying,
	StatusNotifying:             StatusCompleted,
}

// CanTransitionTo reports whether the pipeline may move from one status to
// the next.
func CanTransitionTo(from, to SubmissionStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	return transitions[from] == to
}

func (s SubmissionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// String representation (for logging)
func (s SubmissionStatus) String() string {
	return string(s)
}
