package workflows

// Status values mirrored from the SharePoint model; kept as strings so the table has no internal imports.
const (
	StatusPendingApproval = "pending_approval"
	StatusPending         = "pending"
	StatusInProgress      = "in_progress"
	StatusCompleted       = "completed"
	StatusRejected        = "rejected"
	StatusDisapproved     = "disapproved"
)

// StateMachine enforces SharePoint status transitions
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewStateMachine creates a new state machine with allowed transitions
func NewStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			StatusPendingApproval: {StatusPending, StatusRejected},
			StatusPending:         {StatusInProgress, StatusCompleted, StatusDisapproved},
			StatusInProgress:      {StatusCompleted, StatusDisapproved},
			StatusCompleted:       {},
			StatusRejected:        {StatusPendingApproval}, // relaunch
			StatusDisapproved:     {StatusPendingApproval}, // relaunch
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}
