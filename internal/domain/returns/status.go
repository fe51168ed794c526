package returns

// ReturnStatus represents the lifecycle status of a return record
type ReturnStatus string

const (
	StatusReceived        ReturnStatus = "RECEIVED"
	StatusInspecting      ReturnStatus = "INSPECTING"
	StatusPendingApproval ReturnStatus = "PENDING_APPROVAL"
	StatusApproved        ReturnStatus = "APPROVED"
	StatusRejected        ReturnStatus = "REJECTED"
	StatusProcessing      ReturnStatus = "PROCESSING"
	StatusCompleted       ReturnStatus = "COMPLETED"
	StatusCancelled       ReturnStatus = "CANCELLED"
	StatusReplacementSent ReturnStatus = "REPLACEMENT_SENT"
)

// transitionTable lists the legal edges of the lifecycle graph.
// Self edges on INSPECTING and PENDING_APPROVAL are re-inspections.
var transitionTable = map[ReturnStatus][]ReturnStatus{
	StatusReceived:        {StatusInspecting, StatusPendingApproval, StatusRejected, StatusCancelled},
	StatusInspecting:      {StatusInspecting, StatusPendingApproval, StatusApproved, StatusRejected, StatusCancelled},
	StatusPendingApproval: {StatusPendingApproval, StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:        {StatusProcessing},
	StatusProcessing:      {StatusCompleted, StatusReplacementSent},
}

// AllStatuses lists every status in lifecycle order
func AllStatuses() []ReturnStatus {
	return []ReturnStatus{
		StatusReceived, StatusInspecting, StatusPendingApproval, StatusApproved,
		StatusProcessing, StatusCompleted, StatusReplacementSent, StatusRejected, StatusCancelled,
	}
}

func (s ReturnStatus) IsValid() bool {
	switch s {
	case StatusReceived, StatusInspecting, StatusPendingApproval, StatusApproved, StatusRejected,
		StatusProcessing, StatusCompleted, StatusCancelled, StatusReplacementSent:
		return true
	}
	return false
}

func (s ReturnStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s ReturnStatus) IsTerminal() bool {
	return s.IsValid() && len(transitionTable[s]) == 0
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	for _, next := range transitionTable[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsDecided reports whether an approver has ruled on the return
func (s ReturnStatus) IsDecided() bool {
	switch s {
	case StatusApproved, StatusProcessing, StatusCompleted, StatusReplacementSent, StatusRejected:
		return true
	}
	return false
}
