package returns

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction names the operation that produced an audit entry
type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionInspect  AuditAction = "INSPECT"
	AuditActionApprove  AuditAction = "APPROVE"
	AuditActionReject   AuditAction = "REJECT"
	AuditActionProcess  AuditAction = "PROCESS"
	AuditActionComplete AuditAction = "COMPLETE"
	AuditActionCancel   AuditAction = "CANCEL"
)

// AuditEntry is one row of the append-only audit trail
type AuditEntry struct {
	ID         uuid.UUID
	ReturnID   uuid.UUID
	Sequence   int
	Action     AuditAction
	FromStatus ReturnStatus
	ToStatus   ReturnStatus
	ActorID    uuid.UUID
	Note       string
	OccurredAt time.Time
}

// InspectionEntry is one inspection pass. Entries are never edited.
type InspectionEntry struct {
	ID                uuid.UUID
	ReturnID          uuid.UUID
	Sequence          int
	Condition         ProductCondition
	Notes             string
	RecommendedAction RecommendedAction
	InspectedBy       uuid.UUID
	InspectedAt       time.Time
}

func (r *ReturnRecord) appendAudit(action AuditAction, from, to ReturnStatus, actor uuid.UUID, note string, at time.Time) {
	r.AuditTrail = append(r.AuditTrail, AuditEntry{
		ID:         uuid.New(),
		ReturnID:   r.ID,
		Sequence:   len(r.AuditTrail) + 1,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actor,
		Note:       note,
		OccurredAt: at,
	})
}

// LatestInspection returns the most recent inspection, if any
func (r *ReturnRecord) LatestInspection() (InspectionEntry, bool) {
	if len(r.Inspections) == 0 {
		return InspectionEntry{}, false
	}
	return r.Inspections[len(r.Inspections)-1], true
}
