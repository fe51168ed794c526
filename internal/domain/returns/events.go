package returns

import (
	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeReturnRecord is the aggregate type carried on every return event
const AggregateTypeReturnRecord = "ReturnRecord"

// Event type constants for ReturnRecord
const (
	EventTypeReturnCreated   = "ReturnCreated"
	EventTypeReturnInspected = "ReturnInspected"
	EventTypeReturnApproved  = "ReturnApproved"
	EventTypeReturnRejected  = "ReturnRejected"
	EventTypeReturnProcessed = "ReturnProcessed"
	EventTypeReturnCancelled = "ReturnCancelled"
)

// LifecycleEventTypes lists every event type raised by ReturnRecord
func LifecycleEventTypes() []string {
	return []string{
		EventTypeReturnCreated, EventTypeReturnInspected, EventTypeReturnApproved,
		EventTypeReturnRejected, EventTypeReturnProcessed, EventTypeReturnCancelled,
	}
}

// ReturnSnapshot is the part of a record every lifecycle event carries
type ReturnSnapshot struct {
	ReturnID       uuid.UUID      `json:"return_id"`
	ReturnNumber   string         `json:"return_number"`
	LocationID     uuid.UUID      `json:"location_id"`
	SourceType     SourceType     `json:"source_type"`
	ReturnCategory ReturnCategory `json:"return_category"`
	FromStatus     ReturnStatus   `json:"from_status,omitempty"`
	Status         ReturnStatus   `json:"status"`
}

// LifecycleEvent is implemented by all return events
type LifecycleEvent interface {
	shared.DomainEvent
	Snapshot() ReturnSnapshot
}

func snapshotOf(r *ReturnRecord, from ReturnStatus) ReturnSnapshot {
	return ReturnSnapshot{
		ReturnID:       r.ID,
		ReturnNumber:   r.ReturnNumber,
		LocationID:     r.LocationID,
		SourceType:     r.SourceType,
		ReturnCategory: r.ReturnCategory,
		FromStatus:     from,
		Status:         r.Status,
	}
}

// ReturnCreatedEvent is raised when a return is taken in
type ReturnCreatedEvent struct {
	shared.BaseDomainEvent
	ReturnSnapshot
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     int             `json:"quantity"`
	ProductValue decimal.Decimal `json:"product_value"`
	CreatedBy    uuid.UUID       `json:"created_by"`
}

func NewReturnCreatedEvent(r *ReturnRecord) *ReturnCreatedEvent {
	return &ReturnCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnCreated, AggregateTypeReturnRecord, r.ID),
		ReturnSnapshot:  snapshotOf(r, ""),
		ProductID:       r.ProductID,
		Quantity:        r.Quantity,
		ProductValue:    r.ProductValue,
		CreatedBy:       r.CreatedBy,
	}
}

func (e *ReturnCreatedEvent) Snapshot() ReturnSnapshot { return e.ReturnSnapshot }

// ReturnInspectedEvent is raised for every inspection pass
type ReturnInspectedEvent struct {
	shared.BaseDomainEvent
	ReturnSnapshot
	Condition         ProductCondition  `json:"product_condition"`
	RecommendedAction RecommendedAction `json:"recommended_action,omitempty"`
	InspectionCount   int               `json:"inspection_count"`
}

func NewReturnInspectedEvent(r *ReturnRecord, from ReturnStatus) *ReturnInspectedEvent {
	return &ReturnInspectedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeReturnInspected, AggregateTypeReturnRecord, r.ID),
		ReturnSnapshot:    snapshotOf(r, from),
		Condition:         r.ProductCondition,
		RecommendedAction: r.RecommendedAction,
		InspectionCount:   len(r.Inspections),
	}
}

func (e *ReturnInspectedEvent) Snapshot() ReturnSnapshot { return e.ReturnSnapshot }

// ReturnApprovedEvent is raised when an approver accepts the return
type ReturnApprovedEvent struct {
	shared.BaseDomainEvent
	ReturnSnapshot
	ResolutionType ResolutionType `json:"resolution_type"`
	ApprovedBy     uuid.UUID      `json:"approved_by"`
}

func NewReturnApprovedEvent(r *ReturnRecord, from ReturnStatus) *ReturnApprovedEvent {
	e := &ReturnApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnApproved, AggregateTypeReturnRecord, r.ID),
		ReturnSnapshot:  snapshotOf(r, from),
		ResolutionType:  r.ResolutionType,
	}
	if r.ApprovedBy != nil {
		e.ApprovedBy = *r.ApprovedBy
	}
	return e
}

func (e *ReturnApprovedEvent) Snapshot() ReturnSnapshot { return e.ReturnSnapshot }

// ReturnRejectedEvent is raised when an approver refuses the return
type ReturnRejectedEvent struct {
	shared.BaseDomainEvent
	ReturnSnapshot
	RejectionReason string `json:"rejection_reason"`
}

func NewReturnRejectedEvent(r *ReturnRecord, from ReturnStatus) *ReturnRejectedEvent {
	return &ReturnRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRejected, AggregateTypeReturnRecord, r.ID),
		ReturnSnapshot:  snapshotOf(r, from),
		RejectionReason: r.RejectionReason,
	}
}

func (e *ReturnRejectedEvent) Snapshot() ReturnSnapshot { return e.ReturnSnapshot }

// ReturnProcessedEvent is raised once the resolution side effect has been dispatched
type ReturnProcessedEvent struct {
	shared.BaseDomainEvent
	ReturnSnapshot
	ResolutionType    ResolutionType   `json:"resolution_type"`
	RefundAmount      *decimal.Decimal `json:"refund_amount,omitempty"`
	TotalValue        decimal.Decimal  `json:"total_value"`
	ExternalReference string           `json:"external_reference,omitempty"`
	ProcessingSeconds float64          `json:"processing_seconds"`
}

func NewReturnProcessedEvent(r *ReturnRecord) *ReturnProcessedEvent {
	e := &ReturnProcessedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeReturnProcessed, AggregateTypeReturnRecord, r.ID),
		ReturnSnapshot:    snapshotOf(r, StatusApproved),
		ResolutionType:    r.ResolutionType,
		RefundAmount:      r.RefundAmount,
		TotalValue:        r.TotalValue(),
		ExternalReference: r.ExternalReference,
	}
	if r.CompletedAt != nil {
		e.ProcessingSeconds = r.CompletedAt.Sub(r.CreatedAt).Seconds()
	}
	return e
}

func (e *ReturnProcessedEvent) Snapshot() ReturnSnapshot { return e.ReturnSnapshot }

// ReturnCancelledEvent is raised when a return is withdrawn
type ReturnCancelledEvent struct {
	shared.BaseDomainEvent
	ReturnSnapshot
	CancellationReason string `json:"cancellation_reason"`
}

func NewReturnCancelledEvent(r *ReturnRecord, from ReturnStatus) *ReturnCancelledEvent {
	return &ReturnCancelledEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeReturnCancelled, AggregateTypeReturnRecord, r.ID),
		ReturnSnapshot:     snapshotOf(r, from),
		CancellationReason: r.CancellationReason,
	}
}

func (e *ReturnCancelledEvent) Snapshot() ReturnSnapshot { return e.ReturnSnapshot }
