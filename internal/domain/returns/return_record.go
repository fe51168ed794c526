package returns

import (
	"net/mail"
	"strings"
	"time"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// nowFunc is the clock used for audit stamps
var nowFunc = time.Now

// ReturnRecord is the aggregate root for a single returned item
type ReturnRecord struct {
	shared.BaseAggregateRoot
	ReturnNumber string

	SourceType     SourceType
	SourceID       *uuid.UUID
	ReturnCategory ReturnCategory
	ReturnReason   string

	LocationID   uuid.UUID
	ProductID    uuid.UUID
	ProductName  string
	Quantity     int
	ProductValue decimal.Decimal
	RefundAmount *decimal.Decimal

	CustomerID    *uuid.UUID
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Notes         string

	ProductCondition  ProductCondition
	InspectionNotes   string
	RecommendedAction RecommendedAction

	ResolutionType            ResolutionType
	ResolutionDetails         string
	ApprovalNotes             string
	RefundMethod              RefundMethod
	SupplierID                *uuid.UUID
	SupplierReturnReason      SupplierReturnReason
	SupplierReasonDescription string
	TransferToLocationID      *uuid.UUID
	ExternalReference         string

	RejectionReason    string
	RejectionNotes     string
	CancellationReason string

	Status ReturnStatus

	CreatedBy   uuid.UUID
	InspectedAt *time.Time
	InspectedBy *uuid.UUID
	ApprovedAt  *time.Time
	ApprovedBy  *uuid.UUID
	RejectedAt  *time.Time
	RejectedBy  *uuid.UUID
	ProcessedAt *time.Time
	ProcessedBy *uuid.UUID
	CancelledAt *time.Time
	CancelledBy *uuid.UUID
	CompletedAt *time.Time

	Inspections []InspectionEntry
	AuditTrail  []AuditEntry
}

// CreateInput holds the intake data for a new return
type CreateInput struct {
	ReturnNumber   string
	SourceType     SourceType
	SourceID       *uuid.UUID
	ReturnCategory ReturnCategory
	ReturnReason   string
	LocationID     uuid.UUID
	ProductID      uuid.UUID
	ProductName    string
	Quantity       int
	ProductValue   decimal.Decimal
	RefundAmount   *decimal.Decimal
	CustomerID     *uuid.UUID
	CustomerName   string
	CustomerPhone  string
	CustomerEmail  string
	Notes          string
	CreatedBy      uuid.UUID
}

// NewReturnRecord validates intake data and creates a record in RECEIVED status
func NewReturnRecord(in CreateInput) (*ReturnRecord, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	now := nowFunc()
	r := &ReturnRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		ReturnNumber:      in.ReturnNumber,
		SourceType:        in.SourceType,
		SourceID:          in.SourceID,
		ReturnCategory:    in.ReturnCategory,
		ReturnReason:      strings.TrimSpace(in.ReturnReason),
		LocationID:        in.LocationID,
		ProductID:         in.ProductID,
		ProductName:       strings.TrimSpace(in.ProductName),
		Quantity:          in.Quantity,
		ProductValue:      in.ProductValue,
		RefundAmount:      in.RefundAmount,
		CustomerID:        in.CustomerID,
		CustomerName:      strings.TrimSpace(in.CustomerName),
		CustomerPhone:     strings.TrimSpace(in.CustomerPhone),
		CustomerEmail:     strings.TrimSpace(in.CustomerEmail),
		Notes:             in.Notes,
		Status:            StatusReceived,
		CreatedBy:         in.CreatedBy,
	}
	r.appendAudit(AuditActionCreate, "", StatusReceived, in.CreatedBy, "", now)

	r.AddDomainEvent(NewReturnCreatedEvent(r))
	return r, nil
}

func validateCreate(in CreateInput) error {
	if strings.TrimSpace(in.ReturnNumber) == "" {
		return NewValidationError("return_number", "Return number cannot be empty")
	}
	if !in.SourceType.IsValid() {
		return NewValidationError("source_type", "Unknown source type: "+string(in.SourceType))
	}
	if !in.ReturnCategory.IsValid() {
		return NewValidationError("return_category", "Unknown return category: "+string(in.ReturnCategory))
	}
	if in.ProductID == uuid.Nil {
		return NewValidationError("product_id", "Product is required")
	}
	if in.LocationID == uuid.Nil {
		return NewValidationError("location_id", "Location is required")
	}
	if in.Quantity <= 0 {
		return NewValidationError("quantity", "Quantity must be greater than zero")
	}
	if in.ProductValue.LessThanOrEqual(decimal.Zero) {
		return NewValidationError("product_value", "Product value must be greater than zero")
	}
	if in.CreatedBy == uuid.Nil {
		return NewValidationError("created_by", "Creator is required")
	}
	if in.SourceType == SourceTypeSale && (in.SourceID == nil || *in.SourceID == uuid.Nil) {
		return NewValidationError("source_id", "Sale returns must reference the original sale")
	}
	if in.RefundAmount != nil {
		if in.SourceType != SourceTypeSale {
			return NewValidationError("refund_amount", "Refund amount is only allowed for sale returns")
		}
		if in.RefundAmount.LessThanOrEqual(decimal.Zero) {
			return NewValidationError("refund_amount", "Refund amount must be greater than zero")
		}
	}
	if RequiresCustomerInfo(in.SourceType, in.ReturnCategory) {
		if strings.TrimSpace(in.CustomerName) == "" {
			return NewValidationError("customer_name", "Customer name is required for this return type")
		}
		if strings.TrimSpace(in.CustomerPhone) == "" {
			return NewValidationError("customer_phone", "Customer phone is required for this return type")
		}
	}
	if email := strings.TrimSpace(in.CustomerEmail); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return NewValidationError("customer_email", "Customer email is not a valid address")
		}
	}
	return nil
}

// InspectInput carries one inspection pass
type InspectInput struct {
	Condition         ProductCondition
	Notes             string
	RecommendedAction RecommendedAction
	Complete          bool
	InspectorID       uuid.UUID
}

// Inspect records an inspection pass. Re-inspection is allowed until a
// decision is made; a record already in PENDING_APPROVAL stays there.
func (r *ReturnRecord) Inspect(in InspectInput) error {
	if r.Status != StatusReceived && r.Status != StatusInspecting && r.Status != StatusPendingApproval {
		return NewIllegalTransitionError("inspect", r.Status)
	}
	if !in.Condition.IsValid() {
		return NewValidationError("product_condition", "Product condition is required")
	}
	notes := strings.TrimSpace(in.Notes)
	if notes == "" {
		return NewValidationError("inspection_notes", "Inspection notes are required")
	}
	if in.RecommendedAction != "" && !in.RecommendedAction.IsValid() {
		return NewValidationError("recommended_action", "Unknown recommended action: "+string(in.RecommendedAction))
	}
	if in.InspectorID == uuid.Nil {
		return NewValidationError("inspected_by", "Inspector is required")
	}

	target := StatusInspecting
	if in.Complete || r.Status == StatusPendingApproval {
		target = StatusPendingApproval
	}
	if !r.Status.CanTransitionTo(target) {
		return NewIllegalTransitionError("inspect", r.Status)
	}

	now := nowFunc()
	from := r.Status
	r.ProductCondition = in.Condition
	r.InspectionNotes = notes
	r.RecommendedAction = in.RecommendedAction
	r.Status = target
	stamp(&r.InspectedAt, &r.InspectedBy, now, in.InspectorID)
	r.Inspections = append(r.Inspections, InspectionEntry{
		ID:                uuid.New(),
		ReturnID:          r.ID,
		Sequence:          len(r.Inspections) + 1,
		Condition:         in.Condition,
		Notes:             notes,
		RecommendedAction: in.RecommendedAction,
		InspectedBy:       in.InspectorID,
		InspectedAt:       now,
	})
	r.appendAudit(AuditActionInspect, from, target, in.InspectorID, notes, now)
	r.UpdatedAt = now

	r.AddDomainEvent(NewReturnInspectedEvent(r, from))
	return nil
}

// Approve records the approver's decision and intended resolution.
// No physical side effect happens until Process.
func (r *ReturnRecord) Approve(resolution ResolutionType, notes string, approverID uuid.UUID) error {
	if r.Status == StatusReceived || !r.Status.CanTransitionTo(StatusApproved) {
		return NewIllegalTransitionError("approve", r.Status)
	}
	if resolution == "" {
		return NewValidationError("resolution_type", "Resolution type is required")
	}
	if !resolution.IsApprovalResolution() {
		return NewValidationError("resolution_type", "Unknown resolution type: "+string(resolution))
	}
	if approverID == uuid.Nil {
		return NewValidationError("approved_by", "Approver is required")
	}

	now := nowFunc()
	from := r.Status
	r.Status = StatusApproved
	r.ResolutionType = resolution
	r.ApprovalNotes = strings.TrimSpace(notes)
	stamp(&r.ApprovedAt, &r.ApprovedBy, now, approverID)
	r.appendAudit(AuditActionApprove, from, StatusApproved, approverID, r.ApprovalNotes, now)
	r.UpdatedAt = now

	r.AddDomainEvent(NewReturnApprovedEvent(r, from))
	return nil
}

// Reject ends the lifecycle with one of the offered rejection reasons
func (r *ReturnRecord) Reject(reason, notes string, rejecterID uuid.UUID) error {
	if !r.Status.CanTransitionTo(StatusRejected) {
		return NewIllegalTransitionError("reject", r.Status)
	}
	reason = strings.TrimSpace(reason)
	notes = strings.TrimSpace(notes)
	if reason == "" {
		return NewValidationError("rejection_reason", "Rejection reason is required")
	}
	if !IsKnownRejectionReason(reason) {
		return NewValidationError("rejection_reason", "Unknown rejection reason: "+reason)
	}
	if reason == RejectionOther && notes == "" {
		return NewValidationError("rejection_notes", "Notes are required when the rejection reason is Other")
	}
	if rejecterID == uuid.Nil {
		return NewValidationError("rejected_by", "Rejecter is required")
	}

	now := nowFunc()
	from := r.Status
	r.Status = StatusRejected
	r.RejectionReason = reason
	r.RejectionNotes = notes
	stamp(&r.RejectedAt, &r.RejectedBy, now, rejecterID)
	r.appendAudit(AuditActionReject, from, StatusRejected, rejecterID, reason, now)
	r.UpdatedAt = now

	r.AddDomainEvent(NewReturnRejectedEvent(r, from))
	return nil
}

// ProcessInput selects the resolution to execute and its payload
type ProcessInput struct {
	Resolution  ResolutionType
	Details     string
	Payload     ResolutionPayload
	ProcessorID uuid.UUID
}

// ValidateProcess runs every Process guard without touching the record
func (r *ReturnRecord) ValidateProcess(in ProcessInput) error {
	if !r.Status.CanTransitionTo(StatusProcessing) {
		return NewIllegalTransitionError("process", r.Status)
	}
	if in.Resolution == "" {
		return NewValidationError("resolution_type", "Resolution type is required")
	}
	if !in.Resolution.IsProcessingResolution() {
		return NewValidationError("resolution_type", "Resolution "+string(in.Resolution)+" cannot be processed")
	}
	if strings.TrimSpace(in.Details) == "" {
		return NewValidationError("resolution_details", "Resolution details are required")
	}
	if in.ProcessorID == uuid.Nil {
		return NewValidationError("processed_by", "Processor is required")
	}

	payload := in.Payload
	if payload == nil {
		payload = NoPayload{}
	}
	if want := requiredPayload[in.Resolution]; payload.Kind() != want {
		return NewValidationError(payloadField(want, payload.Kind()),
			"Resolution "+string(in.Resolution)+" requires a "+string(want)+" payload")
	}

	switch p := payload.(type) {
	case RefundPayload:
		if r.SourceType != SourceTypeSale {
			return NewValidationError("resolution_type", "Refunds are only available for sale returns")
		}
		if r.SourceID == nil {
			return NewValidationError("source_id", "Refund requires the original sale reference")
		}
		if p.Amount.LessThanOrEqual(decimal.Zero) {
			return NewValidationError("refund_amount", "Refund amount must be greater than zero")
		}
		if p.Method == "" {
			return NewValidationError("refund_method", "Refund method is required")
		}
	case SupplierReturnPayload:
		if p.SupplierID == uuid.Nil {
			return NewValidationError("supplier_id", "Supplier is required for a supplier return")
		}
		if p.Reason == "" {
			return NewValidationError("supplier_return_reason", "Supplier return reason is required")
		}
	case TransferPayload:
		if p.ToLocationID == uuid.Nil {
			return NewValidationError("transfer_to_location_id", "Destination location is required for a transfer")
		}
		if p.ToLocationID == r.LocationID {
			return NewValidationError("transfer_to_location_id", "Destination must differ from the current location")
		}
	}

	if in.Resolution == ResolutionWarrantyReplacement && r.ResolutionType != ResolutionWarrantyReplacement {
		return NewValidationError("resolution_type", "Warranty replacement must be approved as WARRANTY_REPLACEMENT")
	}
	return nil
}

// payloadField names the request field most likely missing for a payload mismatch
func payloadField(want, got PayloadKind) string {
	switch want {
	case PayloadRefund:
		return "refund_amount"
	case PayloadSupplierReturn:
		return "supplier_id"
	case PayloadTransfer:
		return "transfer_to_location_id"
	}
	switch got {
	case PayloadRefund:
		return "refund_amount"
	case PayloadSupplierReturn:
		return "supplier_id"
	case PayloadTransfer:
		return "transfer_to_location_id"
	}
	return "resolution_type"
}

// BeginProcessing moves an approved record to PROCESSING and applies the payload.
// The caller dispatches the side effect and then calls CompleteProcessing; if the
// dispatch fails the caller discards this in-memory state.
func (r *ReturnRecord) BeginProcessing(in ProcessInput) error {
	if err := r.ValidateProcess(in); err != nil {
		return err
	}
	payload := in.Payload
	if payload == nil {
		payload = NoPayload{}
	}

	now := nowFunc()
	from := r.Status
	r.Status = StatusProcessing
	r.ResolutionType = in.Resolution
	r.ResolutionDetails = strings.TrimSpace(in.Details)
	r.RefundAmount = nil
	r.RefundMethod = ""

	switch p := payload.(type) {
	case RefundPayload:
		amount := p.Amount
		r.RefundAmount = &amount
		r.RefundMethod = p.Method
	case SupplierReturnPayload:
		supplierID := p.SupplierID
		r.SupplierID = &supplierID
		r.SupplierReturnReason = p.Reason
		r.SupplierReasonDescription = p.Description
	case TransferPayload:
		to := p.ToLocationID
		r.TransferToLocationID = &to
	}

	stamp(&r.ProcessedAt, &r.ProcessedBy, now, in.ProcessorID)
	r.appendAudit(AuditActionProcess, from, StatusProcessing, in.ProcessorID, r.ResolutionDetails, now)
	r.UpdatedAt = now
	return nil
}

// CompleteProcessing finishes a dispatched resolution. Warranty replacements end
// in REPLACEMENT_SENT, everything else in COMPLETED.
func (r *ReturnRecord) CompleteProcessing(externalReference string) error {
	target := StatusCompleted
	if r.ResolutionType == ResolutionWarrantyReplacement {
		target = StatusReplacementSent
	}
	if r.Status != StatusProcessing || !r.Status.CanTransitionTo(target) {
		return NewIllegalTransitionError("complete", r.Status)
	}

	now := nowFunc()
	r.Status = target
	r.ExternalReference = externalReference
	if r.CompletedAt == nil {
		r.CompletedAt = &now
	}
	var actor uuid.UUID
	if r.ProcessedBy != nil {
		actor = *r.ProcessedBy
	}
	r.appendAudit(AuditActionComplete, StatusProcessing, target, actor, externalReference, now)
	r.UpdatedAt = now

	r.AddDomainEvent(NewReturnProcessedEvent(r))
	return nil
}

// Cancel withdraws a return before any decision has been made
func (r *ReturnRecord) Cancel(reason string, actorID uuid.UUID) error {
	if !r.Status.CanTransitionTo(StatusCancelled) {
		return NewIllegalTransitionError("cancel", r.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewValidationError("cancellation_reason", "Cancellation reason is required")
	}
	if actorID == uuid.Nil {
		return NewValidationError("cancelled_by", "Actor is required")
	}

	now := nowFunc()
	from := r.Status
	r.Status = StatusCancelled
	r.CancellationReason = reason
	stamp(&r.CancelledAt, &r.CancelledBy, now, actorID)
	r.appendAudit(AuditActionCancel, from, StatusCancelled, actorID, reason, now)
	r.UpdatedAt = now

	r.AddDomainEvent(NewReturnCancelledEvent(r, from))
	return nil
}

// TotalValue returns productValue multiplied by quantity
func (r *ReturnRecord) TotalValue() decimal.Decimal {
	return r.ProductValue.Mul(decimal.NewFromInt(int64(r.Quantity)))
}

// RequiresCustomerInfo applies the customer rule to this record
func (r *ReturnRecord) RequiresCustomerInfo() bool {
	return RequiresCustomerInfo(r.SourceType, r.ReturnCategory)
}

// IdempotencyKey is the stable key handed to collaborators for a resolution attempt
func (r *ReturnRecord) IdempotencyKey(resolution ResolutionType) string {
	return r.ID.String() + ":" + string(resolution)
}

// stamp writes an audit pair once; later calls keep the original values
func stamp(at **time.Time, by **uuid.UUID, now time.Time, actor uuid.UUID) {
	if *at != nil {
		return
	}
	t := now
	a := actor
	*at = &t
	*by = &a
}
