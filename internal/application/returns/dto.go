package returns

import (
	"strings"
	"time"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateReturnRequest represents a request to take in a returned item
type CreateReturnRequest struct {
	SourceType     string           `json:"source_type" binding:"required"`
	SourceID       *uuid.UUID       `json:"source_id"`
	ReturnCategory string           `json:"return_category" binding:"required"`
	ReturnReason   string           `json:"return_reason" binding:"max=500"`
	LocationID     uuid.UUID        `json:"location_id" binding:"required"`
	ProductID      uuid.UUID        `json:"product_id" binding:"required"`
	ProductName    string           `json:"product_name" binding:"max=200"`
	Quantity       int              `json:"quantity"`
	ProductValue   decimal.Decimal  `json:"product_value"`
	RefundAmount   *decimal.Decimal `json:"refund_amount"`
	CustomerID     *uuid.UUID       `json:"customer_id"`
	CustomerName   string           `json:"customer_name" binding:"max=200"`
	CustomerPhone  string           `json:"customer_phone" binding:"max=50"`
	CustomerEmail  string           `json:"customer_email" binding:"omitempty,email"`
	Notes          string           `json:"notes" binding:"max=2000"`
	ActorID        uuid.UUID        `json:"-"`
}

// InspectReturnRequest records one inspection pass
type InspectReturnRequest struct {
	ProductCondition   string    `json:"product_condition" binding:"required"`
	InspectionNotes    string    `json:"inspection_notes" binding:"max=2000"`
	RecommendedAction  string    `json:"recommended_action"`
	InspectionComplete bool      `json:"inspection_complete"`
	ActorID            uuid.UUID `json:"-"`
}

// ApproveReturnRequest approves a return with the intended resolution
type ApproveReturnRequest struct {
	ResolutionType string    `json:"resolution_type" binding:"required"`
	ApprovalNotes  string    `json:"approval_notes" binding:"max=2000"`
	ActorID        uuid.UUID `json:"-"`
}

// RejectReturnRequest rejects a return
type RejectReturnRequest struct {
	RejectionReason string    `json:"rejection_reason"`
	RejectionNotes  string    `json:"rejection_notes" binding:"max=2000"`
	ActorID         uuid.UUID `json:"-"`
}

// ProcessReturnRequest executes the resolution of an approved return
type ProcessReturnRequest struct {
	ResolutionType            string           `json:"resolution_type" binding:"required"`
	ResolutionDetails         string           `json:"resolution_details" binding:"max=2000"`
	RefundAmount              *decimal.Decimal `json:"refund_amount"`
	RefundMethod              string           `json:"refund_method"`
	SupplierID                *uuid.UUID       `json:"supplier_id"`
	SupplierReturnReason      string           `json:"supplier_return_reason"`
	SupplierReasonDescription string           `json:"supplier_reason_description" binding:"max=2000"`
	TransferToLocationID      *uuid.UUID       `json:"transfer_to_location_id"`
	ActorID                   uuid.UUID        `json:"-"`
}

// CancelReturnRequest withdraws a return
type CancelReturnRequest struct {
	CancellationReason string    `json:"cancellation_reason"`
	ActorID            uuid.UUID `json:"-"`
}

// payload builds the resolution payload variant that matches the requested resolution
func (r ProcessReturnRequest) payload() (returns.ResolutionPayload, error) {
	switch returns.ResolutionType(r.ResolutionType) {
	case returns.ResolutionRefundProcessed:
		amount := decimal.Zero
		if r.RefundAmount != nil {
			amount = *r.RefundAmount
		}
		return returns.NewRefundPayload(amount, returns.RefundMethod(r.RefundMethod))
	case returns.ResolutionReturnedSupplier:
		supplierID := uuid.Nil
		if r.SupplierID != nil {
			supplierID = *r.SupplierID
		}
		return returns.NewSupplierReturnPayload(supplierID,
			returns.SupplierReturnReason(r.SupplierReturnReason), r.SupplierReasonDescription)
	case returns.ResolutionTransferredWarehouse:
		to := uuid.Nil
		if r.TransferToLocationID != nil {
			to = *r.TransferToLocationID
		}
		return returns.NewTransferPayload(to)
	default:
		return returns.NoPayload{}, nil
	}
}

// ReturnListFilter represents filter options for the return list
type ReturnListFilter struct {
	LocationID     string `form:"location_id"`
	Status         string `form:"status" binding:"omitempty,return_status"`
	ReturnCategory string `form:"return_category" binding:"omitempty,return_category"`
	SourceType     string `form:"source_type" binding:"omitempty,return_source"`
	Search         string `form:"search"`
	DateFrom       string `form:"date_from"`
	DateTo         string `form:"date_to"`
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy        string `form:"order_by"`
	OrderDir       string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StatsQuery scopes stats and analytics
type StatsQuery struct {
	LocationID string `form:"location_id"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
}

func (q StatsQuery) toScope() (returns.StatsScope, error) {
	var scope returns.StatsScope
	var err error
	if scope.LocationID, err = parseOptionalUUID("location_id", q.LocationID); err != nil {
		return scope, err
	}
	if scope.DateFrom, err = parseOptionalDate("date_from", q.DateFrom, false); err != nil {
		return scope, err
	}
	if scope.DateTo, err = parseOptionalDate("date_to", q.DateTo, true); err != nil {
		return scope, err
	}
	if scope.DateFrom != nil && scope.DateTo != nil && scope.DateTo.Before(*scope.DateFrom) {
		return scope, returns.NewValidationError("date_to", "date_to must not be before date_from")
	}
	return scope, nil
}

// Pagination returns the page and page size the list will use
func (f ReturnListFilter) Pagination() (page, pageSize int) {
	d := returns.DefaultReturnFilter()
	page, pageSize = d.Page, d.PageSize
	if f.Page > 0 {
		page = f.Page
	}
	if f.PageSize > 0 {
		pageSize = f.PageSize
	}
	return page, pageSize
}

func (f ReturnListFilter) toDomain() (returns.ReturnFilter, error) {
	filter := returns.DefaultReturnFilter()
	filter.Page, filter.PageSize = f.Pagination()
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = strings.TrimSpace(f.Search)

	scope, err := StatsQuery{LocationID: f.LocationID, DateFrom: f.DateFrom, DateTo: f.DateTo}.toScope()
	if err != nil {
		return filter, err
	}
	filter.LocationID = scope.LocationID
	filter.DateFrom = scope.DateFrom
	filter.DateTo = scope.DateTo

	if f.Status != "" {
		filter.Status = returns.ReturnStatus(f.Status)
		if !filter.Status.IsValid() {
			return filter, returns.NewValidationError("status", "Unknown status: "+f.Status)
		}
	}
	if f.ReturnCategory != "" {
		filter.ReturnCategory = returns.ReturnCategory(f.ReturnCategory)
		if !filter.ReturnCategory.IsValid() {
			return filter, returns.NewValidationError("return_category", "Unknown return category: "+f.ReturnCategory)
		}
	}
	if f.SourceType != "" {
		filter.SourceType = returns.SourceType(f.SourceType)
		if !filter.SourceType.IsValid() {
			return filter, returns.NewValidationError("source_type", "Unknown source type: "+f.SourceType)
		}
	}
	return filter, nil
}

func parseOptionalUUID(field, value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, returns.NewValidationError(field, "Invalid "+field+" format")
	}
	return &id, nil
}

// parseOptionalDate accepts a calendar date or an RFC3339 instant.
// A bare date used as an upper bound covers the whole day.
func parseOptionalDate(field, value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, returns.NewValidationError(field, "Invalid "+field+", expected YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// ReturnResponse represents a return record in API responses
type ReturnResponse struct {
	ID                        uuid.UUID        `json:"id"`
	ReturnNumber              string           `json:"return_number"`
	SourceType                string           `json:"source_type"`
	SourceID                  *uuid.UUID       `json:"source_id,omitempty"`
	ReturnCategory            string           `json:"return_category"`
	ReturnReason              string           `json:"return_reason,omitempty"`
	LocationID                uuid.UUID        `json:"location_id"`
	ProductID                 uuid.UUID        `json:"product_id"`
	ProductName               string           `json:"product_name,omitempty"`
	Quantity                  int              `json:"quantity"`
	ProductValue              decimal.Decimal  `json:"product_value"`
	TotalValue                decimal.Decimal  `json:"total_value"`
	RefundAmount              *decimal.Decimal `json:"refund_amount,omitempty"`
	CustomerID                *uuid.UUID       `json:"customer_id,omitempty"`
	CustomerName              string           `json:"customer_name,omitempty"`
	CustomerPhone             string           `json:"customer_phone,omitempty"`
	CustomerEmail             string           `json:"customer_email,omitempty"`
	RequiresCustomerInfo      bool             `json:"requires_customer_info"`
	Notes                     string           `json:"notes,omitempty"`
	ProductCondition          string           `json:"product_condition,omitempty"`
	InspectionNotes           string           `json:"inspection_notes,omitempty"`
	RecommendedAction         string           `json:"recommended_action,omitempty"`
	SuggestedResolution       string           `json:"suggested_resolution"`
	ResolutionType            string           `json:"resolution_type,omitempty"`
	ResolutionDetails         string           `json:"resolution_details,omitempty"`
	ApprovalNotes             string           `json:"approval_notes,omitempty"`
	RefundMethod              string           `json:"refund_method,omitempty"`
	SupplierID                *uuid.UUID       `json:"supplier_id,omitempty"`
	SupplierReturnReason      string           `json:"supplier_return_reason,omitempty"`
	SupplierReasonDescription string           `json:"supplier_reason_description,omitempty"`
	TransferToLocationID      *uuid.UUID       `json:"transfer_to_location_id,omitempty"`
	ExternalReference         string           `json:"external_reference,omitempty"`
	RejectionReason           string           `json:"rejection_reason,omitempty"`
	RejectionNotes            string           `json:"rejection_notes,omitempty"`
	CancellationReason        string           `json:"cancellation_reason,omitempty"`
	Status                    string           `json:"status"`
	CreatedBy                 uuid.UUID        `json:"created_by"`
	InspectedAt               *time.Time       `json:"inspected_at,omitempty"`
	InspectedBy               *uuid.UUID       `json:"inspected_by,omitempty"`
	ApprovedAt                *time.Time       `json:"approved_at,omitempty"`
	ApprovedBy                *uuid.UUID       `json:"approved_by,omitempty"`
	RejectedAt                *time.Time       `json:"rejected_at,omitempty"`
	RejectedBy                *uuid.UUID       `json:"rejected_by,omitempty"`
	ProcessedAt               *time.Time       `json:"processed_at,omitempty"`
	ProcessedBy               *uuid.UUID       `json:"processed_by,omitempty"`
	CancelledAt               *time.Time       `json:"cancelled_at,omitempty"`
	CancelledBy               *uuid.UUID       `json:"cancelled_by,omitempty"`
	CompletedAt               *time.Time       `json:"completed_at,omitempty"`
	CreatedAt                 time.Time        `json:"created_at"`
	UpdatedAt                 time.Time        `json:"updated_at"`
	Version                   int              `json:"version"`
}

// ReturnListItemResponse represents a return in list responses (less detail)
type ReturnListItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ReturnNumber   string          `json:"return_number"`
	SourceType     string          `json:"source_type"`
	ReturnCategory string          `json:"return_category"`
	LocationID     uuid.UUID       `json:"location_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name,omitempty"`
	Quantity       int             `json:"quantity"`
	TotalValue     decimal.Decimal `json:"total_value"`
	CustomerName   string          `json:"customer_name,omitempty"`
	ResolutionType string          `json:"resolution_type,omitempty"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// InspectionResponse is one entry of the inspection history
type InspectionResponse struct {
	Sequence          int       `json:"sequence"`
	ProductCondition  string    `json:"product_condition"`
	InspectionNotes   string    `json:"inspection_notes"`
	RecommendedAction string    `json:"recommended_action,omitempty"`
	InspectedBy       uuid.UUID `json:"inspected_by"`
	InspectedAt       time.Time `json:"inspected_at"`
}

// AuditEntryResponse is one entry of the audit trail
type AuditEntryResponse struct {
	Sequence   int       `json:"sequence"`
	Action     string    `json:"action"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	ActorID    uuid.UUID `json:"actor_id"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ReturnHistoryResponse bundles the audit trail with the inspection history
type ReturnHistoryResponse struct {
	ReturnID    uuid.UUID            `json:"return_id"`
	Inspections []InspectionResponse `json:"inspections"`
	AuditTrail  []AuditEntryResponse `json:"audit_trail"`
}

// SuggestionResponse carries the advisory resolution for a return
type SuggestionResponse struct {
	ReturnID            uuid.UUID `json:"return_id"`
	SuggestedResolution string    `json:"suggested_resolution"`
	RequiresCustomer    bool      `json:"requires_customer_info"`
}

// ToReturnResponse converts a domain ReturnRecord to its response DTO
func ToReturnResponse(r *returns.ReturnRecord) ReturnResponse {
	return ReturnResponse{
		ID:                        r.ID,
		ReturnNumber:              r.ReturnNumber,
		SourceType:                string(r.SourceType),
		SourceID:                  r.SourceID,
		ReturnCategory:            string(r.ReturnCategory),
		ReturnReason:              r.ReturnReason,
		LocationID:                r.LocationID,
		ProductID:                 r.ProductID,
		ProductName:               r.ProductName,
		Quantity:                  r.Quantity,
		ProductValue:              r.ProductValue,
		TotalValue:                r.TotalValue(),
		RefundAmount:              r.RefundAmount,
		CustomerID:                r.CustomerID,
		CustomerName:              r.CustomerName,
		CustomerPhone:             r.CustomerPhone,
		CustomerEmail:             r.CustomerEmail,
		RequiresCustomerInfo:      r.RequiresCustomerInfo(),
		Notes:                     r.Notes,
		ProductCondition:          string(r.ProductCondition),
		InspectionNotes:           r.InspectionNotes,
		RecommendedAction:         string(r.RecommendedAction),
		SuggestedResolution:       string(r.SuggestedResolution()),
		ResolutionType:            string(r.ResolutionType),
		ResolutionDetails:         r.ResolutionDetails,
		ApprovalNotes:             r.ApprovalNotes,
		RefundMethod:              string(r.RefundMethod),
		SupplierID:                r.SupplierID,
		SupplierReturnReason:      string(r.SupplierReturnReason),
		SupplierReasonDescription: r.SupplierReasonDescription,
		TransferToLocationID:      r.TransferToLocationID,
		ExternalReference:         r.ExternalReference,
		RejectionReason:           r.RejectionReason,
		RejectionNotes:            r.RejectionNotes,
		CancellationReason:        r.CancellationReason,
		Status:                    string(r.Status),
		CreatedBy:                 r.CreatedBy,
		InspectedAt:               r.InspectedAt,
		InspectedBy:               r.InspectedBy,
		ApprovedAt:                r.ApprovedAt,
		ApprovedBy:                r.ApprovedBy,
		RejectedAt:                r.RejectedAt,
		RejectedBy:                r.RejectedBy,
		ProcessedAt:               r.ProcessedAt,
		ProcessedBy:               r.ProcessedBy,
		CancelledAt:               r.CancelledAt,
		CancelledBy:               r.CancelledBy,
		CompletedAt:               r.CompletedAt,
		CreatedAt:                 r.CreatedAt,
		UpdatedAt:                 r.UpdatedAt,
		Version:                   r.Version,
	}
}

// ToReturnListItemResponses converts a slice of domain returns to list responses
func ToReturnListItemResponses(records []returns.ReturnRecord) []ReturnListItemResponse {
	responses := make([]ReturnListItemResponse, len(records))
	for i := range records {
		r := &records[i]
		responses[i] = ReturnListItemResponse{
			ID:             r.ID,
			ReturnNumber:   r.ReturnNumber,
			SourceType:     string(r.SourceType),
			ReturnCategory: string(r.ReturnCategory),
			LocationID:     r.LocationID,
			ProductID:      r.ProductID,
			ProductName:    r.ProductName,
			Quantity:       r.Quantity,
			TotalValue:     r.TotalValue(),
			CustomerName:   r.CustomerName,
			ResolutionType: string(r.ResolutionType),
			Status:         string(r.Status),
			CreatedAt:      r.CreatedAt,
			UpdatedAt:      r.UpdatedAt,
		}
	}
	return responses
}

// ToReturnHistoryResponse converts the record's history rows
func ToReturnHistoryResponse(r *returns.ReturnRecord) ReturnHistoryResponse {
	resp := ReturnHistoryResponse{
		ReturnID:    r.ID,
		Inspections: make([]InspectionResponse, len(r.Inspections)),
		AuditTrail:  make([]AuditEntryResponse, len(r.AuditTrail)),
	}
	for i, in := range r.Inspections {
		resp.Inspections[i] = InspectionResponse{
			Sequence:          in.Sequence,
			ProductCondition:  string(in.Condition),
			InspectionNotes:   in.Notes,
			RecommendedAction: string(in.RecommendedAction),
			InspectedBy:       in.InspectedBy,
			InspectedAt:       in.InspectedAt,
		}
	}
	for i, e := range r.AuditTrail {
		resp.AuditTrail[i] = AuditEntryResponse{
			Sequence:   e.Sequence,
			Action:     string(e.Action),
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			ActorID:    e.ActorID,
			Note:       e.Note,
			OccurredAt: e.OccurredAt,
		}
	}
	return resp
}
