package models

import (
	"time"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnRecordModel is the persistence model for the ReturnRecord aggregate root.
type ReturnRecordModel struct {
	AggregateModel
	ReturnNumber string `gorm:"type:varchar(20);not null;uniqueIndex"`

	SourceType     returns.SourceType     `gorm:"type:varchar(20);not null;index"`
	SourceID       *uuid.UUID             `gorm:"type:uuid"`
	ReturnCategory returns.ReturnCategory `gorm:"type:varchar(30);not null;index"`
	ReturnReason   string                 `gorm:"type:text"`

	LocationID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductName  string           `gorm:"type:varchar(255)"`
	Quantity     int              `gorm:"not null"`
	ProductValue decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	RefundAmount *decimal.Decimal `gorm:"type:decimal(18,4)"`

	CustomerID    *uuid.UUID `gorm:"type:uuid"`
	CustomerName  string     `gorm:"type:varchar(200)"`
	CustomerPhone string     `gorm:"type:varchar(50);index"`
	CustomerEmail string     `gorm:"type:varchar(200)"`
	Notes         string     `gorm:"type:text"`

	ProductCondition  returns.ProductCondition  `gorm:"type:varchar(20)"`
	InspectionNotes   string                    `gorm:"type:text"`
	RecommendedAction returns.RecommendedAction `gorm:"type:varchar(10)"`

	ResolutionType            returns.ResolutionType       `gorm:"type:varchar(30);index"`
	ResolutionDetails         string                       `gorm:"type:text"`
	ApprovalNotes             string                       `gorm:"type:text"`
	RefundMethod              returns.RefundMethod         `gorm:"type:varchar(20)"`
	SupplierID                *uuid.UUID                   `gorm:"type:uuid"`
	SupplierReturnReason      returns.SupplierReturnReason `gorm:"type:varchar(20)"`
	SupplierReasonDescription string                       `gorm:"type:text"`
	TransferToLocationID      *uuid.UUID                   `gorm:"type:uuid"`
	ExternalReference         string                       `gorm:"type:varchar(100)"`

	RejectionReason    string `gorm:"type:varchar(100)"`
	RejectionNotes     string `gorm:"type:text"`
	CancellationReason string `gorm:"type:text"`

	Status returns.ReturnStatus `gorm:"type:varchar(20);not null;index"`

	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null"`
	InspectedAt *time.Time
	InspectedBy *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt  *time.Time
	ApprovedBy  *uuid.UUID `gorm:"type:uuid"`
	RejectedAt  *time.Time
	RejectedBy  *uuid.UUID `gorm:"type:uuid"`
	ProcessedAt *time.Time
	ProcessedBy *uuid.UUID `gorm:"type:uuid"`
	CancelledAt *time.Time
	CancelledBy *uuid.UUID `gorm:"type:uuid"`
	CompletedAt *time.Time

	Inspections []InspectionModel `gorm:"foreignKey:ReturnID;references:ID"`
	AuditTrail  []AuditEntryModel `gorm:"foreignKey:ReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (ReturnRecordModel) TableName() string {
	return "return_records"
}

// ToDomain converts the persistence model to a domain ReturnRecord.
// History slices are always non-nil so callers can range them directly.
func (m *ReturnRecordModel) ToDomain() *returns.ReturnRecord {
	r := &returns.ReturnRecord{
		BaseAggregateRoot:         m.ToDomainAggregateRoot(),
		ReturnNumber:              m.ReturnNumber,
		SourceType:                m.SourceType,
		SourceID:                  m.SourceID,
		ReturnCategory:            m.ReturnCategory,
		ReturnReason:              m.ReturnReason,
		LocationID:                m.LocationID,
		ProductID:                 m.ProductID,
		ProductName:               m.ProductName,
		Quantity:                  m.Quantity,
		ProductValue:              m.ProductValue,
		RefundAmount:              m.RefundAmount,
		CustomerID:                m.CustomerID,
		CustomerName:              m.CustomerName,
		CustomerPhone:             m.CustomerPhone,
		CustomerEmail:             m.CustomerEmail,
		Notes:                     m.Notes,
		ProductCondition:          m.ProductCondition,
		InspectionNotes:           m.InspectionNotes,
		RecommendedAction:         m.RecommendedAction,
		ResolutionType:            m.ResolutionType,
		ResolutionDetails:         m.ResolutionDetails,
		ApprovalNotes:             m.ApprovalNotes,
		RefundMethod:              m.RefundMethod,
		SupplierID:                m.SupplierID,
		SupplierReturnReason:      m.SupplierReturnReason,
		SupplierReasonDescription: m.SupplierReasonDescription,
		TransferToLocationID:      m.TransferToLocationID,
		ExternalReference:         m.ExternalReference,
		RejectionReason:           m.RejectionReason,
		RejectionNotes:            m.RejectionNotes,
		CancellationReason:        m.CancellationReason,
		Status:                    m.Status,
		CreatedBy:                 m.CreatedBy,
		InspectedAt:               m.InspectedAt,
		InspectedBy:               m.InspectedBy,
		ApprovedAt:                m.ApprovedAt,
		ApprovedBy:                m.ApprovedBy,
		RejectedAt:                m.RejectedAt,
		RejectedBy:                m.RejectedBy,
		ProcessedAt:               m.ProcessedAt,
		ProcessedBy:               m.ProcessedBy,
		CancelledAt:               m.CancelledAt,
		CancelledBy:               m.CancelledBy,
		CompletedAt:               m.CompletedAt,
		Inspections:               make([]returns.InspectionEntry, len(m.Inspections)),
		AuditTrail:                make([]returns.AuditEntry, len(m.AuditTrail)),
	}
	for i := range m.Inspections {
		r.Inspections[i] = m.Inspections[i].ToDomain()
	}
	for i := range m.AuditTrail {
		r.AuditTrail[i] = m.AuditTrail[i].ToDomain()
	}
	return r
}

// FromDomain populates the persistence model from a domain ReturnRecord
func (m *ReturnRecordModel) FromDomain(r *returns.ReturnRecord) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.ReturnNumber = r.ReturnNumber
	m.SourceType = r.SourceType
	m.SourceID = r.SourceID
	m.ReturnCategory = r.ReturnCategory
	m.ReturnReason = r.ReturnReason
	m.LocationID = r.LocationID
	m.ProductID = r.ProductID
	m.ProductName = r.ProductName
	m.Quantity = r.Quantity
	m.ProductValue = r.ProductValue
	m.RefundAmount = r.RefundAmount
	m.CustomerID = r.CustomerID
	m.CustomerName = r.CustomerName
	m.CustomerPhone = r.CustomerPhone
	m.CustomerEmail = r.CustomerEmail
	m.Notes = r.Notes
	m.ProductCondition = r.ProductCondition
	m.InspectionNotes = r.InspectionNotes
	m.RecommendedAction = r.RecommendedAction
	m.ResolutionType = r.ResolutionType
	m.ResolutionDetails = r.ResolutionDetails
	m.ApprovalNotes = r.ApprovalNotes
	m.RefundMethod = r.RefundMethod
	m.SupplierID = r.SupplierID
	m.SupplierReturnReason = r.SupplierReturnReason
	m.SupplierReasonDescription = r.SupplierReasonDescription
	m.TransferToLocationID = r.TransferToLocationID
	m.ExternalReference = r.ExternalReference
	m.RejectionReason = r.RejectionReason
	m.RejectionNotes = r.RejectionNotes
	m.CancellationReason = r.CancellationReason
	m.Status = r.Status
	m.CreatedBy = r.CreatedBy
	m.InspectedAt = r.InspectedAt
	m.InspectedBy = r.InspectedBy
	m.ApprovedAt = r.ApprovedAt
	m.ApprovedBy = r.ApprovedBy
	m.RejectedAt = r.RejectedAt
	m.RejectedBy = r.RejectedBy
	m.ProcessedAt = r.ProcessedAt
	m.ProcessedBy = r.ProcessedBy
	m.CancelledAt = r.CancelledAt
	m.CancelledBy = r.CancelledBy
	m.CompletedAt = r.CompletedAt

	m.Inspections = make([]InspectionModel, len(r.Inspections))
	for i := range r.Inspections {
		m.Inspections[i].FromDomain(r.Inspections[i])
	}
	m.AuditTrail = make([]AuditEntryModel, len(r.AuditTrail))
	for i := range r.AuditTrail {
		m.AuditTrail[i].FromDomain(r.AuditTrail[i])
	}
}

// ReturnRecordModelFromDomain creates a new persistence model from a domain ReturnRecord
func ReturnRecordModelFromDomain(r *returns.ReturnRecord) *ReturnRecordModel {
	m := &ReturnRecordModel{}
	m.FromDomain(r)
	return m
}

// UpdateColumns lists the mutable columns written by an optimistic save.
// Identity, intake and creator columns never change after Create.
func (m *ReturnRecordModel) UpdateColumns() map[string]any {
	return map[string]any{
		"refund_amount":               m.RefundAmount,
		"product_condition":           m.ProductCondition,
		"inspection_notes":            m.InspectionNotes,
		"recommended_action":          m.RecommendedAction,
		"resolution_type":             m.ResolutionType,
		"resolution_details":          m.ResolutionDetails,
		"approval_notes":              m.ApprovalNotes,
		"refund_method":               m.RefundMethod,
		"supplier_id":                 m.SupplierID,
		"supplier_return_reason":      m.SupplierReturnReason,
		"supplier_reason_description": m.SupplierReasonDescription,
		"transfer_to_location_id":     m.TransferToLocationID,
		"external_reference":          m.ExternalReference,
		"rejection_reason":            m.RejectionReason,
		"rejection_notes":             m.RejectionNotes,
		"cancellation_reason":         m.CancellationReason,
		"status":                      m.Status,
		"inspected_at":                m.InspectedAt,
		"inspected_by":                m.InspectedBy,
		"approved_at":                 m.ApprovedAt,
		"approved_by":                 m.ApprovedBy,
		"rejected_at":                 m.RejectedAt,
		"rejected_by":                 m.RejectedBy,
		"processed_at":                m.ProcessedAt,
		"processed_by":                m.ProcessedBy,
		"cancelled_at":                m.CancelledAt,
		"cancelled_by":                m.CancelledBy,
		"completed_at":                m.CompletedAt,
		"updated_at":                  m.UpdatedAt,
	}
}

// InspectionModel is one append-only inspection pass
type InspectionModel struct {
	ID                uuid.UUID                 `gorm:"type:uuid;primary_key"`
	ReturnID          uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_return_inspections_seq,priority:1"`
	Sequence          int                       `gorm:"not null;uniqueIndex:idx_return_inspections_seq,priority:2"`
	Condition         returns.ProductCondition  `gorm:"column:product_condition;type:varchar(20);not null"`
	Notes             string                    `gorm:"type:text;not null"`
	RecommendedAction returns.RecommendedAction `gorm:"type:varchar(10)"`
	InspectedBy       uuid.UUID                 `gorm:"type:uuid;not null"`
	InspectedAt       time.Time                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InspectionModel) TableName() string {
	return "return_inspections"
}

// ToDomain converts the persistence model to a domain InspectionEntry
func (m *InspectionModel) ToDomain() returns.InspectionEntry {
	return returns.InspectionEntry{
		ID:                m.ID,
		ReturnID:          m.ReturnID,
		Sequence:          m.Sequence,
		Condition:         m.Condition,
		Notes:             m.Notes,
		RecommendedAction: m.RecommendedAction,
		InspectedBy:       m.InspectedBy,
		InspectedAt:       m.InspectedAt,
	}
}

// FromDomain populates the persistence model from a domain InspectionEntry
func (m *InspectionModel) FromDomain(e returns.InspectionEntry) {
	m.ID = e.ID
	m.ReturnID = e.ReturnID
	m.Sequence = e.Sequence
	m.Condition = e.Condition
	m.Notes = e.Notes
	m.RecommendedAction = e.RecommendedAction
	m.InspectedBy = e.InspectedBy
	m.InspectedAt = e.InspectedAt
}

// AuditEntryModel is one append-only audit row
type AuditEntryModel struct {
	ID         uuid.UUID            `gorm:"type:uuid;primary_key"`
	ReturnID   uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_return_audit_seq,priority:1"`
	Sequence   int                  `gorm:"not null;uniqueIndex:idx_return_audit_seq,priority:2"`
	Action     returns.AuditAction  `gorm:"type:varchar(20);not null"`
	FromStatus returns.ReturnStatus `gorm:"type:varchar(20)"`
	ToStatus   returns.ReturnStatus `gorm:"type:varchar(20);not null"`
	ActorID    uuid.UUID            `gorm:"type:uuid;not null"`
	Note       string               `gorm:"type:text"`
	OccurredAt time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditEntryModel) TableName() string {
	return "return_audit_entries"
}

// ToDomain converts the persistence model to a domain AuditEntry
func (m *AuditEntryModel) ToDomain() returns.AuditEntry {
	return returns.AuditEntry{
		ID:         m.ID,
		ReturnID:   m.ReturnID,
		Sequence:   m.Sequence,
		Action:     m.Action,
		FromStatus: m.FromStatus,
		ToStatus:   m.ToStatus,
		ActorID:    m.ActorID,
		Note:       m.Note,
		OccurredAt: m.OccurredAt,
	}
}

// FromDomain populates the persistence model from a domain AuditEntry
func (m *AuditEntryModel) FromDomain(e returns.AuditEntry) {
	m.ID = e.ID
	m.ReturnID = e.ReturnID
	m.Sequence = e.Sequence
	m.Action = e.Action
	m.FromStatus = e.FromStatus
	m.ToStatus = e.ToStatus
	m.ActorID = e.ActorID
	m.Note = e.Note
	m.OccurredAt = e.OccurredAt
}
