package returns

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ResolutionType is how a return is (to be) resolved.
// Approvers choose from ApprovalResolutions; Process accepts ProcessingResolutions.
type ResolutionType string

const (
	ResolutionRefundProcessed      ResolutionType = "REFUND_PROCESSED"
	ResolutionRestockedBranch      ResolutionType = "RESTOCKED_BRANCH"
	ResolutionReturnedSupplier     ResolutionType = "RETURNED_SUPPLIER"
	ResolutionTransferredWarehouse ResolutionType = "TRANSFERRED_WAREHOUSE"
	ResolutionScrapped             ResolutionType = "SCRAPPED"
	ResolutionWarrantyReplacement  ResolutionType = "WARRANTY_REPLACEMENT"
	ResolutionExchangeIssued       ResolutionType = "EXCHANGE_ISSUED"
	ResolutionStoreCreditIssued    ResolutionType = "STORE_CREDIT_ISSUED"
	ResolutionRepaired             ResolutionType = "REPAIRED"
	ResolutionRefurbished          ResolutionType = "REFURBISHED"
	ResolutionDonated              ResolutionType = "DONATED"
)

// ApprovalResolutions lists the resolutions an approver may record
func ApprovalResolutions() []ResolutionType {
	return []ResolutionType{
		ResolutionRefundProcessed, ResolutionRestockedBranch, ResolutionReturnedSupplier,
		ResolutionTransferredWarehouse, ResolutionScrapped, ResolutionWarrantyReplacement,
		ResolutionExchangeIssued, ResolutionStoreCreditIssued, ResolutionRepaired,
		ResolutionRefurbished, ResolutionDonated,
	}
}

// ProcessingResolutions lists the resolutions that have a physical or financial side effect
func ProcessingResolutions() []ResolutionType {
	return []ResolutionType{
		ResolutionRestockedBranch, ResolutionRefundProcessed, ResolutionReturnedSupplier,
		ResolutionTransferredWarehouse, ResolutionScrapped, ResolutionWarrantyReplacement,
	}
}

// IsApprovalResolution reports whether r may be recorded at approval
func (r ResolutionType) IsApprovalResolution() bool {
	for _, v := range ApprovalResolutions() {
		if v == r {
			return true
		}
	}
	return false
}

// IsProcessingResolution reports whether r may be executed by Process
func (r ResolutionType) IsProcessingResolution() bool {
	for _, v := range ProcessingResolutions() {
		if v == r {
			return true
		}
	}
	return false
}

func (r ResolutionType) String() string {
	return string(r)
}

// PayloadKind tags the ResolutionPayload variants
type PayloadKind string

const (
	PayloadNone           PayloadKind = "NONE"
	PayloadRefund         PayloadKind = "REFUND"
	PayloadSupplierReturn PayloadKind = "SUPPLIER_RETURN"
	PayloadTransfer       PayloadKind = "TRANSFER"
)

// requiredPayload maps each processing resolution to the payload it needs
var requiredPayload = map[ResolutionType]PayloadKind{
	ResolutionRefundProcessed:      PayloadRefund,
	ResolutionReturnedSupplier:     PayloadSupplierReturn,
	ResolutionTransferredWarehouse: PayloadTransfer,
	ResolutionRestockedBranch:      PayloadNone,
	ResolutionScrapped:             PayloadNone,
	ResolutionWarrantyReplacement:  PayloadNone,
}

// ResolutionPayload is the resolution-specific data supplied to Process.
// The set of variants is closed; build them with the New* constructors.
type ResolutionPayload interface {
	Kind() PayloadKind
	sealed()
}

// RefundPayload carries the money side of REFUND_PROCESSED
type RefundPayload struct {
	Amount decimal.Decimal
	Method RefundMethod
}

// NewRefundPayload validates and builds a refund payload
func NewRefundPayload(amount decimal.Decimal, method RefundMethod) (RefundPayload, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return RefundPayload{}, NewValidationError("refund_amount", "Refund amount must be greater than zero")
	}
	if method == "" {
		return RefundPayload{}, NewValidationError("refund_method", "Refund method is required")
	}
	if !method.IsValid() {
		return RefundPayload{}, NewValidationError("refund_method", "Unknown refund method: "+string(method))
	}
	return RefundPayload{Amount: amount, Method: method}, nil
}

func (RefundPayload) Kind() PayloadKind { return PayloadRefund }
func (RefundPayload) sealed()           {}

// SupplierReturnPayload carries the data for RETURNED_SUPPLIER
type SupplierReturnPayload struct {
	SupplierID  uuid.UUID
	Reason      SupplierReturnReason
	Description string
}

// NewSupplierReturnPayload validates and builds a supplier return payload
func NewSupplierReturnPayload(supplierID uuid.UUID, reason SupplierReturnReason, description string) (SupplierReturnPayload, error) {
	if supplierID == uuid.Nil {
		return SupplierReturnPayload{}, NewValidationError("supplier_id", "Supplier is required for a supplier return")
	}
	if reason == "" {
		return SupplierReturnPayload{}, NewValidationError("supplier_return_reason", "Supplier return reason is required")
	}
	if !reason.IsValid() {
		return SupplierReturnPayload{}, NewValidationError("supplier_return_reason", "Unknown supplier return reason: "+string(reason))
	}
	return SupplierReturnPayload{SupplierID: supplierID, Reason: reason, Description: description}, nil
}

func (SupplierReturnPayload) Kind() PayloadKind { return PayloadSupplierReturn }
func (SupplierReturnPayload) sealed()           {}

// TransferPayload carries the destination for TRANSFERRED_WAREHOUSE
type TransferPayload struct {
	ToLocationID uuid.UUID
}

// NewTransferPayload validates and builds a transfer payload
func NewTransferPayload(toLocationID uuid.UUID) (TransferPayload, error) {
	if toLocationID == uuid.Nil {
		return TransferPayload{}, NewValidationError("transfer_to_location_id", "Destination location is required for a transfer")
	}
	return TransferPayload{ToLocationID: toLocationID}, nil
}

func (TransferPayload) Kind() PayloadKind { return PayloadTransfer }
func (TransferPayload) sealed()           {}

// NoPayload is used by resolutions that need nothing beyond the record itself
type NoPayload struct{}

func (NoPayload) Kind() PayloadKind { return PayloadNone }
func (NoPayload) sealed()           {}
