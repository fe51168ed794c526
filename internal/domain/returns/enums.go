package returns

// SourceType identifies where a return originated
type SourceType string

const (
	SourceTypeSale          SourceType = "SALE"
	SourceTypeWarrantyClaim SourceType = "WARRANTY_CLAIM"
	SourceTypeJobSheet      SourceType = "JOB_SHEET"
	SourceTypeStockCheck    SourceType = "STOCK_CHECK"
	SourceTypeDirect        SourceType = "DIRECT"
	SourceTypeGoodsReceipt  SourceType = "GOODS_RECEIPT"
)

// AllSourceTypes lists every source type in display order
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceTypeSale, SourceTypeWarrantyClaim, SourceTypeJobSheet,
		SourceTypeStockCheck, SourceTypeDirect, SourceTypeGoodsReceipt,
	}
}

func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeSale, SourceTypeWarrantyClaim, SourceTypeJobSheet,
		SourceTypeStockCheck, SourceTypeDirect, SourceTypeGoodsReceipt:
		return true
	}
	return false
}

func (s SourceType) String() string {
	return string(s)
}

// ReturnCategory classifies why the item came back
type ReturnCategory string

const (
	CategoryCustomerReturn   ReturnCategory = "CUSTOMER_RETURN"
	CategoryWarrantyReturn   ReturnCategory = "WARRANTY_RETURN"
	CategoryDefective        ReturnCategory = "DEFECTIVE"
	CategoryExcessStock      ReturnCategory = "EXCESS_STOCK"
	CategoryQualityFailure   ReturnCategory = "QUALITY_FAILURE"
	CategoryDamaged          ReturnCategory = "DAMAGED"
	CategoryInternalTransfer ReturnCategory = "INTERNAL_TRANSFER"
)

// AllReturnCategories lists every category in display order
func AllReturnCategories() []ReturnCategory {
	return []ReturnCategory{
		CategoryCustomerReturn, CategoryWarrantyReturn, CategoryDefective,
		CategoryExcessStock, CategoryQualityFailure, CategoryDamaged, CategoryInternalTransfer,
	}
}

func (c ReturnCategory) IsValid() bool {
	switch c {
	case CategoryCustomerReturn, CategoryWarrantyReturn, CategoryDefective,
		CategoryExcessStock, CategoryQualityFailure, CategoryDamaged, CategoryInternalTransfer:
		return true
	}
	return false
}

func (c ReturnCategory) String() string {
	return string(c)
}

// ProductCondition is the condition recorded at inspection
type ProductCondition string

const (
	ConditionNewUnopened ProductCondition = "NEW_UNOPENED"
	ConditionLikeNew     ProductCondition = "LIKE_NEW"
	ConditionUsedGood    ProductCondition = "USED_GOOD"
	ConditionUsedFair    ProductCondition = "USED_FAIR"
	ConditionDamaged     ProductCondition = "DAMAGED"
	ConditionDefective   ProductCondition = "DEFECTIVE"
	ConditionDestroyed   ProductCondition = "DESTROYED"
)

func (c ProductCondition) IsValid() bool {
	switch c {
	case ConditionNewUnopened, ConditionLikeNew, ConditionUsedGood, ConditionUsedFair,
		ConditionDamaged, ConditionDefective, ConditionDestroyed:
		return true
	}
	return false
}

func (c ProductCondition) String() string {
	return string(c)
}

// RecommendedAction is the inspector's advisory verdict. It never changes status on its own.
type RecommendedAction string

const (
	RecommendApprove RecommendedAction = "APPROVE"
	RecommendReject  RecommendedAction = "REJECT"
)

func (a RecommendedAction) IsValid() bool {
	return a == RecommendApprove || a == RecommendReject
}

// RefundMethod is how money goes back to the customer
type RefundMethod string

const (
	RefundMethodCash         RefundMethod = "CASH"
	RefundMethodCard         RefundMethod = "CARD"
	RefundMethodBankTransfer RefundMethod = "BANK_TRANSFER"
	RefundMethodStoreCredit  RefundMethod = "STORE_CREDIT"
	RefundMethodOriginal     RefundMethod = "ORIGINAL_PAYMENT"
)

func (m RefundMethod) IsValid() bool {
	switch m {
	case RefundMethodCash, RefundMethodCard, RefundMethodBankTransfer,
		RefundMethodStoreCredit, RefundMethodOriginal:
		return true
	}
	return false
}

// SupplierReturnReason is the reason code sent to the supplier-return collaborator
type SupplierReturnReason string

const (
	SupplierReasonDefective      SupplierReturnReason = "DEFECTIVE"
	SupplierReasonQualityFailure SupplierReturnReason = "QUALITY_FAILURE"
	SupplierReasonWrongItem      SupplierReturnReason = "WRONG_ITEM"
	SupplierReasonExcessStock    SupplierReturnReason = "EXCESS_STOCK"
	SupplierReasonExpired        SupplierReturnReason = "EXPIRED"
	SupplierReasonOther          SupplierReturnReason = "OTHER"
)

func (r SupplierReturnReason) IsValid() bool {
	switch r {
	case SupplierReasonDefective, SupplierReasonQualityFailure, SupplierReasonWrongItem,
		SupplierReasonExcessStock, SupplierReasonExpired, SupplierReasonOther:
		return true
	}
	return false
}

// Rejection reasons offered to approvers. Any other text is refused.
const (
	RejectionPeriodExpired      = "Return period expired"
	RejectionCustomerDamage     = "Product damaged by customer"
	RejectionNoProofOfPurchase  = "No proof of purchase"
	RejectionNotEligible        = "Item not eligible for return"
	RejectionMissingAccessories = "Missing accessories or packaging"
	RejectionOther              = "Other"
)

var rejectionReasons = map[string]bool{
	RejectionPeriodExpired:      true,
	RejectionCustomerDamage:     true,
	RejectionNoProofOfPurchase:  true,
	RejectionNotEligible:        true,
	RejectionMissingAccessories: true,
	RejectionOther:              true,
}

// IsKnownRejectionReason reports whether reason is one of the offered rejection reasons
func IsKnownRejectionReason(reason string) bool {
	return rejectionReasons[reason]
}

// RejectionReasons returns the offered rejection reasons
func RejectionReasons() []string {
	return []string{
		RejectionPeriodExpired, RejectionCustomerDamage, RejectionNoProofOfPurchase,
		RejectionNotEligible, RejectionMissingAccessories, RejectionOther,
	}
}
