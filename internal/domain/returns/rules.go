package returns

// customerInfoBySource says whether a source always carries a customer.
// DIRECT is decided per category by directCustomerCategories.
var customerInfoBySource = map[SourceType]bool{
	SourceTypeSale:          true,
	SourceTypeWarrantyClaim: true,
	SourceTypeJobSheet:      true,
	SourceTypeStockCheck:    false,
	SourceTypeGoodsReceipt:  false,
}

var directCustomerCategories = map[ReturnCategory]bool{
	CategoryCustomerReturn: true,
	CategoryWarrantyReturn: true,
}

// RequiresCustomerInfo reports whether customer name and phone are mandatory
// for a return of the given source and category.
func RequiresCustomerInfo(source SourceType, category ReturnCategory) bool {
	if source == SourceTypeDirect {
		return directCustomerCategories[category]
	}
	return customerInfoBySource[source]
}

// SuggestResolution proposes a processing resolution. It is advisory only;
// Process never applies it implicitly.
func SuggestResolution(source SourceType, category ReturnCategory, condition ProductCondition) ResolutionType {
	switch {
	case source == SourceTypeSale:
		return ResolutionRefundProcessed
	case category == CategoryDefective || category == CategoryQualityFailure:
		return ResolutionReturnedSupplier
	case category == CategoryDamaged || condition == ConditionDestroyed:
		return ResolutionScrapped
	default:
		return ResolutionRestockedBranch
	}
}

// SuggestedResolution applies SuggestResolution to the record's current data
func (r *ReturnRecord) SuggestedResolution() ResolutionType {
	return SuggestResolution(r.SourceType, r.ReturnCategory, r.ProductCondition)
}
