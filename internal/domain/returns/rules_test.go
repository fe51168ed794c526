package returns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiresCustomerInfo(t *testing.T) {
	customerSources := []SourceType{SourceTypeSale, SourceTypeWarrantyClaim, SourceTypeJobSheet}
	for _, src := range customerSources {
		for _, cat := range AllReturnCategories() {
			assert.True(t, RequiresCustomerInfo(src, cat), "%s/%s", src, cat)
		}
	}

	for _, src := range []SourceType{SourceTypeStockCheck, SourceTypeGoodsReceipt} {
		for _, cat := range AllReturnCategories() {
			assert.False(t, RequiresCustomerInfo(src, cat), "%s/%s", src, cat)
		}
	}

	for _, cat := range AllReturnCategories() {
		want := cat == CategoryCustomerReturn || cat == CategoryWarrantyReturn
		assert.Equal(t, want, RequiresCustomerInfo(SourceTypeDirect, cat), "DIRECT/%s", cat)
	}
}

func TestSuggestResolution(t *testing.T) {
	tests := []struct {
		name      string
		source    SourceType
		category  ReturnCategory
		condition ProductCondition
		want      ResolutionType
	}{
		{"sale always refunds", SourceTypeSale, CategoryDefective, ConditionDestroyed, ResolutionRefundProcessed},
		{"defective goes to supplier", SourceTypeDirect, CategoryDefective, "", ResolutionReturnedSupplier},
		{"quality failure goes to supplier", SourceTypeGoodsReceipt, CategoryQualityFailure, ConditionLikeNew, ResolutionReturnedSupplier},
		{"damaged is scrapped", SourceTypeStockCheck, CategoryDamaged, "", ResolutionScrapped},
		{"destroyed is scrapped", SourceTypeWarrantyClaim, CategoryWarrantyReturn, ConditionDestroyed, ResolutionScrapped},
		{"everything else restocks", SourceTypeStockCheck, CategoryExcessStock, ConditionNewUnopened, ResolutionRestockedBranch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestResolution(tt.source, tt.category, tt.condition))
		})
	}
}

func TestResolutionType_Sets(t *testing.T) {
	assert.Len(t, ApprovalResolutions(), 11)
	for _, r := range ProcessingResolutions() {
		assert.True(t, r.IsApprovalResolution(), r)
	}
	assert.False(t, ResolutionExchangeIssued.IsProcessingResolution())
	assert.True(t, ResolutionWarrantyReplacement.IsProcessingResolution())
}
