package returns

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturnListFilter_toDomain(t *testing.T) {
	location := uuid.New()
	f := ReturnListFilter{
		LocationID: location.String(),
		Status:     "APPROVED",
		SourceType: "SALE",
		Search:     "  RTN-2026 ",
		DateFrom:   "2026-03-01",
		DateTo:     "2026-03-31",
		Page:       2,
		PageSize:   50,
	}
	got, err := f.toDomain()
	require.NoError(t, err)
	assert.Equal(t, location, *got.LocationID)
	assert.Equal(t, returns.StatusApproved, got.Status)
	assert.Equal(t, "RTN-2026", got.Search)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 50, got.PageSize)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *got.DateFrom)
	assert.True(t, got.DateTo.After(time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC)))
}

func TestReturnListFilter_toDomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		filter ReturnListFilter
		field  string
	}{
		{"bad location", ReturnListFilter{LocationID: "x"}, "location_id"},
		{"bad date", ReturnListFilter{DateFrom: "March"}, "date_from"},
		{"inverted range", ReturnListFilter{DateFrom: "2026-04-02", DateTo: "2026-04-01"}, "date_to"},
		{"unknown category", ReturnListFilter{ReturnCategory: "LOST"}, "return_category"},
		{"unknown source", ReturnListFilter{SourceType: "MAIL"}, "source_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.filter.toDomain()
			assertErrorCode(t, err, returns.CodeValidation)
			var domainErr *shared.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tt.field, domainErr.Field)
		})
	}
}

func TestProcessReturnRequest_payload(t *testing.T) {
	amount := decimal.NewFromInt(20)
	p, err := ProcessReturnRequest{ResolutionType: "REFUND_PROCESSED", RefundAmount: &amount, RefundMethod: "CASH"}.payload()
	require.NoError(t, err)
	assert.Equal(t, returns.PayloadRefund, p.Kind())

	_, err = ProcessReturnRequest{ResolutionType: "REFUND_PROCESSED", RefundMethod: "CASH"}.payload()
	assertErrorCode(t, err, returns.CodeValidation)

	p, err = ProcessReturnRequest{ResolutionType: "SCRAPPED"}.payload()
	require.NoError(t, err)
	assert.Equal(t, returns.PayloadNone, p.Kind())
}
