// Package testutil holds fixtures shared by the returns integration tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewTestUUID derives a reproducible UUID from seed
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(testNamespace, []byte(seed))
}

// TestActorID is the actor stamped on fixtures
func TestActorID() uuid.UUID {
	return NewTestUUID("test-actor")
}

// TestLocationID is the branch fixtures are taken in at
func TestLocationID() uuid.UUID {
	return NewTestUUID("test-location")
}

// ContextWithTimeout creates a context that is cancelled when the test ends
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RequireEventually polls condition until it holds or timeout passes
func RequireEventually(t *testing.T, condition func() bool, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Fail(t, "condition not met within "+timeout.String(), msgAndArgs...)
}

// SaleReturnInput is a customer return against a sale, worth 2 x 49.95
func SaleReturnInput(returnNumber string) returns.CreateInput {
	saleID := NewTestUUID("sale-" + returnNumber)
	return returns.CreateInput{
		ReturnNumber:   returnNumber,
		SourceType:     returns.SourceTypeSale,
		SourceID:       &saleID,
		ReturnCategory: returns.CategoryCustomerReturn,
		ReturnReason:   "Changed mind",
		LocationID:     TestLocationID(),
		ProductID:      NewTestUUID("product-" + returnNumber),
		ProductName:    "Desk Lamp",
		Quantity:       2,
		ProductValue:   decimal.RequireFromString("49.95"),
		CustomerName:   "Sam Ortiz",
		CustomerPhone:  "+15550123",
		CreatedBy:      TestActorID(),
	}
}

// StockReturnInput is a damaged item found during a stock check
func StockReturnInput(returnNumber string) returns.CreateInput {
	return returns.CreateInput{
		ReturnNumber:   returnNumber,
		SourceType:     returns.SourceTypeStockCheck,
		ReturnCategory: returns.CategoryDamaged,
		LocationID:     TestLocationID(),
		ProductID:      NewTestUUID("product-" + returnNumber),
		Quantity:       1,
		ProductValue:   decimal.NewFromInt(20),
		CreatedBy:      TestActorID(),
	}
}

// NewApprovedRecord drives a new record through inspection and approval
// with the domain methods, so it only ever passes through legal states.
func NewApprovedRecord(t *testing.T, in returns.CreateInput, resolution returns.ResolutionType) *returns.ReturnRecord {
	t.Helper()
	r, err := returns.NewReturnRecord(in)
	require.NoError(t, err)
	require.NoError(t, r.Inspect(returns.InspectInput{
		Condition:   returns.ConditionLikeNew,
		Notes:       "Checked at the counter",
		Complete:    true,
		InspectorID: TestActorID(),
	}))
	require.NoError(t, r.Approve(resolution, "", TestActorID()))
	return r
}
