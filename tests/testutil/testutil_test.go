package testutil

import (
	"context"
	"testing"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("a"), NewTestUUID("a"))
	assert.NotEqual(t, NewTestUUID("a"), NewTestUUID("b"))
}

func TestNewApprovedRecord(t *testing.T) {
	r := NewApprovedRecord(t, SaleReturnInput("RET-T-0001"), returns.ResolutionRefundProcessed)
	assert.Equal(t, returns.StatusApproved, r.Status)
	assert.Len(t, r.Inspections, 1)

	h := NewRecordingHandler()
	for _, evt := range r.GetDomainEvents() {
		require.NoError(t, h.Handle(context.Background(), evt))
	}
	assert.Equal(t, []string{
		returns.EventTypeReturnCreated, returns.EventTypeReturnInspected, returns.EventTypeReturnApproved,
	}, h.Types())
	assert.Equal(t, returns.StatusApproved, h.Statuses()[2])
}
