package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewFieldError("NOT_FOUND", "id", "Return 42 not found")
	wrapped := fmt.Errorf("loading: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrInvalidState))

	var de *DomainError
	assert.True(t, errors.As(wrapped, &de))
	assert.Equal(t, "id", de.Field)
}

func TestDomainError_WrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapDomainError("DISPATCH_FAILED", "Failed to execute REFUND_PROCESSED", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to execute REFUND_PROCESSED: connection refused", err.Error())
}

func TestFilter_Paging(t *testing.T) {
	f := DefaultFilter()
	assert.Equal(t, 0, f.Offset())
	assert.Equal(t, DefaultPageSize, f.Limit())

	f.Page, f.PageSize = 3, 20
	assert.Equal(t, 40, f.Offset())

	f.PageSize = 500
	assert.Equal(t, MaxPageSize, f.Limit())
}

func TestBaseAggregateRoot_PendingEvents(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := NewBaseAggregateRoot(at)
	assert.Equal(t, 1, a.GetVersion())
	assert.Equal(t, at, a.CreatedAt)

	evt := NewBaseDomainEvent("ReturnCreated", "ReturnRecord", a.ID)
	a.AddDomainEvent(&evt)
	events := a.GetDomainEvents()
	assert.Len(t, events, 1)

	events[0] = nil
	assert.NotNil(t, a.GetDomainEvents()[0], "callers get a copy")

	a.ClearDomainEvents()
	assert.Empty(t, a.GetDomainEvents())

	a.IncrementVersion()
	restored := RestoreAggregateRoot(a.ID, a.CreatedAt, at.Add(time.Hour), a.Version)
	assert.Equal(t, 2, restored.Version)
	assert.Empty(t, restored.GetDomainEvents())
}
