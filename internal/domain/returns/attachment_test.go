package returns

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturnRecord_NewAttachment(t *testing.T) {
	r, err := NewReturnRecord(directInput())
	require.NoError(t, err)

	a, err := r.NewAttachment("Front.JPG", "image/jpeg", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, r.ID, a.ReturnID)
	assert.True(t, strings.HasPrefix(a.StorageKey, "returns/"+r.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(a.StorageKey, ".jpg"))

	_, err = r.NewAttachment("virus.exe", "application/octet-stream", uuid.New())
	assert.True(t, IsValidationError(err))

	require.NoError(t, r.Cancel("duplicate", uuid.New()))
	_, err = r.NewAttachment("late.png", "image/png", uuid.New())
	assert.True(t, IsIllegalTransition(err))
}
