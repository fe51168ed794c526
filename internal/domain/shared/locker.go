package shared

import (
	"context"

	"github.com/google/uuid"
)

// RecordLocker serializes mutations of one aggregate.
// TryLock never waits: a held lock means another mutation is in flight and the
// caller should fail with a conflict.
type RecordLocker interface {
	// TryLock acquires the lock for id. It returns ok=false if the lock is held.
	// The returned release func must be called exactly once when ok is true.
	TryLock(ctx context.Context, id uuid.UUID) (release func(), ok bool, err error)
}
