package cache

import (
	"context"
	"sync"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
)

// InMemoryRecordLocker is a process-local RecordLocker.
// Use the Redis locker when more than one instance serves the same database.
type InMemoryRecordLocker struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

// NewInMemoryRecordLocker creates an empty process-local locker
func NewInMemoryRecordLocker() *InMemoryRecordLocker {
	return &InMemoryRecordLocker{held: make(map[uuid.UUID]struct{})}
}

func (l *InMemoryRecordLocker) TryLock(_ context.Context, id uuid.UUID) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[id]; busy {
		return nil, false, nil
	}
	l.held[id] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, id)
			l.mu.Unlock()
		})
	}
	return release, true, nil
}

var _ shared.RecordLocker = (*InMemoryRecordLocker)(nil)
