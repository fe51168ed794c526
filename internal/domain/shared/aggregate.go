package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseAggregateRoot holds identity, timestamps and the optimistic-lock
// version. Events raised by a command stay pending until the application
// layer has saved the aggregate and drains them.
type BaseAggregateRoot struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int

	pending []DomainEvent
}

// NewBaseAggregateRoot starts a fresh aggregate at version 1, created at the given instant
func NewBaseAggregateRoot(at time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{
		ID:        uuid.New(),
		CreatedAt: at,
		UpdatedAt: at,
		Version:   1,
	}
}

// RestoreAggregateRoot rebuilds the base of a stored aggregate with nothing pending
func RestoreAggregateRoot(id uuid.UUID, createdAt, updatedAt time.Time, version int) BaseAggregateRoot {
	return BaseAggregateRoot{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt, Version: version}
}

func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion is called by repositories once a versioned update has landed
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns the pending events in the order they were raised
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	out := make([]DomainEvent, len(a.pending))
	copy(out, a.pending)
	return out
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}
