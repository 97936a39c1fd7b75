package domain

import (
	"time"

	"github.com/google/uuid"
)

// AggregateRoot is an entity that records domain events and carries a
// revision used for optimistic concurrency.
type AggregateRoot interface {
	Entity
	DomainEvents() []DomainEvent
	ClearDomainEvents()
	Revision() int
}

// BaseAggregateRoot provides event recording and revision tracking.
type BaseAggregateRoot struct {
	BaseEntity
	domainEvents []DomainEvent
	revision     int
}

// NewBaseAggregateRoot creates a new aggregate root at revision 0.
func NewBaseAggregateRoot(now time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(now)}
}

// RehydrateBaseAggregateRoot recreates an aggregate from persisted state.
func RehydrateBaseAggregateRoot(id uuid.UUID, createdAt, updatedAt time.Time, revision int) BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: RehydrateBaseEntity(id, createdAt, updatedAt),
		revision:   revision,
	}
}

// DomainEvents returns all uncommitted domain events.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents drops uncommitted events once they are in the outbox.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// AddDomainEvent records an event.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// Revision returns the number of recorded mutations.
func (a *BaseAggregateRoot) Revision() int {
	return a.revision
}

// Bump increments the revision and touches the entity.
func (a *BaseAggregateRoot) Bump(now time.Time) {
	a.revision++
	a.TouchAt(now)
}
