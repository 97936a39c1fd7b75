package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/cadence/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type sampleEvent struct {
	domain.BaseEvent
}

func TestBaseEntity_TouchAtNeverMovesBackwards(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	entity := domain.NewBaseEntity(now)

	entity.TouchAt(now.Add(-time.Hour))
	assert.Equal(t, now, entity.UpdatedAt())

	entity.TouchAt(now.Add(time.Minute))
	assert.Equal(t, now.Add(time.Minute), entity.UpdatedAt())
	assert.Equal(t, now, entity.CreatedAt())
}

func TestBaseAggregateRoot_EventsAndRevision(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	agg := domain.NewBaseAggregateRoot(now)
	assert.NotEqual(t, uuid.Nil, agg.ID())
	assert.Zero(t, agg.Revision())

	agg.AddDomainEvent(sampleEvent{BaseEvent: domain.NewBaseEvent(agg.ID(), "Sample", "sample.created", now)})
	agg.Bump(now.Add(time.Second))

	assert.Len(t, agg.DomainEvents(), 1)
	assert.Equal(t, 1, agg.Revision())
	assert.Equal(t, agg.ID(), agg.DomainEvents()[0].AggregateID())

	agg.ClearDomainEvents()
	assert.Empty(t, agg.DomainEvents())
}
