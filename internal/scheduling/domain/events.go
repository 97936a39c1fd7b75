package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/cadence/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Schedule"

	RoutingKeyScheduleBuilt     = "schedule.built"
	RoutingKeyConflictsResolved = "schedule.conflicts_resolved"
)

// ScheduleBuilt is emitted after a scheduling pass is persisted. The
// aggregate ID identifies the run.
type ScheduleBuilt struct {
	sharedDomain.BaseEvent
	Start         time.Time   `json:"start"`
	End           time.Time   `json:"end"`
	BlockIDs      []uuid.UUID `json:"block_ids"`
	Unschedulable []uuid.UUID `json:"unschedulable"`
	Partial       bool        `json:"partial"`
}

func NewScheduleBuilt(runID uuid.UUID, horizon TimeRange, result *SchedulingResult, at time.Time) *ScheduleBuilt {
	e := &ScheduleBuilt{
		BaseEvent: sharedDomain.NewBaseEvent(runID, AggregateType, RoutingKeyScheduleBuilt, at),
		Start:     horizon.Start,
		End:       horizon.End,
		Partial:   result.Partial,
	}
	for _, b := range result.Blocks {
		e.BlockIDs = append(e.BlockIDs, b.ID())
	}
	for _, u := range result.Unschedulable {
		e.Unschedulable = append(e.Unschedulable, u.TaskID)
	}
	return e
}

// ConflictsResolved is emitted when stored blocks were shifted.
type ConflictsResolved struct {
	sharedDomain.BaseEvent
	Conflicts []Conflict `json:"conflicts"`
}

func NewConflictsResolved(runID uuid.UUID, conflicts []Conflict, at time.Time) *ConflictsResolved {
	return &ConflictsResolved{
		BaseEvent: sharedDomain.NewBaseEvent(runID, AggregateType, RoutingKeyConflictsResolved, at),
		Conflicts: conflicts,
	}
}
