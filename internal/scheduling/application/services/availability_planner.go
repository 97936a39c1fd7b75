package services

import (
	"time"

	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
)

// AvailabilityPlanner turns recurring windows into concrete dated slots,
// net of existing commitments.
type AvailabilityPlanner struct {
	clock func() time.Time
}

// NewAvailabilityPlanner creates a planner. A nil clock uses time.Now.
func NewAvailabilityPlanner(clock func() time.Time) *AvailabilityPlanner {
	if clock == nil {
		clock = time.Now
	}
	return &AvailabilityPlanner{clock: clock}
}

// BuildSlots returns one slot per matching window per calendar date in
// [start, end], in chronological order. With no windows configured every
// weekday gets the default working window. Slots that already ended are
// skipped, slots that already started begin at now, and slots left with
// fewer than minBlockMinutes free are dropped.
func (p *AvailabilityPlanner) BuildSlots(
	start, end time.Time,
	windows []domain.AvailabilityWindow,
	existing []domain.TimeRange,
	minBlockMinutes int,
) []*domain.TimeSlot {
	now := ceilMinute(p.clock())
	loc := start.Location()

	var slots []*domain.TimeSlot
	for _, date := range datesBetween(start, end.In(loc)) {
		for _, w := range windowsFor(date.Weekday(), windows) {
			y, m, d := date.Date()
			slotStart := w.Start.On(y, m, d, loc)
			slotEnd := w.End.On(y, m, d, loc)

			if !slotEnd.After(now) {
				continue
			}
			if slotStart.Before(now) {
				slotStart = now
			}

			slot, err := domain.NewTimeSlot(slotStart, slotEnd)
			if err != nil {
				continue
			}
			for _, r := range existing {
				slot.MarkUsed(r)
			}
			if slot.RemainingMinutes() < minBlockMinutes {
				continue
			}
			slots = append(slots, slot)
		}
	}
	return slots
}

func windowsFor(day time.Weekday, windows []domain.AvailabilityWindow) []domain.AvailabilityWindow {
	if len(windows) == 0 {
		if domain.IsWeekday(day) {
			return []domain.AvailabilityWindow{domain.DefaultWindow(day)}
		}
		return nil
	}

	var matched []domain.AvailabilityWindow
	for _, w := range windows {
		if w.Weekday == day {
			matched = append(matched, w)
		}
	}
	return matched
}

// datesBetween lists midnight of every date from start to end inclusive.
func datesBetween(start, end time.Time) []time.Time {
	loc := start.Location()
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)

	var dates []time.Time
	for !day.After(last) {
		dates = append(dates, day)
		day = day.AddDate(0, 0, 1)
	}
	return dates
}

func ceilMinute(t time.Time) time.Time {
	truncated := t.Truncate(time.Minute)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(time.Minute)
}
