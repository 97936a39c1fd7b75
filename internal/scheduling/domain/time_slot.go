package domain

import (
	"sort"
	"time"
)

// TimeSlot is a dated window of availability with the portions already
// taken by existing commitments or allocated blocks.
type TimeSlot struct {
	bounds TimeRange
	used   []TimeRange
}

// NewTimeSlot creates an empty slot.
func NewTimeSlot(start, end time.Time) (*TimeSlot, error) {
	bounds, err := NewTimeRange(start, end)
	if err != nil {
		return nil, err
	}
	return &TimeSlot{bounds: bounds}, nil
}

func (s *TimeSlot) Start() time.Time  { return s.bounds.Start }
func (s *TimeSlot) End() time.Time    { return s.bounds.End }
func (s *TimeSlot) Bounds() TimeRange { return s.bounds }

func (s *TimeSlot) TotalMinutes() int {
	return s.bounds.Minutes()
}

// UsedMinutes never exceeds TotalMinutes because used ranges are clipped
// to the slot and merged.
func (s *TimeSlot) UsedMinutes() int {
	var d time.Duration
	for _, r := range s.used {
		d += r.Duration()
	}
	return int(d / time.Minute)
}

func (s *TimeSlot) RemainingMinutes() int {
	return s.TotalMinutes() - s.UsedMinutes()
}

// UsedRanges returns the sorted, non-overlapping used ranges.
func (s *TimeSlot) UsedRanges() []TimeRange {
	return append([]TimeRange(nil), s.used...)
}

// MarkUsed records r as occupied. The part of r outside the slot is ignored.
// It reports whether anything changed.
func (s *TimeSlot) MarkUsed(r TimeRange) bool {
	clipped, ok := s.bounds.Intersect(r)
	if !ok {
		return false
	}

	s.used = append(s.used, clipped)
	sort.Slice(s.used, func(i, j int) bool { return s.used[i].Start.Before(s.used[j].Start) })

	merged := s.used[:1]
	for _, cur := range s.used[1:] {
		last := &merged[len(merged)-1]
		if !cur.Start.After(last.End) {
			if cur.End.After(last.End) {
				last.End = cur.End
			}
			continue
		}
		merged = append(merged, cur)
	}
	s.used = merged
	return true
}

// FreeRanges returns the complement of the used ranges, in order.
func (s *TimeSlot) FreeRanges() []TimeRange {
	var free []TimeRange
	cursor := s.bounds.Start
	for _, r := range s.used {
		if r.Start.After(cursor) {
			free = append(free, TimeRange{Start: cursor, End: r.Start})
		}
		if r.End.After(cursor) {
			cursor = r.End
		}
	}
	if s.bounds.End.After(cursor) {
		free = append(free, TimeRange{Start: cursor, End: s.bounds.End})
	}
	return free
}
