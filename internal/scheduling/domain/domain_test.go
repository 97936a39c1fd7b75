package domain_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC) // Monday

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func span(h1, m1, h2, m2 int) domain.TimeRange {
	return domain.TimeRange{Start: at(h1, m1), End: at(h2, m2)}
}

func TestTimeRange(t *testing.T) {
	t.Run("rejects empty and inverted ranges", func(t *testing.T) {
		_, err := domain.NewTimeRange(at(10, 0), at(10, 0))
		assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
		_, err = domain.NewTimeRange(at(11, 0), at(10, 0))
		assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
	})

	t.Run("overlap is half-open", func(t *testing.T) {
		assert.True(t, span(10, 0, 11, 0).Overlaps(span(10, 30, 11, 30)))
		assert.False(t, span(10, 0, 11, 0).Overlaps(span(11, 0, 12, 0)))
	})

	t.Run("intersect", func(t *testing.T) {
		got, ok := span(10, 0, 11, 0).Intersect(span(10, 30, 11, 30))
		require.True(t, ok)
		assert.Equal(t, span(10, 30, 11, 0), got)
		assert.Equal(t, 30, got.Minutes())

		_, ok = span(9, 0, 10, 0).Intersect(span(10, 0, 11, 0))
		assert.False(t, ok)
	})
}

func TestTimeSlot(t *testing.T) {
	newSlot := func(t *testing.T) *domain.TimeSlot {
		s, err := domain.NewTimeSlot(at(9, 0), at(17, 0))
		require.NoError(t, err)
		return s
	}

	t.Run("fresh slot is fully free", func(t *testing.T) {
		s := newSlot(t)
		assert.Equal(t, 480, s.TotalMinutes())
		assert.Equal(t, 480, s.RemainingMinutes())
		assert.Equal(t, []domain.TimeRange{span(9, 0, 17, 0)}, s.FreeRanges())
	})

	t.Run("marks and merges used ranges", func(t *testing.T) {
		s := newSlot(t)
		s.MarkUsed(span(10, 0, 11, 0))
		s.MarkUsed(span(10, 30, 12, 0))
		s.MarkUsed(span(14, 0, 15, 0))

		assert.Equal(t, []domain.TimeRange{span(10, 0, 12, 0), span(14, 0, 15, 0)}, s.UsedRanges())
		assert.Equal(t, 180, s.UsedMinutes())
		assert.Equal(t, 300, s.RemainingMinutes())
		assert.Equal(t, []domain.TimeRange{
			span(9, 0, 10, 0),
			span(12, 0, 14, 0),
			span(15, 0, 17, 0),
		}, s.FreeRanges())
	})

	t.Run("clips ranges to the slot", func(t *testing.T) {
		s := newSlot(t)
		assert.True(t, s.MarkUsed(span(8, 0, 9, 30)))
		assert.False(t, s.MarkUsed(span(17, 0, 18, 0)))
		assert.Equal(t, 30, s.UsedMinutes())
	})

	t.Run("used never exceeds total", func(t *testing.T) {
		s := newSlot(t)
		s.MarkUsed(span(8, 0, 18, 0))
		s.MarkUsed(span(9, 0, 17, 0))
		assert.Equal(t, 480, s.UsedMinutes())
		assert.Zero(t, s.RemainingMinutes())
		assert.Empty(t, s.FreeRanges())
	})
}

func TestClockTime(t *testing.T) {
	c, err := domain.ParseClockTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, c.Hour())
	assert.Equal(t, 30, c.Minute())
	assert.Equal(t, "09:30", c.String())
	assert.Equal(t, at(9, 30), c.On(2026, time.March, 2, time.UTC))

	end, err := domain.ParseClockTime("24:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), end.On(2026, time.March, 2, time.UTC))

	for _, bad := range []string{"25:00", "12:60", "24:30", "noon"} {
		_, err := domain.ParseClockTime(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidClockTime, bad)
	}
}

func TestClockTime_OnDaylightSavingDays(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	nine, err := domain.ParseClockTime("09:00")
	require.NoError(t, err)
	five, err := domain.ParseClockTime("17:00")
	require.NoError(t, err)
	midnight, err := domain.ParseClockTime("24:00")
	require.NoError(t, err)

	t.Run("spring forward", func(t *testing.T) {
		start := nine.On(2026, time.March, 8, ny)
		assert.Equal(t, 9, start.Hour())
		assert.Equal(t, time.Date(2026, 3, 8, 13, 0, 0, 0, time.UTC), start.UTC())
		assert.Equal(t, 17, five.On(2026, time.March, 8, ny).Hour())
		assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, ny), midnight.On(2026, time.March, 8, ny))
	})

	t.Run("fall back", func(t *testing.T) {
		start := nine.On(2026, time.November, 1, ny)
		assert.Equal(t, 9, start.Hour())
		assert.Equal(t, time.Date(2026, 11, 1, 14, 0, 0, 0, time.UTC), start.UTC())
		assert.Equal(t, 8*time.Hour, five.On(2026, time.November, 1, ny).Sub(start))
	})
}

func TestAvailabilityWindow(t *testing.T) {
	_, err := domain.NewAvailabilityWindow(time.Monday, domain.ClockTime(600), domain.ClockTime(540))
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)

	w := domain.DefaultWindow(time.Tuesday)
	assert.NoError(t, w.Validate())
	assert.Equal(t, "09:00", w.Start.String())
	assert.Equal(t, "17:00", w.End.String())

	assert.True(t, domain.IsWeekday(time.Friday))
	assert.False(t, domain.IsWeekday(time.Saturday))
	assert.False(t, domain.IsWeekday(time.Sunday))
}

func TestValidateWindows(t *testing.T) {
	mon1 := domain.AvailabilityWindow{Weekday: time.Monday, Start: 540, End: 720}
	mon2 := domain.AvailabilityWindow{Weekday: time.Monday, Start: 780, End: 1020}
	tue := domain.AvailabilityWindow{Weekday: time.Tuesday, Start: 600, End: 700}
	assert.NoError(t, domain.ValidateWindows([]domain.AvailabilityWindow{mon1, mon2, tue}))

	touching := domain.AvailabilityWindow{Weekday: time.Monday, Start: 720, End: 780}
	assert.NoError(t, domain.ValidateWindows([]domain.AvailabilityWindow{mon1, touching, mon2}))

	clash := domain.AvailabilityWindow{Weekday: time.Monday, Start: 700, End: 800}
	assert.ErrorIs(t, domain.ValidateWindows([]domain.AvailabilityWindow{mon1, clash}), domain.ErrOverlappingWindows)
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{
		"monday": time.Monday,
		"Sat":    time.Saturday,
		"0":      time.Sunday,
		" FRI ":  time.Friday,
	} {
		got, err := domain.ParseWeekday(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := domain.ParseWeekday("someday")
	assert.Error(t, err)
	_, err = domain.ParseWeekday("7")
	assert.Error(t, err)
}

func TestCalendarBlock(t *testing.T) {
	taskID := uuid.New()

	t.Run("new blocks are proposed", func(t *testing.T) {
		b, err := domain.NewCalendarBlock(taskID, "Write report", at(9, 0), at(10, 30), now)
		require.NoError(t, err)
		assert.Equal(t, domain.BlockProposed, b.Status())
		assert.Equal(t, 90*time.Minute, b.Duration())
		assert.False(t, b.IsCommitment())
	})

	t.Run("commitments are scheduled and task-less", func(t *testing.T) {
		b, err := domain.NewCommitment("Standup", at(9, 0), at(9, 15), now)
		require.NoError(t, err)
		assert.True(t, b.IsCommitment())
		assert.Equal(t, domain.BlockScheduled, b.Status())
	})

	t.Run("lifecycle", func(t *testing.T) {
		b, err := domain.NewCalendarBlock(taskID, "Write report", at(9, 0), at(10, 0), now)
		require.NoError(t, err)

		assert.ErrorIs(t, b.Transition(domain.BlockCompleted, now), domain.ErrInvalidBlockTransition)
		assert.ErrorIs(t, b.Transition(domain.BlockAccepted, now), domain.ErrInvalidBlockTransition)
		require.NoError(t, b.Transition(domain.BlockScheduled, now))
		require.NoError(t, b.Transition(domain.BlockAccepted, now))
		require.NoError(t, b.Transition(domain.BlockCompleted, now))
		assert.ErrorIs(t, b.Transition(domain.BlockRejected, now), domain.ErrInvalidBlockTransition)
	})

	t.Run("transition table", func(t *testing.T) {
		tests := []struct {
			from, to domain.BlockStatus
			ok       bool
		}{
			{domain.BlockProposed, domain.BlockScheduled, true},
			{domain.BlockProposed, domain.BlockRejected, true},
			{domain.BlockProposed, domain.BlockMissed, false},
			{domain.BlockScheduled, domain.BlockAccepted, true},
			{domain.BlockScheduled, domain.BlockRejected, true},
			{domain.BlockScheduled, domain.BlockMissed, true},
			{domain.BlockScheduled, domain.BlockCompleted, false},
			{domain.BlockAccepted, domain.BlockCompleted, true},
			{domain.BlockAccepted, domain.BlockMissed, true},
			{domain.BlockAccepted, domain.BlockRejected, false},
			{domain.BlockRejected, domain.BlockScheduled, false},
			{domain.BlockCompleted, domain.BlockMissed, false},
			{domain.BlockMissed, domain.BlockScheduled, false},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
		}
		assert.True(t, domain.BlockMissed.IsTerminal())
		assert.False(t, domain.BlockAccepted.IsTerminal())
	})

	t.Run("rejected and missed blocks free their time", func(t *testing.T) {
		assert.False(t, domain.BlockRejected.Occupies())
		assert.False(t, domain.BlockMissed.Occupies())
		assert.True(t, domain.BlockProposed.Occupies())
		assert.True(t, domain.BlockAccepted.Occupies())
		assert.True(t, domain.BlockCompleted.Occupies())
	})

	t.Run("move validates the range", func(t *testing.T) {
		b, err := domain.NewCalendarBlock(taskID, "Write report", at(9, 0), at(10, 0), now)
		require.NoError(t, err)
		assert.ErrorIs(t, b.Move(at(10, 0), at(9, 0), now), domain.ErrInvalidTimeRange)
		require.NoError(t, b.Move(at(11, 0), at(12, 0), now.Add(time.Minute)))
		assert.Equal(t, span(11, 0, 12, 0), b.Span())
		assert.Equal(t, now.Add(time.Minute), b.UpdatedAt())
	})

	t.Run("snapshot round trip", func(t *testing.T) {
		b, err := domain.NewCalendarBlock(taskID, "Write report", at(9, 0), at(10, 0), now)
		require.NoError(t, err)
		back := domain.RehydrateCalendarBlock(b.Snapshot())
		assert.Equal(t, b.Snapshot(), back.Snapshot())
	})

	t.Run("parse status", func(t *testing.T) {
		for _, want := range domain.BlockStatuses() {
			s, err := domain.ParseBlockStatus(string(want))
			require.NoError(t, err)
			assert.Equal(t, want, s)
		}
		assert.Len(t, domain.BlockStatuses(), 6)
		_, err := domain.ParseBlockStatus("confirmed")
		assert.ErrorIs(t, err, domain.ErrInvalidBlockStatus)
		_, err = domain.ParseBlockStatus("maybe")
		assert.ErrorIs(t, err, domain.ErrInvalidBlockStatus)
	})
}

func TestSchedulingResult_ScheduledMinutes(t *testing.T) {
	taskID := uuid.New()
	b1, _ := domain.NewCalendarBlock(taskID, "A (Part 1)", at(9, 0), at(10, 30), now)
	b2, _ := domain.NewCalendarBlock(taskID, "A (Part 2)", at(13, 0), at(15, 30), now)
	other, _ := domain.NewCalendarBlock(uuid.New(), "B", at(11, 0), at(12, 0), now)

	r := domain.SchedulingResult{Blocks: []*domain.CalendarBlock{b1, other, b2}}

	assert.Equal(t, 240, r.ScheduledMinutes(taskID))
}
