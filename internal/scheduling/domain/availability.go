package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidClockTime   = errors.New("clock time must be HH:MM between 00:00 and 24:00")
	ErrInvalidWindow      = errors.New("availability window must end after it starts")
	ErrOverlappingWindows = errors.New("availability windows overlap")
)

// ClockTime is a wall-clock time of day in minutes since midnight. 24:00
// is allowed as an end-of-day bound.
type ClockTime int

// NewClockTime builds a ClockTime from hour and minute.
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || minute < 0 || minute > 59 || hour > 24 || (hour == 24 && minute != 0) {
		return 0, ErrInvalidClockTime
	}
	return ClockTime(hour*60 + minute), nil
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	return NewClockTime(h, m)
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On returns the instant this wall-clock time falls on the given date in
// loc. 24:00 is the following midnight.
func (c ClockTime) On(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, c.Hour(), c.Minute(), 0, 0, loc)
}

// AvailabilityWindow is a recurring weekly window of working time.
type AvailabilityWindow struct {
	Weekday time.Weekday `json:"weekday"`
	Start   ClockTime    `json:"start"`
	End     ClockTime    `json:"end"`
}

// NewAvailabilityWindow validates and creates a window.
func NewAvailabilityWindow(weekday time.Weekday, start, end ClockTime) (AvailabilityWindow, error) {
	w := AvailabilityWindow{Weekday: weekday, Start: start, End: end}
	if err := w.Validate(); err != nil {
		return AvailabilityWindow{}, err
	}
	return w, nil
}

func (w AvailabilityWindow) Validate() error {
	if w.Weekday < time.Sunday || w.Weekday > time.Saturday {
		return fmt.Errorf("invalid weekday %d", w.Weekday)
	}
	if w.Start < 0 || w.End > 24*60 || w.End <= w.Start {
		return ErrInvalidWindow
	}
	return nil
}

// Default working hours applied to weekdays when no windows are configured.
var (
	DefaultWorkdayStart = ClockTime(9 * 60)
	DefaultWorkdayEnd   = ClockTime(17 * 60)
)

// IsWeekday reports whether d falls Monday through Friday.
func IsWeekday(d time.Weekday) bool {
	return d != time.Saturday && d != time.Sunday
}

// DefaultWindow returns the 09:00-17:00 window for a weekday.
func DefaultWindow(d time.Weekday) AvailabilityWindow {
	return AvailabilityWindow{Weekday: d, Start: DefaultWorkdayStart, End: DefaultWorkdayEnd}
}

// ParseWeekday accepts English day names, their three letter forms, or 0-6.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	if len(s) == 1 && s[0] >= '0' && s[0] <= '6' {
		return time.Weekday(s[0] - '0'), nil
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// ValidateWindows checks each window and rejects overlaps on the same day.
func ValidateWindows(windows []AvailabilityWindow) error {
	for i, w := range windows {
		if err := w.Validate(); err != nil {
			return err
		}
		for _, other := range windows[:i] {
			if other.Weekday == w.Weekday && w.Start < other.End && other.Start < w.End {
				return fmt.Errorf("%w: %s %s-%s and %s-%s", ErrOverlappingWindows,
					w.Weekday, other.Start, other.End, w.Start, w.End)
			}
		}
	}
	return nil
}
