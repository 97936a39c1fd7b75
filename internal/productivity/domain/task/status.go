package task

import (
	"errors"
	"strings"
)

var ErrInvalidStatus = errors.New("invalid task status")

// Status represents the task lifecycle state.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusBlocked
	StatusCompleted
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusNotStarted: "not_started",
	StatusInProgress: "in_progress",
	StatusBlocked:    "blocked",
	StatusCompleted:  "completed",
	StatusCancelled:  "cancelled",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStatus converts a persisted or user supplied status name.
func ParseStatus(s string) (Status, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return StatusNotStarted, ErrInvalidStatus
}

// IsClosed reports whether the task is finished for scheduling purposes.
func (s Status) IsClosed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// OpenStatuses lists the statuses a scheduler may still act on.
func OpenStatuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusBlocked}
}
