package value_objects

import (
	"errors"
	"strconv"
	"strings"
)

// Importance is the caller-assigned impact of a task. The integer values
// are the ordinals used by the priority arithmetic and must not change.
type Importance int

const (
	ImportanceLow      Importance = 1
	ImportanceMedium   Importance = 2
	ImportanceHigh     Importance = 3
	ImportanceCritical Importance = 4
)

// MaxImportance is the ordinal ceiling used to normalise importance.
const MaxImportance = ImportanceCritical

var ErrInvalidImportance = errors.New("invalid importance value")

var importanceNames = map[Importance]string{
	ImportanceLow:      "low",
	ImportanceMedium:   "medium",
	ImportanceHigh:     "high",
	ImportanceCritical: "critical",
}

var importanceValues = map[string]Importance{
	"low":      ImportanceLow,
	"medium":   ImportanceMedium,
	"high":     ImportanceHigh,
	"critical": ImportanceCritical,
}

// ParseImportance accepts either a name ("high") or an ordinal ("3").
func ParseImportance(s string) (Importance, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i, ok := importanceValues[s]; ok {
		return i, nil
	}
	if n, err := strconv.Atoi(s); err == nil && Importance(n).IsValid() {
		return Importance(n), nil
	}
	return 0, ErrInvalidImportance
}

func (i Importance) String() string {
	if name, ok := importanceNames[i]; ok {
		return name
	}
	return "unknown"
}

// IsValid reports whether i is one of the defined ordinals.
func (i Importance) IsValid() bool {
	_, ok := importanceNames[i]
	return ok
}

// Ordinal returns the stable integer mapping.
func (i Importance) Ordinal() int {
	return int(i)
}
