package value_objects

import (
	"errors"
	"strconv"
	"strings"
)

// Difficulty is the expected cognitive effort of a task, 1 (trivial) to 5.
type Difficulty int

const (
	DifficultyTrivial  Difficulty = 1
	DifficultyEasy     Difficulty = 2
	DifficultyModerate Difficulty = 3
	DifficultyHard     Difficulty = 4
	DifficultyExtreme  Difficulty = 5
)

// MaxDifficulty is the ordinal ceiling used to normalise difficulty.
const MaxDifficulty = DifficultyExtreme

var ErrInvalidDifficulty = errors.New("invalid difficulty value")

var difficultyNames = map[Difficulty]string{
	DifficultyTrivial:  "trivial",
	DifficultyEasy:     "easy",
	DifficultyModerate: "moderate",
	DifficultyHard:     "hard",
	DifficultyExtreme:  "extreme",
}

var difficultyValues = map[string]Difficulty{
	"trivial":  DifficultyTrivial,
	"easy":     DifficultyEasy,
	"moderate": DifficultyModerate,
	"hard":     DifficultyHard,
	"extreme":  DifficultyExtreme,
}

// ParseDifficulty accepts either a name ("easy") or an ordinal ("2").
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if d, ok := difficultyValues[s]; ok {
		return d, nil
	}
	if n, err := strconv.Atoi(s); err == nil && Difficulty(n).IsValid() {
		return Difficulty(n), nil
	}
	return 0, ErrInvalidDifficulty
}

func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return "unknown"
}

func (d Difficulty) IsValid() bool {
	_, ok := difficultyNames[d]
	return ok
}

func (d Difficulty) Ordinal() int {
	return int(d)
}
