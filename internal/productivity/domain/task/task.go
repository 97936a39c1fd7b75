package task

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/felixgeelhaar/cadence/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/cadence/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrEmptyTitle        = errors.New("task title cannot be empty")
	ErrInvalidEstimate   = errors.New("estimated minutes must be positive")
	ErrTaskClosed        = errors.New("task is completed or cancelled")
	ErrSelfDependency    = errors.New("task cannot depend on itself")
	ErrScoreOutOfRange   = errors.New("priority score must be within [0,1]")
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Task is a unit of work the scheduler places on the calendar. The engine
// only ever writes the derived priority fields.
type Task struct {
	domain.BaseAggregateRoot
	title             string
	estimatedMinutes  int
	difficulty        value_objects.Difficulty
	importance        value_objects.Importance
	dueDate           *time.Time
	dependencies      []uuid.UUID
	status            Status
	priorityScore     float64
	priorityRationale string
	scoredAt          *time.Time
	scoredRevision    int
}

// NewTask creates a not-started task with medium importance and moderate difficulty.
func NewTask(title string, estimatedMinutes int, now time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if estimatedMinutes <= 0 {
		return nil, ErrInvalidEstimate
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(now),
		title:             title,
		estimatedMinutes:  estimatedMinutes,
		difficulty:        value_objects.DifficultyModerate,
		importance:        value_objects.ImportanceMedium,
		status:            StatusNotStarted,
	}
	t.AddDomainEvent(NewTaskCreated(t.ID(), t.title, t.estimatedMinutes, now))
	return t, nil
}

func (t *Task) Title() string                        { return t.title }
func (t *Task) EstimatedMinutes() int                { return t.estimatedMinutes }
func (t *Task) Difficulty() value_objects.Difficulty { return t.difficulty }
func (t *Task) Importance() value_objects.Importance { return t.importance }
func (t *Task) DueDate() *time.Time                  { return t.dueDate }
func (t *Task) Status() Status                       { return t.status }
func (t *Task) PriorityScore() float64               { return t.priorityScore }
func (t *Task) PriorityRationale() string            { return t.priorityRationale }
func (t *Task) ScoredAt() *time.Time                 { return t.scoredAt }

// Dependencies returns a copy of the dependency IDs.
func (t *Task) Dependencies() []uuid.UUID {
	return slices.Clone(t.dependencies)
}

// HasDependencies reports whether the task waits on other tasks.
func (t *Task) HasDependencies() bool {
	return len(t.dependencies) > 0
}

// SetTitle renames the task. Titles do not affect scoring.
func (t *Task) SetTitle(title string, now time.Time) error {
	if t.status.IsClosed() {
		return ErrTaskClosed
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	t.title = title
	t.TouchAt(now)
	return nil
}

// SetEstimatedMinutes updates the size of the task.
func (t *Task) SetEstimatedMinutes(minutes int, now time.Time) error {
	if minutes <= 0 {
		return ErrInvalidEstimate
	}
	return t.mutate("estimated_minutes", now, func() { t.estimatedMinutes = minutes })
}

// SetImportance updates the importance ordinal.
func (t *Task) SetImportance(importance value_objects.Importance, now time.Time) error {
	if !importance.IsValid() {
		return value_objects.ErrInvalidImportance
	}
	return t.mutate("importance", now, func() { t.importance = importance })
}

// SetDifficulty updates the difficulty ordinal.
func (t *Task) SetDifficulty(difficulty value_objects.Difficulty, now time.Time) error {
	if !difficulty.IsValid() {
		return value_objects.ErrInvalidDifficulty
	}
	return t.mutate("difficulty", now, func() { t.difficulty = difficulty })
}

// SetDueDate sets or clears the due date.
func (t *Task) SetDueDate(due *time.Time, now time.Time) error {
	return t.mutate("due_date", now, func() {
		if due == nil {
			t.dueDate = nil
			return
		}
		d := due.UTC()
		t.dueDate = &d
	})
}

// SetDependencies replaces the dependency list. Duplicates are dropped.
func (t *Task) SetDependencies(ids []uuid.UUID, now time.Time) error {
	deps := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == t.ID() {
			return ErrSelfDependency
		}
		if !slices.Contains(deps, id) {
			deps = append(deps, id)
		}
	}
	return t.mutate("dependencies", now, func() { t.dependencies = deps })
}

// ChangeStatus moves the task through its lifecycle. Closed tasks stay closed.
func (t *Task) ChangeStatus(status Status, now time.Time) error {
	if _, ok := statusNames[status]; !ok {
		return ErrInvalidStatus
	}
	if t.status == status {
		return nil
	}
	if t.status.IsClosed() {
		return ErrInvalidTransition
	}
	t.status = status
	t.Bump(now)
	t.AddDomainEvent(NewTaskUpdated(t.ID(), []string{"status"}, now))
	return nil
}

// ApplyPriority stores a freshly computed score. It does not bump the
// revision: the revision tracks scoring inputs, not outputs.
func (t *Task) ApplyPriority(score float64, rationale string, now time.Time) error {
	if score < 0 || score > 1 {
		return ErrScoreOutOfRange
	}
	at := now.UTC()
	t.priorityScore = score
	t.priorityRationale = rationale
	t.scoredAt = &at
	t.scoredRevision = t.Revision()
	t.TouchAt(now)
	t.AddDomainEvent(NewTaskPriorityScored(t.ID(), score, rationale, now))
	return nil
}

// NeedsRescore reports whether the stored score is missing, was computed
// against an older revision, or is older than maxAge. A zero maxAge
// disables the age check.
func (t *Task) NeedsRescore(now time.Time, maxAge time.Duration) bool {
	if t.scoredAt == nil || t.scoredRevision != t.Revision() {
		return true
	}
	return maxAge > 0 && now.Sub(*t.scoredAt) > maxAge
}

func (t *Task) mutate(field string, now time.Time, apply func()) error {
	if t.status.IsClosed() {
		return ErrTaskClosed
	}
	apply()
	t.Bump(now)
	t.AddDomainEvent(NewTaskUpdated(t.ID(), []string{field}, now))
	return nil
}

// State is the persisted shape of a task.
type State struct {
	ID                uuid.UUID
	Title             string
	EstimatedMinutes  int
	Difficulty        value_objects.Difficulty
	Importance        value_objects.Importance
	DueDate           *time.Time
	Dependencies      []uuid.UUID
	Status            Status
	PriorityScore     float64
	PriorityRationale string
	ScoredAt          *time.Time
	ScoredRevision    int
	Revision          int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Snapshot exports the task for persistence.
func (t *Task) Snapshot() State {
	return State{
		ID:                t.ID(),
		Title:             t.title,
		EstimatedMinutes:  t.estimatedMinutes,
		Difficulty:        t.difficulty,
		Importance:        t.importance,
		DueDate:           t.dueDate,
		Dependencies:      t.Dependencies(),
		Status:            t.status,
		PriorityScore:     t.priorityScore,
		PriorityRationale: t.priorityRationale,
		ScoredAt:          t.scoredAt,
		ScoredRevision:    t.scoredRevision,
		Revision:          t.Revision(),
		CreatedAt:         t.CreatedAt(),
		UpdatedAt:         t.UpdatedAt(),
	}
}

// Rehydrate recreates a task from persisted state without recording events.
func Rehydrate(s State) *Task {
	return &Task{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(s.ID, s.CreatedAt, s.UpdatedAt, s.Revision),
		title:             s.Title,
		estimatedMinutes:  s.EstimatedMinutes,
		difficulty:        s.Difficulty,
		importance:        s.Importance,
		dueDate:           s.DueDate,
		dependencies:      slices.Clone(s.Dependencies),
		status:            s.Status,
		priorityScore:     s.PriorityScore,
		priorityRationale: s.PriorityRationale,
		scoredAt:          s.ScoredAt,
		scoredRevision:    s.ScoredRevision,
	}
}
