package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	"github.com/felixgeelhaar/cadence/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLTaskRepository implements task.Repository for SQLite and PostgreSQL.
type SQLTaskRepository struct {
	conn database.Connection
}

// NewSQLTaskRepository creates a new task repository over conn.
func NewSQLTaskRepository(conn database.Connection) *SQLTaskRepository {
	return &SQLTaskRepository{conn: conn}
}

func (r *SQLTaskRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

const taskColumns = `id, title, estimated_minutes, difficulty, importance, due_date, dependencies,
       status, priority_score, priority_rationale, scored_at, scored_revision, revision,
       created_at, updated_at`

const upsertTask = `
INSERT INTO tasks (` + taskColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    title              = excluded.title,
    estimated_minutes  = excluded.estimated_minutes,
    difficulty         = excluded.difficulty,
    importance         = excluded.importance,
    due_date           = excluded.due_date,
    dependencies       = excluded.dependencies,
    status             = excluded.status,
    priority_score     = excluded.priority_score,
    priority_rationale = excluded.priority_rationale,
    scored_at          = excluded.scored_at,
    scored_revision    = excluded.scored_revision,
    revision           = excluded.revision,
    updated_at         = excluded.updated_at`

// Save inserts or updates a task.
func (r *SQLTaskRepository) Save(ctx context.Context, t *task.Task) error {
	s := t.Snapshot()

	deps := make([]string, len(s.Dependencies))
	for i, id := range s.Dependencies {
		deps[i] = id.String()
	}
	depsJSON, err := json.Marshal(deps)
	if err != nil {
		return fmt.Errorf("marshal dependencies: %w", err)
	}

	d := r.conn.Driver()
	_, err = r.exec(ctx).Exec(ctx, d.Rebind(upsertTask),
		s.ID.String(),
		s.Title,
		s.EstimatedMinutes,
		s.Difficulty.Ordinal(),
		s.Importance.Ordinal(),
		d.NullTimeArg(s.DueDate),
		string(depsJSON),
		s.Status.String(),
		s.PriorityScore,
		s.PriorityRationale,
		d.NullTimeArg(s.ScoredAt),
		s.ScoredRevision,
		s.Revision,
		d.TimeArg(s.CreatedAt),
		d.TimeArg(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save task %s: %w", s.ID, err)
	}
	return nil
}

// FindByID retrieves a task by its ID.
func (r *SQLTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	row := r.exec(ctx).QueryRow(ctx,
		r.conn.Driver().Rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`),
		id.String())

	t, err := scanTask(row)
	if database.IsNoRows(err) {
		return nil, task.ErrTaskNotFound
	}
	return t, err
}

// List returns tasks matching filter, highest stored priority first.
func (r *SQLTaskRepository) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	d := r.conn.Driver()

	var (
		where []string
		args  []any
	)
	if len(filter.Statuses) > 0 {
		marks := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			marks[i] = "?"
			args = append(args, s.String())
		}
		where = append(where, "status IN ("+strings.Join(marks, ", ")+")")
	}
	if filter.DueBefore != nil {
		where = append(where, "due_date IS NOT NULL AND due_date < ?")
		args = append(args, d.TimeArg(*filter.DueBefore))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY priority_score DESC, created_at ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.exec(ctx).Query(ctx, d.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(row database.Row) (*task.Task, error) {
	var (
		id, deps, status       string
		difficulty, importance int
		dueDate, scoredAt      database.Time
		createdAt, updatedAt   database.Time
		s                      task.State
	)
	err := row.Scan(
		&id, &s.Title, &s.EstimatedMinutes, &difficulty, &importance, &dueDate, &deps,
		&status, &s.PriorityScore, &s.PriorityRationale, &scoredAt, &s.ScoredRevision, &s.Revision,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse task id: %w", err)
	}
	if s.Status, err = task.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("task %s: %w", id, err)
	}
	s.Difficulty = value_objects.Difficulty(difficulty)
	if !s.Difficulty.IsValid() {
		return nil, fmt.Errorf("task %s: %w", id, value_objects.ErrInvalidDifficulty)
	}
	s.Importance = value_objects.Importance(importance)
	if !s.Importance.IsValid() {
		return nil, fmt.Errorf("task %s: %w", id, value_objects.ErrInvalidImportance)
	}

	var depIDs []string
	if err := json.Unmarshal([]byte(deps), &depIDs); err != nil {
		return nil, fmt.Errorf("task %s dependencies: %w", id, err)
	}
	for _, dep := range depIDs {
		depID, err := uuid.Parse(dep)
		if err != nil {
			return nil, fmt.Errorf("task %s dependency: %w", id, err)
		}
		s.Dependencies = append(s.Dependencies, depID)
	}

	s.DueDate = dueDate.Ptr()
	s.ScoredAt = scoredAt.Ptr()
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time
	return task.Rehydrate(s), nil
}
