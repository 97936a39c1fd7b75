package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLBlockRepository implements domain.BlockRepository for SQLite and
// PostgreSQL.
type SQLBlockRepository struct {
	conn database.Connection
}

// NewSQLBlockRepository creates a new block repository over conn.
func NewSQLBlockRepository(conn database.Connection) *SQLBlockRepository {
	return &SQLBlockRepository{conn: conn}
}

func (r *SQLBlockRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

const blockColumns = `id, task_id, title, start_time, end_time, status, created_at, updated_at`

const upsertBlock = `
INSERT INTO calendar_blocks (` + blockColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    title      = excluded.title,
    start_time = excluded.start_time,
    end_time   = excluded.end_time,
    status     = excluded.status,
    updated_at = excluded.updated_at`

// Save inserts or updates a block.
func (r *SQLBlockRepository) Save(ctx context.Context, b *domain.CalendarBlock) error {
	s := b.Snapshot()

	var taskID any
	if s.TaskID != uuid.Nil {
		taskID = s.TaskID.String()
	}

	d := r.conn.Driver()
	_, err := r.exec(ctx).Exec(ctx, d.Rebind(upsertBlock),
		s.ID.String(),
		taskID,
		s.Title,
		d.TimeArg(s.Start),
		d.TimeArg(s.End),
		string(s.Status),
		d.TimeArg(s.CreatedAt),
		d.TimeArg(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save block %s: %w", s.ID, err)
	}
	return nil
}

// FindByID retrieves a block by its ID.
func (r *SQLBlockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.CalendarBlock, error) {
	row := r.exec(ctx).QueryRow(ctx,
		r.conn.Driver().Rebind(`SELECT `+blockColumns+` FROM calendar_blocks WHERE id = ?`),
		id.String())

	b, err := scanBlock(row)
	if database.IsNoRows(err) {
		return nil, domain.ErrBlockNotFound
	}
	return b, err
}

// FindInRange returns blocks overlapping [start, end), ordered by start.
func (r *SQLBlockRepository) FindInRange(ctx context.Context, start, end time.Time) ([]*domain.CalendarBlock, error) {
	d := r.conn.Driver()
	rows, err := r.exec(ctx).Query(ctx,
		d.Rebind(`SELECT `+blockColumns+` FROM calendar_blocks
WHERE start_time < ? AND end_time > ?
ORDER BY start_time, created_at`),
		d.TimeArg(end), d.TimeArg(start))
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	var blocks []*domain.CalendarBlock
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func scanBlock(row database.Row) (*domain.CalendarBlock, error) {
	var (
		id, status           string
		taskID               sql.NullString
		s                    domain.BlockState
		start, end           database.Time
		createdAt, updatedAt database.Time
	)
	err := row.Scan(&id, &taskID, &s.Title, &start, &end, &status, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scan block: %w", err)
	}

	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse block id: %w", err)
	}
	if taskID.Valid {
		if s.TaskID, err = uuid.Parse(taskID.String); err != nil {
			return nil, fmt.Errorf("block %s task id: %w", id, err)
		}
	}
	if s.Status, err = domain.ParseBlockStatus(status); err != nil {
		return nil, fmt.Errorf("block %s: %w", id, err)
	}
	s.Start = start.Time
	s.End = end.Time
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time
	return domain.RehydrateCalendarBlock(s), nil
}
