package pgrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mwongozo/backend/core"
	"github.com/mwongozo/backend/core/planning"
	"github.com/mwongozo/backend/core/task"
)

const eventColumns = `id, title, description, start_at, end_at, type, status, owner_id, task_id, objective_id, frequency, repeat_weekdays, created_at, updated_at`

type planningRepository struct {
	db core.DBExecutor
}

var _ planning.Repository = (*planningRepository)(nil) // interface compliance check

func NewPlanningRepository(db core.DBExecutor) *planningRepository {
	return &planningRepository{db: db}
}

func scanEvent(row rowScanner) (planning.Event, error) {
	var (
		ev                   planning.Event
		descr, freq          null.String
		days                 pq.Int64Array
		createdAt, updatedAt null.Time
	)
	if err := row.Scan(
		&ev.ID, &ev.Title, &descr, &ev.StartAt, &ev.EndAt, &ev.Type, &ev.Status, &ev.OwnerID,
		&ev.Provenance.TaskID, &ev.Provenance.ObjectiveID, &freq, &days, &createdAt, &updatedAt,
	); err != nil {
		return planning.Event{}, err
	}
	ev.Description = descr.String
	ev.Provenance.Frequency = task.Frequency(freq.String)
	ev.Provenance.RepeatWeekdays = int64sToWeekdays(days)
	ev.CreatedAt = createdAt.Time
	ev.UpdatedAt = updatedAt.Time
	return ev, nil
}

// CreateEvents inserts events in a single multi-row statement.
func (repo planningRepository) CreateEvents(
	ctx context.Context, events []planning.Event, exec ...core.DBExecutor,
) ([]planning.Event, error) {
	if len(events) == 0 {
		return nil, nil
	}

	const nCols = 14
	valueRows := make([]string, 0, len(events))
	args := make([]interface{}, 0, len(events)*nCols)
	for i := range events {
		events[i].ID = uuid.New().String()

		placeholders := make([]string, 0, nCols)
		for j := 1; j <= nCols; j++ {
			placeholders = append(placeholders, fmt.Sprintf("$%d", i*nCols+j))
		}
		valueRows = append(valueRows, "("+strings.Join(placeholders, ", ")+")")

		ev := events[i]
		args = append(args,
			ev.ID, ev.Title, null.NewString(ev.Description, ev.Description != ""),
			ev.StartAt, ev.EndAt, ev.Type, ev.Status, ev.OwnerID,
			ev.Provenance.TaskID, ev.Provenance.ObjectiveID, string(ev.Provenance.Frequency),
			weekdaysToInt64s(ev.Provenance.RepeatWeekdays), ev.CreatedAt, ev.UpdatedAt,
		)
	}

	query := `INSERT INTO event (` + eventColumns + `) VALUES ` + strings.Join(valueRows, ", ")
	if _, err := getExec(repo.db, exec).ExecContext(ctx, query, args...); err != nil {
		return nil, errors.Wrap(err, "inserting events")
	}
	return events, nil
}

func (repo planningRepository) GetEventByID(
	ctx context.Context, id string, exec ...core.DBExecutor,
) (planning.Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return planning.Event{}, planning.ErrNotFound
	}
	query := `SELECT ` + eventColumns + ` FROM event WHERE id = $1`
	ev, err := scanEvent(getExec(repo.db, exec).QueryRowContext(ctx, query, id))
	if err != nil {
		return planning.Event{}, trapNoRowsErr(err, planning.ErrNotFound, "finding event")
	}
	return ev, nil
}

func (repo planningRepository) QueryEventsByTask(
	ctx context.Context, taskID string, exec ...core.DBExecutor,
) ([]planning.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM event WHERE task_id = $1 ORDER BY start_at`
	return repo.queryEvents(ctx, query, []interface{}{taskID}, exec)
}

func (repo planningRepository) QueryEventsByOwner(
	ctx context.Context, ownerID string, from, to time.Time, exec ...core.DBExecutor,
) ([]planning.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM event WHERE owner_id = $1`
	args := []interface{}{ownerID}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(` AND end_at >= $%d`, len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(` AND start_at <= $%d`, len(args))
	}
	query += ` ORDER BY start_at`
	return repo.queryEvents(ctx, query, args, exec)
}

func (repo planningRepository) queryEvents(
	ctx context.Context, query string, args []interface{}, exec []core.DBExecutor,
) ([]planning.Event, error) {
	rows, err := getExec(repo.db, exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	defer func() { _ = rows.Close() }()

	var events []planning.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning event")
		}
		events = append(events, ev)
	}
	return events, errors.Wrap(rows.Err(), "querying events")
}

func (repo planningRepository) UpdateEvent(
	ctx context.Context, ev planning.Event, exec ...core.DBExecutor,
) (planning.Event, error) {
	query := `
		UPDATE event SET
			status     = $2,
			updated_at = $3
		WHERE id = $1
		RETURNING ` + eventColumns

	row := getExec(repo.db, exec).QueryRowContext(ctx, query, ev.ID, ev.Status, ev.UpdatedAt)
	updated, err := scanEvent(row)
	if err != nil {
		return planning.Event{}, trapNoRowsErr(err, planning.ErrNotFound, "updating event")
	}
	return updated, nil
}

func (repo planningRepository) DeleteEventsByTask(
	ctx context.Context, taskID string, exec ...core.DBExecutor,
) (int, error) {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM event WHERE task_id = $1`, taskID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting events")
	}
	cnt, err := res.RowsAffected()
	return int(cnt), errors.Wrap(err, "deleting events")
}
