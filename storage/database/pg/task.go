package pgrepos

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mwongozo/backend/core"
	"github.com/mwongozo/backend/core/task"
)

const taskColumns = `id, objective_id, assignee_id, title, description, frequency, repeat_weekdays, start_at, due_date, created_at, updated_at`

type taskRepository struct {
	db core.DBExecutor
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db core.DBExecutor) *taskRepository {
	return &taskRepository{db: db}
}

func weekdaysToInt64s(days []task.Weekday) pq.Int64Array {
	arr := make(pq.Int64Array, 0, len(days))
	for _, d := range days {
		arr = append(arr, int64(d))
	}
	return arr
}

func int64sToWeekdays(arr pq.Int64Array) []task.Weekday {
	if len(arr) == 0 {
		return nil
	}
	days := make([]task.Weekday, 0, len(arr))
	for _, v := range arr {
		days = append(days, task.Weekday(v))
	}
	return days
}

func scanTask(row rowScanner) (task.Task, error) {
	var (
		t                    task.Task
		assigneeID, descr    null.String
		freq                 null.String
		days                 pq.Int64Array
		createdAt, updatedAt null.Time
	)
	if err := row.Scan(
		&t.ID, &t.ObjectiveID, &assigneeID, &t.Title, &descr, &freq, &days,
		&t.StartAt, &t.DueDate, &createdAt, &updatedAt,
	); err != nil {
		return task.Task{}, err
	}
	t.AssigneeID = assigneeID.String
	t.Description = descr.String
	t.Frequency = task.Frequency(freq.String)
	t.RepeatWeekdays = int64sToWeekdays(days)
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time
	return t, nil
}

func (repo taskRepository) CreateTask(ctx context.Context, t task.Task, exec ...core.DBExecutor) (task.Task, error) {
	t.ID = uuid.New().String()
	query := `
		INSERT INTO task (` + taskColumns + `)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query,
		t.ID, t.ObjectiveID, t.AssigneeID, t.Title, t.Description, string(t.Frequency),
		weekdaysToInt64s(t.RepeatWeekdays), t.StartAt, t.DueDate, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	return t, nil
}

func (repo taskRepository) GetTaskByID(ctx context.Context, id string, exec ...core.DBExecutor) (task.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return task.Task{}, task.ErrNotFound
	}
	query := `SELECT ` + taskColumns + ` FROM task WHERE id = $1`
	t, err := scanTask(getExec(repo.db, exec).QueryRowContext(ctx, query, id))
	if err != nil {
		return task.Task{}, trapNoRowsErr(err, task.ErrNotFound, "finding task")
	}
	return t, nil
}

func (repo taskRepository) QueryTasks(
	ctx context.Context, filter *task.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor,
) ([]task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM task`
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			conds = append(conds, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", p, p))
		}
		if filter.ObjectiveID != "" {
			conds = append(conds, "objective_id = "+arg(filter.ObjectiveID))
		}
		if filter.AssigneeID != "" {
			conds = append(conds, "assignee_id = "+arg(filter.AssigneeID))
		}
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering)

	rows, err := getExec(repo.db, exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	defer func() { _ = rows.Close() }()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning task")
		}
		tasks = append(tasks, t)
	}
	return tasks, errors.Wrap(rows.Err(), "querying tasks")
}

func (repo taskRepository) UpdateTask(ctx context.Context, t task.Task, exec ...core.DBExecutor) (task.Task, error) {
	query := `
		UPDATE task SET
			assignee_id     = NULLIF($2, ''),
			title           = $3,
			description     = NULLIF($4, ''),
			frequency       = $5,
			repeat_weekdays = $6,
			start_at        = $7,
			due_date        = $8,
			updated_at      = $9
		WHERE id = $1
		RETURNING ` + taskColumns

	row := getExec(repo.db, exec).QueryRowContext(ctx, query,
		t.ID, t.AssigneeID, t.Title, t.Description, string(t.Frequency),
		weekdaysToInt64s(t.RepeatWeekdays), t.StartAt, t.DueDate, t.UpdatedAt,
	)
	updated, err := scanTask(row)
	if err != nil {
		return task.Task{}, trapNoRowsErr(err, task.ErrNotFound, "updating task")
	}
	return updated, nil
}

func (repo taskRepository) DeleteTasksByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM task WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting tasks")
	}
	cnt, err := res.RowsAffected()
	return int(cnt), errors.Wrap(err, "deleting tasks")
}
