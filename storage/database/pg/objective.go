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
	"github.com/mwongozo/backend/core/objective"
)

const objectiveColumns = `id, student_id, coach_id, title, description, deadline, created_at, updated_at`

type objectiveRepository struct {
	db core.DBExecutor
}

var _ objective.Repository = (*objectiveRepository)(nil) // interface compliance check

func NewObjectiveRepository(db core.DBExecutor) *objectiveRepository {
	return &objectiveRepository{db: db}
}

func scanObjective(row rowScanner) (objective.Objective, error) {
	var (
		obj                  objective.Objective
		descr                null.String
		createdAt, updatedAt null.Time
	)
	if err := row.Scan(
		&obj.ID, &obj.StudentID, &obj.CoachID, &obj.Title, &descr, &obj.Deadline, &createdAt, &updatedAt,
	); err != nil {
		return objective.Objective{}, err
	}
	obj.Description = descr.String
	obj.CreatedAt = createdAt.Time
	obj.UpdatedAt = updatedAt.Time
	return obj, nil
}

func (repo objectiveRepository) CreateObjective(
	ctx context.Context, obj objective.Objective, exec ...core.DBExecutor,
) (objective.Objective, error) {
	obj.ID = uuid.New().String()
	query := `
		INSERT INTO objective (` + objectiveColumns + `)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query,
		obj.ID, obj.StudentID, obj.CoachID, obj.Title, obj.Description, obj.Deadline,
		obj.CreatedAt, obj.UpdatedAt,
	)
	if err != nil {
		return objective.Objective{}, errors.Wrap(err, "inserting objective")
	}
	return obj, nil
}

func (repo objectiveRepository) GetObjectiveByID(
	ctx context.Context, id string, exec ...core.DBExecutor,
) (objective.Objective, error) {
	if _, err := uuid.Parse(id); err != nil {
		return objective.Objective{}, objective.ErrNotFound
	}
	query := `SELECT ` + objectiveColumns + ` FROM objective WHERE id = $1`
	obj, err := scanObjective(getExec(repo.db, exec).QueryRowContext(ctx, query, id))
	if err != nil {
		return objective.Objective{}, trapNoRowsErr(err, objective.ErrNotFound, "finding objective")
	}
	return obj, nil
}

func (repo objectiveRepository) QueryObjectives(
	ctx context.Context, filter *objective.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor,
) ([]objective.Objective, error) {
	query := `SELECT ` + objectiveColumns + ` FROM objective`
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
		if filter.StudentID != "" {
			conds = append(conds, "student_id = "+arg(filter.StudentID))
		}
		if filter.CoachID != "" {
			conds = append(conds, "coach_id = "+arg(filter.CoachID))
		}
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering)

	rows, err := getExec(repo.db, exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying objectives")
	}
	defer func() { _ = rows.Close() }()

	var objs []objective.Objective
	for rows.Next() {
		obj, err := scanObjective(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning objective")
		}
		objs = append(objs, obj)
	}
	return objs, errors.Wrap(rows.Err(), "querying objectives")
}

func (repo objectiveRepository) UpdateObjective(
	ctx context.Context, obj objective.Objective, exec ...core.DBExecutor,
) (objective.Objective, error) {
	query := `
		UPDATE objective SET
			title       = $2,
			description = NULLIF($3, ''),
			deadline    = $4,
			updated_at  = $5
		WHERE id = $1
		RETURNING ` + objectiveColumns

	row := getExec(repo.db, exec).QueryRowContext(ctx, query,
		obj.ID, obj.Title, obj.Description, obj.Deadline, obj.UpdatedAt,
	)
	updated, err := scanObjective(row)
	if err != nil {
		return objective.Objective{}, trapNoRowsErr(err, objective.ErrNotFound, "updating objective")
	}
	return updated, nil
}

func (repo objectiveRepository) DeleteObjectivesByID(
	ctx context.Context, ids []string, exec ...core.DBExecutor,
) (int, error) {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM objective WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting objectives")
	}
	cnt, err := res.RowsAffected()
	return int(cnt), errors.Wrap(err, "deleting objectives")
}
