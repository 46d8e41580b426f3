package task

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mwongozo/backend/core"
)

var (
	// errors
	ErrNotFound = errors.New("task not found")
)

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task, exec ...core.DBExecutor) (Task, error)
		GetTaskByID(ctx context.Context, id string, exec ...core.DBExecutor) (Task, error)
		// QueryTasks applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Task.Title or Task.Description.
		QueryTasks(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Task, error)
		UpdateTask(ctx context.Context, t Task, exec ...core.DBExecutor) (Task, error)
		DeleteTasksByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	// Planner keeps a task's generated calendar events in sync with its
	// recurrence rule. Implemented by the planning service.
	//
	// Callers must serialize calls per task id; two concurrent regenerations
	// of the same task can interleave their delete and insert phases.
	Planner interface {
		// RegenerateTask replaces all events generated for taskID with the set
		// implied by its current rule and returns the created event ids.
		RegenerateTask(ctx context.Context, taskID string) ([]string, error)
		// ClearTask removes all events generated for taskID without re-expanding.
		ClearTask(ctx context.Context, taskID string) error
	}

	Service struct {
		repo    Repository
		planner Planner
		logger  core.Logger
	}
)

func NewService(repo Repository, planner Planner, logger core.Logger) *Service {
	return &Service{repo: repo, planner: planner, logger: logger}
}

func (svc *Service) Create(ctx context.Context, nt NewTask) (Task, error) {
	now := time.Now().UTC()
	t := Task{
		ObjectiveID:    nt.ObjectiveID,
		AssigneeID:     nt.AssigneeID,
		Title:          nt.Title,
		Description:    nt.Description,
		Frequency:      nt.Frequency,
		RepeatWeekdays: nt.RepeatWeekdays,
		StartAt:        nt.StartAt,
		DueDate:        nt.DueDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	t, err := svc.repo.CreateTask(ctx, t)
	if err != nil {
		return Task{}, err
	}
	if _, err := svc.planner.RegenerateTask(ctx, t.ID); err != nil {
		return Task{}, errors.Wrap(err, "generating planning")
	}
	return t, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Task, error) {
	return svc.repo.GetTaskByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Task, error) {
	return svc.repo.QueryTasks(ctx, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, id string, tu UpdateTask) (Task, error) {
	t, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	t, err = svc.repo.UpdateTask(ctx, tu.Apply(t))
	if err != nil {
		return Task{}, err
	}
	if _, err := svc.planner.RegenerateTask(ctx, t.ID); err != nil {
		return Task{}, errors.Wrap(err, "regenerating planning")
	}
	return t, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if err := svc.planner.ClearTask(ctx, id); err != nil {
			return errors.Wrap(err, "clearing planning")
		}
	}
	_, err := svc.repo.DeleteTasksByID(ctx, ids)
	return err
}
