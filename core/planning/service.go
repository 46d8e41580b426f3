package planning

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mwongozo/backend/core"
	"github.com/mwongozo/backend/core/objective"
	"github.com/mwongozo/backend/core/task"
)

var (
	// errors
	ErrNotFound        = errors.New("event not found")
	ErrMissingAssignee = errors.New("task has no assignee to own its events")
)

type (
	// Repository is the persistence boundary for generated calendar events.
	Repository interface {
		CreateEvents(ctx context.Context, events []Event, exec ...core.DBExecutor) ([]Event, error)
		GetEventByID(ctx context.Context, id string, exec ...core.DBExecutor) (Event, error)
		QueryEventsByTask(ctx context.Context, taskID string, exec ...core.DBExecutor) ([]Event, error)
		// QueryEventsByOwner returns ownerID's events overlapping [from, to];
		// a zero bound is unbounded on that side.
		QueryEventsByOwner(ctx context.Context, ownerID string, from, to time.Time, exec ...core.DBExecutor) ([]Event, error)
		UpdateEvent(ctx context.Context, ev Event, exec ...core.DBExecutor) (Event, error)
		DeleteEventsByTask(ctx context.Context, taskID string, exec ...core.DBExecutor) (int, error)
	}

	// Notifier is told when a task's planning has been regenerated.
	Notifier interface {
		PlanningUpdated(t task.Task, events []Event)
	}

	Service struct {
		repo     Repository
		taskRepo task.Repository
		objRepo  objective.Repository
		logger   core.Logger
		notif    Notifier // optional
	}
)

var _ task.Planner = (*Service)(nil)

func NewService(repo Repository, taskRepo task.Repository, objRepo objective.Repository, logger core.Logger, notif Notifier) *Service {
	return &Service{
		repo:     repo,
		taskRepo: taskRepo,
		objRepo:  objRepo,
		logger:   logger,
		notif:    notif,
	}
}

// materializeEvent turns one occurrence into a persistable event record.
// Pure construction; fails with ErrMissingAssignee when the task has no
// resolvable owner for the event.
func materializeEvent(occ Occurrence, t task.Task) (Event, error) {
	if t.AssigneeID == "" {
		return Event{}, ErrMissingAssignee
	}
	now := time.Now().UTC()
	return Event{
		Title:       t.Title,
		Description: t.Description,
		StartAt:     occ.Start,
		EndAt:       occ.End,
		Type:        EventTypeTaskGenerated,
		Status:      EventStatusToDo,
		OwnerID:     t.AssigneeID,
		Provenance: Provenance{
			TaskID:         t.ID,
			ObjectiveID:    t.ObjectiveID,
			Frequency:      t.Frequency,
			RepeatWeekdays: t.RepeatWeekdays,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// RegenerateTask replaces all events carrying taskID's provenance with the
// set implied by the task's current rule, and returns the created event ids.
//
// A missing task or objective, or an unresolvable window, skips generation
// silently and leaves any prior events untouched. ErrMissingAssignee is
// reported after the prior set has been removed: the task's calendar is never
// left as a mix of old and new events.
//
// Not safe against itself for the same task id; callers serialize per task.
func (svc *Service) RegenerateTask(ctx context.Context, taskID string) ([]string, error) {
	t, err := svc.taskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Cause(err) == task.ErrNotFound {
			svc.logger.Debug("planning: skipping generation, task not found", taskID)
			return nil, nil
		}
		return nil, errors.Wrap(err, "loading task")
	}
	obj, err := svc.objRepo.GetObjectiveByID(ctx, t.ObjectiveID)
	if err != nil {
		if errors.Cause(err) == objective.ErrNotFound {
			svc.logger.Debug("planning: skipping generation, objective not found", t.ObjectiveID)
			return nil, nil
		}
		return nil, errors.Wrap(err, "loading objective")
	}

	w, err := ResolveWindow(t, obj)
	if err != nil {
		// nothing to generate; prior events are deliberately kept
		svc.logger.Debug("planning: skipping generation, unresolvable window", taskID)
		return nil, nil
	}

	occs := Expand(w, t.Frequency, t.RepeatWeekdays)

	if _, err := svc.repo.DeleteEventsByTask(ctx, taskID); err != nil {
		return nil, errors.Wrap(err, "clearing prior events")
	}

	events := make([]Event, 0, len(occs))
	for _, occ := range occs {
		ev, mErr := materializeEvent(occ, t)
		if mErr != nil {
			// abort the whole batch; prior set is already removed, none inserted
			return nil, mErr
		}
		events = append(events, ev)
	}
	if len(events) == 0 {
		return []string{}, nil
	}

	events, err = svc.repo.CreateEvents(ctx, events)
	if err != nil {
		return nil, errors.Wrap(err, "inserting events")
	}

	if svc.notif != nil {
		svc.notif.PlanningUpdated(t, events)
	}

	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	return ids, nil
}

// ClearTask removes all events carrying taskID's provenance without re-expanding.
func (svc *Service) ClearTask(ctx context.Context, taskID string) error {
	_, err := svc.repo.DeleteEventsByTask(ctx, taskID)
	return errors.Wrap(err, "clearing events")
}

func (svc *Service) GetEventByID(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEventByID(ctx, id)
}

func (svc *Service) QueryByTask(ctx context.Context, taskID string) ([]Event, error) {
	return svc.repo.QueryEventsByTask(ctx, taskID)
}

// Agenda returns ownerID's events overlapping [from, to], a zero bound being open.
func (svc *Service) Agenda(ctx context.Context, ownerID string, from, to time.Time) ([]Event, error) {
	return svc.repo.QueryEventsByOwner(ctx, ownerID, from, to)
}

func (svc *Service) UpdateEventStatus(ctx context.Context, id string, ue UpdateEvent) (Event, error) {
	ev, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	ev.Status = ue.Status
	ev.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, ev)
}
