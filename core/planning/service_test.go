package planning

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/mwongozo/backend/core"
	"github.com/mwongozo/backend/core/objective"
	"github.com/mwongozo/backend/core/task"
)

// test doubles

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type stubTaskRepo struct {
	tasks map[string]task.Task
}

func (r *stubTaskRepo) CreateTask(_ context.Context, t task.Task, _ ...core.DBExecutor) (task.Task, error) {
	r.tasks[t.ID] = t
	return t, nil
}

func (r *stubTaskRepo) GetTaskByID(_ context.Context, id string, _ ...core.DBExecutor) (task.Task, error) {
	if t, ok := r.tasks[id]; ok {
		return t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (r *stubTaskRepo) QueryTasks(_ context.Context, _ *task.QueryFilter, _ []core.DBOrdering, _ ...core.DBExecutor) ([]task.Task, error) {
	return nil, nil
}

func (r *stubTaskRepo) UpdateTask(_ context.Context, t task.Task, _ ...core.DBExecutor) (task.Task, error) {
	r.tasks[t.ID] = t
	return t, nil
}

func (r *stubTaskRepo) DeleteTasksByID(_ context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	for _, id := range ids {
		delete(r.tasks, id)
	}
	return len(ids), nil
}

type stubObjRepo struct {
	objs map[string]objective.Objective
}

func (r *stubObjRepo) CreateObjective(_ context.Context, obj objective.Objective, _ ...core.DBExecutor) (objective.Objective, error) {
	r.objs[obj.ID] = obj
	return obj, nil
}

func (r *stubObjRepo) GetObjectiveByID(_ context.Context, id string, _ ...core.DBExecutor) (objective.Objective, error) {
	if obj, ok := r.objs[id]; ok {
		return obj, nil
	}
	return objective.Objective{}, objective.ErrNotFound
}

func (r *stubObjRepo) QueryObjectives(_ context.Context, _ *objective.QueryFilter, _ []core.DBOrdering, _ ...core.DBExecutor) ([]objective.Objective, error) {
	return nil, nil
}

func (r *stubObjRepo) UpdateObjective(_ context.Context, obj objective.Objective, _ ...core.DBExecutor) (objective.Objective, error) {
	r.objs[obj.ID] = obj
	return obj, nil
}

func (r *stubObjRepo) DeleteObjectivesByID(_ context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	for _, id := range ids {
		delete(r.objs, id)
	}
	return len(ids), nil
}

type memEventRepo struct {
	events  map[string]Event
	pkCount int
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[string]Event)}
}

func (r *memEventRepo) CreateEvents(_ context.Context, events []Event, _ ...core.DBExecutor) ([]Event, error) {
	created := make([]Event, 0, len(events))
	for _, ev := range events {
		r.pkCount++
		ev.ID = strconv.Itoa(r.pkCount)
		r.events[ev.ID] = ev
		created = append(created, ev)
	}
	return created, nil
}

func (r *memEventRepo) GetEventByID(_ context.Context, id string, _ ...core.DBExecutor) (Event, error) {
	if ev, ok := r.events[id]; ok {
		return ev, nil
	}
	return Event{}, ErrNotFound
}

func (r *memEventRepo) QueryEventsByTask(_ context.Context, taskID string, _ ...core.DBExecutor) ([]Event, error) {
	var events []Event
	for _, ev := range r.events {
		if ev.Provenance.TaskID == taskID {
			events = append(events, ev)
		}
	}
	sortEventsByStart(events)
	return events, nil
}

func (r *memEventRepo) QueryEventsByOwner(_ context.Context, ownerID string, from, to time.Time, _ ...core.DBExecutor) ([]Event, error) {
	var events []Event
	for _, ev := range r.events {
		if ev.OwnerID != ownerID {
			continue
		}
		if !from.IsZero() && ev.EndAt.Before(from) {
			continue
		}
		if !to.IsZero() && ev.StartAt.After(to) {
			continue
		}
		events = append(events, ev)
	}
	sortEventsByStart(events)
	return events, nil
}

func (r *memEventRepo) UpdateEvent(_ context.Context, ev Event, _ ...core.DBExecutor) (Event, error) {
	if _, ok := r.events[ev.ID]; !ok {
		return Event{}, ErrNotFound
	}
	r.events[ev.ID] = ev
	return ev, nil
}

func (r *memEventRepo) DeleteEventsByTask(_ context.Context, taskID string, _ ...core.DBExecutor) (int, error) {
	var cnt int
	for id, ev := range r.events {
		if ev.Provenance.TaskID == taskID {
			delete(r.events, id)
			cnt++
		}
	}
	return cnt, nil
}

func sortEventsByStart(events []Event) {
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].StartAt.Before(events[j-1].StartAt); j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
}

func setupPlanner() (*Service, *stubTaskRepo, *stubObjRepo, *memEventRepo) {
	taskRepo := &stubTaskRepo{tasks: make(map[string]task.Task)}
	objRepo := &stubObjRepo{objs: make(map[string]objective.Objective)}
	evRepo := newMemEventRepo()
	svc := NewService(evRepo, taskRepo, objRepo, nopLogger{}, nil)
	return svc, taskRepo, objRepo, evRepo
}

func seedTask(taskRepo *stubTaskRepo, objRepo *stubObjRepo, t task.Task) task.Task {
	if t.ID == "" {
		t.ID = "task-1"
	}
	if t.ObjectiveID == "" {
		t.ObjectiveID = "obj-1"
	}
	taskRepo.tasks[t.ID] = t
	if _, ok := objRepo.objs[t.ObjectiveID]; !ok {
		objRepo.objs[t.ObjectiveID] = objective.Objective{
			ID:        t.ObjectiveID,
			CreatedAt: dt(1, 9, 0),
		}
	}
	return t
}

func TestRegenerateTaskIsIdempotent(t *testing.T) {
	svc, taskRepo, objRepo, evRepo := setupPlanner()
	tsk := seedTask(taskRepo, objRepo, task.Task{
		AssigneeID: "student-1",
		Title:      "Revise notes",
		Frequency:  task.FreqDaily,
		StartAt:    null.TimeFrom(dt(1, 8, 0)),
		DueDate:    null.TimeFrom(dt(5, 8, 0)),
	})
	ctx := context.Background()

	if _, err := svc.RegenerateTask(ctx, tsk.ID); err != nil {
		t.Fatalf("RegenerateTask() failed: %v", err)
	}
	first, _ := evRepo.QueryEventsByTask(ctx, tsk.ID)

	if _, err := svc.RegenerateTask(ctx, tsk.ID); err != nil {
		t.Fatalf("RegenerateTask() failed: %v", err)
	}
	second, _ := evRepo.QueryEventsByTask(ctx, tsk.ID)

	if len(first) == 0 {
		t.Fatal("expected events to be generated")
	}
	if len(first) != len(second) {
		t.Fatalf("regeneration changed the event count: %d != %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].StartAt.Equal(second[i].StartAt) || !first[i].EndAt.Equal(second[i].EndAt) {
			t.Errorf("event %d differs: [%v, %v] != [%v, %v]",
				i, first[i].StartAt, first[i].EndAt, second[i].StartAt, second[i].EndAt)
		}
	}
}

func TestRegenerateTaskReplacesPriorEvents(t *testing.T) {
	svc, taskRepo, objRepo, evRepo := setupPlanner()
	tsk := seedTask(taskRepo, objRepo, task.Task{
		AssigneeID: "student-1",
		Title:      "Practice",
		Frequency:  task.FreqDaily,
		StartAt:    null.TimeFrom(dt(1, 8, 0)),
		DueDate:    null.TimeFrom(dt(10, 8, 0)),
	})
	ctx := context.Background()

	if _, err := svc.RegenerateTask(ctx, tsk.ID); err != nil {
		t.Fatalf("RegenerateTask() failed: %v", err)
	}
	daily, _ := evRepo.QueryEventsByTask(ctx, tsk.ID)

	// switch to weekly Mondays and regenerate
	tsk.Frequency = task.FreqWeekly
	tsk.RepeatWeekdays = []task.Weekday{task.Monday}
	taskRepo.tasks[tsk.ID] = tsk

	if _, err := svc.RegenerateTask(ctx, tsk.ID); err != nil {
		t.Fatalf("RegenerateTask() failed: %v", err)
	}
	weekly, _ := evRepo.QueryEventsByTask(ctx, tsk.ID)

	if len(weekly) >= len(daily) {
		t.Fatalf("expected fewer weekly events than daily: %d vs %d", len(weekly), len(daily))
	}
	for _, ev := range weekly {
		if ev.StartAt.Weekday() != time.Monday {
			t.Errorf("stale daily event survived regeneration: %v", ev.StartAt)
		}
		if ev.Provenance.Frequency != task.FreqWeekly {
			t.Errorf("event provenance not updated: %v", ev.Provenance.Frequency)
		}
	}
}

func TestRegenerateTaskMissingAssignee(t *testing.T) {
	svc, taskRepo, objRepo, evRepo := setupPlanner()
	tsk := seedTask(taskRepo, objRepo, task.Task{
		AssigneeID: "student-1",
		Title:      "Read chapter",
		Frequency:  task.FreqDaily,
		StartAt:    null.TimeFrom(dt(1, 8, 0)),
		DueDate:    null.TimeFrom(dt(5, 8, 0)),
	})
	ctx := context.Background()

	if _, err := svc.RegenerateTask(ctx, tsk.ID); err != nil {
		t.Fatalf("RegenerateTask() failed: %v", err)
	}

	// drop the assignee and regenerate
	tsk.AssigneeID = ""
	taskRepo.tasks[tsk.ID] = tsk

	ids, err := svc.RegenerateTask(ctx, tsk.ID)
	if err != ErrMissingAssignee {
		t.Fatalf("RegenerateTask() error = %v, want ErrMissingAssignee", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no created ids, got %v", ids)
	}
	// prior events removed, none inserted
	events, _ := evRepo.QueryEventsByTask(ctx, tsk.ID)
	if len(events) != 0 {
		t.Errorf("expected an empty planning, got %d events", len(events))
	}
}

func TestRegenerateTaskSkipsSilently(t *testing.T) {
	svc, taskRepo, objRepo, evRepo := setupPlanner()
	ctx := context.Background()

	t.Run("missing task", func(t *testing.T) {
		ids, err := svc.RegenerateTask(ctx, "nope")
		if err != nil || len(ids) != 0 {
			t.Errorf("RegenerateTask() = (%v, %v), want empty and no error", ids, err)
		}
	})

	t.Run("missing objective", func(t *testing.T) {
		taskRepo.tasks["orphan"] = task.Task{ID: "orphan", ObjectiveID: "ghost", AssigneeID: "student-1"}
		ids, err := svc.RegenerateTask(ctx, "orphan")
		if err != nil || len(ids) != 0 {
			t.Errorf("RegenerateTask() = (%v, %v), want empty and no error", ids, err)
		}
	})

	t.Run("invalid window keeps prior events", func(t *testing.T) {
		tsk := seedTask(taskRepo, objRepo, task.Task{
			ID:         "task-win",
			AssigneeID: "student-1",
			Frequency:  task.FreqDaily,
			StartAt:    null.TimeFrom(dt(1, 8, 0)),
			DueDate:    null.TimeFrom(dt(5, 8, 0)),
		})
		if _, err := svc.RegenerateTask(ctx, tsk.ID); err != nil {
			t.Fatalf("RegenerateTask() failed: %v", err)
		}
		prior, _ := evRepo.QueryEventsByTask(ctx, tsk.ID)

		tsk.DueDate = null.TimeFrom(tsk.StartAt.Time) // end == start
		taskRepo.tasks[tsk.ID] = tsk

		ids, err := svc.RegenerateTask(ctx, tsk.ID)
		if err != nil || len(ids) != 0 {
			t.Fatalf("RegenerateTask() = (%v, %v), want empty and no error", ids, err)
		}
		after, _ := evRepo.QueryEventsByTask(ctx, tsk.ID)
		if len(after) != len(prior) {
			t.Errorf("prior events were touched on an unresolvable window: %d != %d", len(after), len(prior))
		}
	})
}

func TestRegenerateTaskNoMatchingDays(t *testing.T) {
	svc, taskRepo, objRepo, evRepo := setupPlanner()
	// Mon..Tue window, Saturdays only
	tsk := seedTask(taskRepo, objRepo, task.Task{
		AssigneeID:     "student-1",
		Frequency:      task.FreqWeekly,
		RepeatWeekdays: []task.Weekday{task.Saturday},
		StartAt:        null.TimeFrom(dt(1, 9, 0)),
		DueDate:        null.TimeFrom(dt(2, 17, 0)),
	})
	ctx := context.Background()

	ids, err := svc.RegenerateTask(ctx, tsk.ID)
	if err != nil {
		t.Fatalf("RegenerateTask() failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected zero events, got %d", len(ids))
	}
	events, _ := evRepo.QueryEventsByTask(ctx, tsk.ID)
	if len(events) != 0 {
		t.Errorf("expected zero stored events, got %d", len(events))
	}
}

func TestClearTask(t *testing.T) {
	svc, taskRepo, objRepo, evRepo := setupPlanner()
	tsk := seedTask(taskRepo, objRepo, task.Task{
		AssigneeID: "student-1",
		Frequency:  task.FreqDaily,
		StartAt:    null.TimeFrom(dt(1, 8, 0)),
		DueDate:    null.TimeFrom(dt(5, 8, 0)),
	})
	ctx := context.Background()

	if _, err := svc.RegenerateTask(ctx, tsk.ID); err != nil {
		t.Fatalf("RegenerateTask() failed: %v", err)
	}
	if err := svc.ClearTask(ctx, tsk.ID); err != nil {
		t.Fatalf("ClearTask() failed: %v", err)
	}
	events, _ := evRepo.QueryEventsByTask(ctx, tsk.ID)
	if len(events) != 0 {
		t.Errorf("expected no events after clear, got %d", len(events))
	}
}

func TestMaterializeEvent(t *testing.T) {
	occ := Occurrence{Start: dt(1, 9, 0), End: dt(1, 17, 0)}
	tsk := task.Task{
		ID:             "task-1",
		ObjectiveID:    "obj-1",
		AssigneeID:     "student-1",
		Title:          "Flash cards",
		Description:    "Chapters 1-3",
		Frequency:      task.FreqWeekly,
		RepeatWeekdays: []task.Weekday{task.Monday},
	}

	ev, err := materializeEvent(occ, tsk)
	if err != nil {
		t.Fatalf("materializeEvent() failed: %v", err)
	}
	if ev.Title != tsk.Title || ev.Description != tsk.Description {
		t.Errorf("title/description not copied verbatim: %+v", ev)
	}
	if ev.Type != EventTypeTaskGenerated || ev.Status != EventStatusToDo {
		t.Errorf("unexpected type/status: %s/%s", ev.Type, ev.Status)
	}
	if ev.OwnerID != tsk.AssigneeID {
		t.Errorf("OwnerID = %s, want %s", ev.OwnerID, tsk.AssigneeID)
	}
	if ev.Provenance.TaskID != tsk.ID || ev.Provenance.ObjectiveID != tsk.ObjectiveID ||
		ev.Provenance.Frequency != tsk.Frequency || len(ev.Provenance.RepeatWeekdays) != 1 {
		t.Errorf("unexpected provenance: %+v", ev.Provenance)
	}

	tsk.AssigneeID = ""
	if _, err := materializeEvent(occ, tsk); err != ErrMissingAssignee {
		t.Errorf("materializeEvent() error = %v, want ErrMissingAssignee", err)
	}
}
