package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mwongozo/backend/core"
	"github.com/mwongozo/backend/core/planning"
)

type planningRepository struct {
	db *eventTable
}

var _ planning.Repository = (*planningRepository)(nil)

func NewPlanningRepository(db *DB) *planningRepository {
	return &planningRepository{db: db.event}
}

func sortEvents(events []planning.Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartAt.Equal(events[j].StartAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].StartAt.Before(events[j].StartAt)
	})
}

func (repo *planningRepository) CreateEvents(
	_ context.Context, events []planning.Event, _ ...core.DBExecutor,
) ([]planning.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i := range events {
		events[i].ID = uuid.New().String()
		ev := events[i]
		repo.db.table[ev.ID] = &ev
	}
	return events, nil
}

func (repo *planningRepository) GetEventByID(_ context.Context, id string, _ ...core.DBExecutor) (planning.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ev, ok := repo.db.table[id]; ok {
		return *ev, nil
	}
	return planning.Event{}, planning.ErrNotFound
}

func (repo *planningRepository) QueryEventsByTask(
	_ context.Context, taskID string, _ ...core.DBExecutor,
) ([]planning.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var events []planning.Event
	for _, ev := range repo.db.table {
		if ev.Provenance.TaskID == taskID {
			events = append(events, *ev)
		}
	}
	sortEvents(events)
	return events, nil
}

func (repo *planningRepository) QueryEventsByOwner(
	_ context.Context, ownerID string, from, to time.Time, _ ...core.DBExecutor,
) ([]planning.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var events []planning.Event
	for _, ev := range repo.db.table {
		if ev.OwnerID != ownerID {
			continue
		}
		if !from.IsZero() && ev.EndAt.Before(from) {
			continue
		}
		if !to.IsZero() && ev.StartAt.After(to) {
			continue
		}
		events = append(events, *ev)
	}
	sortEvents(events)
	return events, nil
}

func (repo *planningRepository) UpdateEvent(
	_ context.Context, ev planning.Event, _ ...core.DBExecutor,
) (planning.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origEv, ok := repo.db.table[ev.ID]
	if !ok {
		return planning.Event{}, planning.ErrNotFound
	}
	origEv.Status = ev.Status
	origEv.UpdatedAt = ev.UpdatedAt
	return *origEv, nil
}

func (repo *planningRepository) DeleteEventsByTask(_ context.Context, taskID string, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for id, ev := range repo.db.table {
		if ev.Provenance.TaskID == taskID {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}
