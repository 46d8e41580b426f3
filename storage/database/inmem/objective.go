package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mwongozo/backend/core"
	"github.com/mwongozo/backend/core/objective"
)

type objectiveRepository struct {
	db *objectiveTable
}

var _ objective.Repository = (*objectiveRepository)(nil)

func NewObjectiveRepository(db *DB) *objectiveRepository {
	return &objectiveRepository{db: db.objective}
}

func (repo *objectiveRepository) query() []objective.Objective {
	objs := make([]objective.Objective, 0, len(repo.db.table))
	for _, obj := range repo.db.table {
		objs = append(objs, *obj)
	}
	sort.Slice(objs, func(i, j int) bool {
		if objs[i].CreatedAt.Equal(objs[j].CreatedAt) {
			return objs[i].ID < objs[j].ID
		}
		return objs[i].CreatedAt.Before(objs[j].CreatedAt)
	})
	return objs
}

func (repo *objectiveRepository) CreateObjective(
	_ context.Context, obj objective.Objective, _ ...core.DBExecutor,
) (objective.Objective, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	obj.ID = uuid.New().String()
	repo.db.table[obj.ID] = &obj
	return obj, nil
}

func (repo *objectiveRepository) GetObjectiveByID(
	_ context.Context, id string, _ ...core.DBExecutor,
) (objective.Objective, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if obj, ok := repo.db.table[id]; ok {
		return *obj, nil
	}
	return objective.Objective{}, objective.ErrNotFound
}

func (repo *objectiveRepository) QueryObjectives(
	_ context.Context, filter *objective.QueryFilter, _ []core.DBOrdering, _ ...core.DBExecutor,
) ([]objective.Objective, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	objs := repo.query()
	if filter == nil || filter.IsEmpty() {
		return objs, nil
	}

	matches := make([]objective.Objective, 0, len(objs))
	for _, obj := range objs {
		if filter.Search != "" {
			kw := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(obj.Title), kw) &&
				!strings.Contains(strings.ToLower(obj.Description), kw) {
				continue
			}
		}
		if filter.StudentID != "" && obj.StudentID != filter.StudentID {
			continue
		}
		if filter.CoachID != "" && obj.CoachID != filter.CoachID {
			continue
		}
		matches = append(matches, obj)
	}
	return matches, nil
}

func (repo *objectiveRepository) UpdateObjective(
	_ context.Context, obj objective.Objective, _ ...core.DBExecutor,
) (objective.Objective, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origObj, ok := repo.db.table[obj.ID]
	if !ok {
		return objective.Objective{}, objective.ErrNotFound
	}
	origObj.Title = obj.Title
	origObj.Description = obj.Description
	origObj.Deadline = obj.Deadline
	origObj.UpdatedAt = obj.UpdatedAt
	return *origObj, nil
}

func (repo *objectiveRepository) DeleteObjectivesByID(_ context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}
