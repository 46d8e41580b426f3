package objective

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mwongozo/backend/core"
)

var (
	// errors
	ErrNotFound = errors.New("objective not found")
)

type (
	Repository interface {
		CreateObjective(ctx context.Context, obj Objective, exec ...core.DBExecutor) (Objective, error)
		GetObjectiveByID(ctx context.Context, id string, exec ...core.DBExecutor) (Objective, error)
		// QueryObjectives applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Objective.Title or Objective.Description.
		QueryObjectives(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Objective, error)
		UpdateObjective(ctx context.Context, obj Objective, exec ...core.DBExecutor) (Objective, error)
		DeleteObjectivesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, no NewObjective) (Objective, error) {
	now := time.Now().UTC()
	obj := Objective{
		StudentID:   no.StudentID,
		CoachID:     no.CoachID,
		Title:       no.Title,
		Description: no.Description,
		Deadline:    no.Deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateObjective(ctx, obj)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Objective, error) {
	return svc.repo.GetObjectiveByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Objective, error) {
	return svc.repo.QueryObjectives(ctx, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, id string, uo UpdateObjective) (Objective, error) {
	obj, err := svc.repo.GetObjectiveByID(ctx, id)
	if err != nil {
		return Objective{}, err
	}
	return svc.repo.UpdateObjective(ctx, uo.Apply(obj))
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteObjectivesByID(ctx, ids)
	return err
}
