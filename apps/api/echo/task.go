package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwongozo/backend/core/objective"
	"github.com/mwongozo/backend/core/task"
	"github.com/mwongozo/backend/core/user"
)

var errTaskNotFoundInCtx = errors.New("task object not found in echo.Context")

type taskApi struct {
	svc      *task.Service
	objSvc   *objective.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerTaskAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *task.Service,
	objSvc *objective.Service,
	usrSvc *user.Service,
	validate *validator.Validate,
) {
	api := taskApi{
		svc:      svc,
		objSvc:   objSvc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	tg := g.Group("/tasks", jwt)
	tg.POST("", api.create, staffMiddleware())
	tg.GET("", api.query)
	tg.DELETE("", api.destroyMultiple, staffMiddleware())
	tg.GET("/frequencies", api.queryFrequencies)

	dg := tg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.DELETE("", api.destroy, staffMiddleware())
}

// objectMiddleware loads the task and checks the caller may see it:
// staff or the task's assignee.
func (api *taskApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctxUsr, err := getContextUser(ctx, api.usrSvc)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}

		t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == task.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding task by ID")
		}

		if !(ctxUsr.IsAdmin() || ctxUsr.IsCoach() || t.AssigneeID == ctxUsr.ID) {
			return errHttpNotFound
		}
		ctx.Set("object", t)
		return next(ctx)
	}
}

// Handlers

func (api *taskApi) create(ctx echo.Context) error {
	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// the task must hang off an existing objective
	if _, err := api.objSvc.GetByID(ctx.Request().Context(), data.ObjectiveID); err != nil {
		if errors.Cause(err) == objective.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding objective by ID")
	}

	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *taskApi) query(ctx echo.Context) error {
	filter := new(task.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []task.Task{})
	}
	filter.Clean()

	// students only see tasks assigned to them
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !(ctxUsr.IsAdmin() || ctxUsr.IsCoach()) {
		filter.AssigneeID = ctxUsr.ID
	}


	tasks, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	t, ok := ctx.Get("object").(task.Task)
	if !ok {
		return errors.Wrap(errTaskNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) update(ctx echo.Context) error {
	t, ok := ctx.Get("object").(task.Task)
	if !ok {
		return errors.Wrap(errTaskNotFoundInCtx, "retrieving object from context")
	}

	var data task.UpdateTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err := data.Validate(t, api.validate); err != nil {
		return err
	}

	t, err := api.svc.Update(ctx.Request().Context(), t.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating task")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) destroy(ctx echo.Context) error {
	t, ok := ctx.Get("object").(task.Task)
	if !ok {
		return errors.Wrap(errTaskNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), t.ID); err != nil {
		return errors.Wrap(err, "deleting task")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *taskApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting tasks")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *taskApi) queryFrequencies(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, task.Frequencies)
}
