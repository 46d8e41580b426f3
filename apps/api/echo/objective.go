package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwongozo/backend/core/objective"
	"github.com/mwongozo/backend/core/user"
)

var errObjNotFoundInCtx = errors.New("objective object not found in echo.Context")

type objectiveApi struct {
	svc      *objective.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerObjectiveAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *objective.Service,
	usrSvc *user.Service,
	validate *validator.Validate,
) {
	api := objectiveApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	og := g.Group("/objectives", jwt)
	og.POST("", api.create, staffMiddleware())
	og.GET("", api.query)

	dg := og.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.DELETE("", api.destroy, staffMiddleware())
}

// objectMiddleware loads the objective and checks the caller may see it:
// staff, the coach in charge or the objective's student.
func (api *objectiveApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctxUsr, err := getContextUser(ctx, api.usrSvc)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}

		obj, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == objective.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding objective by ID")
		}

		if !(ctxUsr.IsAdmin() || ctxUsr.IsCoach() || obj.StudentID == ctxUsr.ID) {
			return errHttpNotFound
		}
		ctx.Set("object", obj)
		return next(ctx)
	}
}

// Handlers

func (api *objectiveApi) create(ctx echo.Context) error {
	var data objective.NewObjective
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewObjective")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	obj, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating objective")
	}
	return ctx.JSON(http.StatusCreated, obj)
}

func (api *objectiveApi) query(ctx echo.Context) error {
	filter := new(objective.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []objective.Objective{})
	}
	filter.Clean()

	// students only see their own objectives
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !(ctxUsr.IsAdmin() || ctxUsr.IsCoach()) {
		filter.StudentID = ctxUsr.ID
	}


	objs, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying objectives")
	}
	if objs == nil {
		objs = []objective.Objective{}
	}
	return ctx.JSON(http.StatusOK, objs)
}

func (api *objectiveApi) retrieve(ctx echo.Context) error {
	obj, ok := ctx.Get("object").(objective.Objective)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (api *objectiveApi) update(ctx echo.Context) error {
	obj, ok := ctx.Get("object").(objective.Objective)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	var data objective.UpdateObjective
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateObjective")
	}
	if err := data.Validate(obj, api.validate); err != nil {
		return err
	}

	obj, err := api.svc.Update(ctx.Request().Context(), obj.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating objective")
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (api *objectiveApi) destroy(ctx echo.Context) error {
	obj, ok := ctx.Get("object").(objective.Objective)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), obj.ID); err != nil {
		return errors.Wrap(err, "deleting objective")
	}
	return ctx.NoContent(http.StatusNoContent)
}
