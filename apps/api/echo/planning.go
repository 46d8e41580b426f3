package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwongozo/backend/core"
	"github.com/mwongozo/backend/core/planning"
	"github.com/mwongozo/backend/core/user"
)

type planningApi struct {
	svc      *planning.Service
	usrSvc   *user.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerPlanningAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *planning.Service,
	usrSvc *user.Service,
	conf *core.Config,
	validate *validator.Validate,
) {
	api := planningApi{
		svc:      svc,
		usrSvc:   usrSvc,
		conf:     conf,
		validate: validate,
	}

	pg := g.Group("/planning", jwt)
	pg.GET("", api.agenda)
	pg.GET("/export.ics", api.exportICS)
	pg.GET("/tasks/:id", api.queryByTask, staffMiddleware())

	dg := pg.Group("/events/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.updateStatus)
}

// objectMiddleware loads the event and checks the caller may see it:
// staff or the event's owner.
func (api *planningApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctxUsr, err := getContextUser(ctx, api.usrSvc)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}

		ev, err := api.svc.GetEventByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == planning.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding event by ID")
		}

		if !(ctxUsr.IsAdmin() || ctxUsr.IsCoach() || ev.OwnerID == ctxUsr.ID) {
			return errHttpNotFound
		}
		ctx.Set("object", ev)
		return next(ctx)
	}
}

// agendaOwner resolves whose planning is being requested. Staff may ask for
// any owner via ?owner_id=; everyone else gets their own.
func (api *planningApi) agendaOwner(ctx echo.Context) (string, error) {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}
	if ownerID := ctx.QueryParam("owner_id"); ownerID != "" && (ctxUsr.IsAdmin() || ctxUsr.IsCoach()) {
		return ownerID, nil
	}
	return ctxUsr.ID, nil
}

// Handlers

func (api *planningApi) agenda(ctx echo.Context) error {
	ownerID, err := api.agendaOwner(ctx)
	if err != nil {
		return err
	}

	var bounds AgendaRequest
	if err := bounds.Bind(ctx); err != nil {
		return err
	}

	events, err := api.svc.Agenda(ctx.Request().Context(), ownerID, bounds.From, bounds.To)
	if err != nil {
		return errors.Wrap(err, "querying agenda")
	}
	if events == nil {
		events = []planning.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *planningApi) exportICS(ctx echo.Context) error {
	ownerID, err := api.agendaOwner(ctx)
	if err != nil {
		return err
	}

	var bounds AgendaRequest
	if err := bounds.Bind(ctx); err != nil {
		return err
	}

	events, err := api.svc.Agenda(ctx.Request().Context(), ownerID, bounds.From, bounds.To)
	if err != nil {
		return errors.Wrap(err, "querying agenda")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="planning.ics"`)
	return ctx.Blob(http.StatusOK, "text/calendar", []byte(planning.BuildICS(api.conf.AppName, events)))
}

func (api *planningApi) queryByTask(ctx echo.Context) error {
	events, err := api.svc.QueryByTask(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying events by task")
	}
	if events == nil {
		events = []planning.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *planningApi) retrieve(ctx echo.Context) error {
	ev, ok := ctx.Get("object").(planning.Event)
	if !ok {
		return errors.Wrap(errEventNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *planningApi) updateStatus(ctx echo.Context) error {
	ev, ok := ctx.Get("object").(planning.Event)
	if !ok {
		return errors.Wrap(errEventNotFoundInCtx, "retrieving object from context")
	}

	var data planning.UpdateEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ev, err := api.svc.UpdateEventStatus(ctx.Request().Context(), ev.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating event status")
	}
	return ctx.JSON(http.StatusOK, ev)
}

var errEventNotFoundInCtx = errors.New("event object not found in echo.Context")

// AgendaRequest carries optional ?from= and ?to= RFC3339 bounds.
type AgendaRequest struct {
	From time.Time
	To   time.Time
}

func (ar *AgendaRequest) Bind(ctx echo.Context) error {
	var err error
	if from := ctx.QueryParam("from"); from != "" {
		if ar.From, err = time.Parse(time.RFC3339, from); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "from", Error: "must be a RFC3339 timestamp"})
		}
	}
	if to := ctx.QueryParam("to"); to != "" {
		if ar.To, err = time.Parse(time.RFC3339, to); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "to", Error: "must be a RFC3339 timestamp"})
		}
	}
	return nil
}
