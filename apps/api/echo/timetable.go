package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bunkmate-io/bunkmate/core"
	"github.com/bunkmate-io/bunkmate/core/timetable"
)

type timetableApi struct {
	svc      timetable.Service
	validate *validator.Validate
}

func registerTimetableAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc timetable.Service, validate *validator.Validate) {
	api := timetableApi{
		svc:      svc,
		validate: validate,
	}

	tg := g.Group("/timetable", jwt)
	tg.POST("", api.create)
	tg.GET("", api.query)
	tg.DELETE("", api.destroyMultiple)

	dg := tg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *timetableApi) create(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	var data timetable.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	entry, err := api.svc.Create(userID, data)
	if err != nil {
		return errors.Wrap(err, "creating timetable entry")
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *timetableApi) query(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	var weekday *int
	if param := ctx.QueryParam("weekday"); param != "" {
		wd, err := strconv.Atoi(param)
		if err != nil || wd < 0 || wd > 6 {
			return core.NewValidationError(nil, core.FieldError{Field: "weekday", Error: "must be an integer between 0 and 6"})
		}
		weekday = &wd
	}

	entries, err := api.svc.Query(userID, weekday)
	if err != nil {
		return errors.Wrap(err, "querying timetable entries")
	}
	if entries == nil {
		entries = []timetable.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *timetableApi) getObject(ctx echo.Context) (timetable.Entry, error) {
	userID, err := contextUserID(ctx)
	if err != nil {
		return timetable.Entry{}, err
	}

	entry, err := api.svc.GetByID(userID, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == timetable.ErrNotFound {
			return timetable.Entry{}, errHttpNotFound
		}
		return timetable.Entry{}, errors.Wrap(err, "finding timetable entry by ID")
	}
	return entry, nil
}

func (api *timetableApi) retrieve(ctx echo.Context) error {
	entry, err := api.getObject(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *timetableApi) update(ctx echo.Context) error {
	entry, err := api.getObject(ctx)
	if err != nil {
		return err
	}

	var data timetable.UpdateEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEntry")
	}
	if err := data.Validate(entry, api.validate); err != nil {
		return err
	}

	entry, err = api.svc.Update(entry, data)
	if err != nil {
		return errors.Wrap(err, "updating timetable entry")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *timetableApi) destroy(ctx echo.Context) error {
	entry, err := api.getObject(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(entry.UserID, entry.ID); err != nil {
		return errors.Wrap(err, "deleting timetable entry")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *timetableApi) destroyMultiple(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(userID, query.IDs...); err != nil {
		return errors.Wrap(err, "deleting timetable entries")
	}
	return ctx.NoContent(http.StatusNoContent)
}
