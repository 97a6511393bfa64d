package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bunkmate-io/bunkmate/core/calendar"
)

type calendarApi struct {
	svc      calendar.Service
	validate *validator.Validate
}

func registerCalendarAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc calendar.Service, validate *validator.Validate) {
	api := calendarApi{
		svc:      svc,
		validate: validate,
	}

	cg := g.Group("/calendar", jwt)
	cg.POST("", api.mark)
	cg.GET("", api.query)
	cg.DELETE("", api.destroyMultiple)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *calendarApi) mark(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	var data calendar.NewDay
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDay")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	day, err := api.svc.Mark(userID, data)
	if err != nil {
		return errors.Wrap(err, "marking calendar day")
	}
	return ctx.JSON(http.StatusCreated, day)
}

func (api *calendarApi) query(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	filter := new(calendar.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []calendar.Day{})
	}
	filter.Clean()

	days, err := api.svc.Filter(userID, *filter)
	if err != nil {
		return errors.Wrap(err, "querying calendar days")
	}
	if days == nil {
		days = []calendar.Day{}
	}
	return ctx.JSON(http.StatusOK, days)
}

func (api *calendarApi) getObject(ctx echo.Context) (calendar.Day, error) {
	userID, err := contextUserID(ctx)
	if err != nil {
		return calendar.Day{}, err
	}

	day, err := api.svc.GetByID(userID, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == calendar.ErrNotFound {
			return calendar.Day{}, errHttpNotFound
		}
		return calendar.Day{}, errors.Wrap(err, "finding calendar day by ID")
	}
	return day, nil
}

func (api *calendarApi) retrieve(ctx echo.Context) error {
	day, err := api.getObject(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, day)
}

func (api *calendarApi) update(ctx echo.Context) error {
	day, err := api.getObject(ctx)
	if err != nil {
		return err
	}

	var data calendar.UpdateDay
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDay")
	}
	if err := data.Validate(day, api.validate); err != nil {
		return err
	}

	day, err = api.svc.Update(day, data)
	if err != nil {
		return errors.Wrap(err, "updating calendar day")
	}
	return ctx.JSON(http.StatusOK, day)
}

func (api *calendarApi) destroy(ctx echo.Context) error {
	day, err := api.getObject(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(day.UserID, day.ID); err != nil {
		return errors.Wrap(err, "deleting calendar day")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *calendarApi) destroyMultiple(ctx echo.Context) error {
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
		return errors.Wrap(err, "deleting calendar days")
	}
	return ctx.NoContent(http.StatusNoContent)
}
