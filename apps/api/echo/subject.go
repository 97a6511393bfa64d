package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bunkmate-io/bunkmate/core/attendance"
	"github.com/bunkmate-io/bunkmate/core/subject"
)

type subjectApi struct {
	svc      subject.Service
	attSvc   attendance.Service
	validate *validator.Validate
}

func registerSubjectAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc subject.Service,
	attSvc attendance.Service,
	validate *validator.Validate,
) {
	api := subjectApi{
		svc:      svc,
		attSvc:   attSvc,
		validate: validate,
	}

	sg := g.Group("/subjects", jwt)
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.DELETE("", api.destroyMultiple)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/summary", api.summary)
}

// Handlers

func (api *subjectApi) create(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate, api.svc, userID); err != nil {
		return err
	}

	subj, err := api.svc.Create(userID, data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, subj)
}

func (api *subjectApi) query(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	subjects, err := api.svc.Query(userID)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []subject.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) getObject(ctx echo.Context) (subject.Subject, error) {
	userID, err := contextUserID(ctx)
	if err != nil {
		return subject.Subject{}, err
	}

	subj, err := api.svc.GetByID(userID, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == subject.ErrNotFound {
			return subject.Subject{}, errHttpNotFound
		}
		return subject.Subject{}, errors.Wrap(err, "finding subject by ID")
	}
	return subj, nil
}

func (api *subjectApi) retrieve(ctx echo.Context) error {
	subj, err := api.getObject(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subj)
}

func (api *subjectApi) update(ctx echo.Context) error {
	subj, err := api.getObject(ctx)
	if err != nil {
		return err
	}

	var data subject.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err := data.Validate(subj, api.validate, api.svc); err != nil {
		return err
	}

	subj, err = api.svc.Update(subj, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, subj)
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	subj, err := api.getObject(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(subj.UserID, subj.ID); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *subjectApi) destroyMultiple(ctx echo.Context) error {
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
		return errors.Wrap(err, "deleting subjects")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// summary returns the subject along with its computed attendance stats.
func (api *subjectApi) summary(ctx echo.Context) error {
	subj, err := api.getObject(ctx)
	if err != nil {
		return err
	}

	stats, err := api.attSvc.SubjectStats(subj)
	if err != nil {
		return errors.Wrap(err, "computing subject stats")
	}
	return ctx.JSON(http.StatusOK, attendance.SubjectOverview{Subject: subj, Stats: stats})
}
