package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bunkmate-io/bunkmate/core/attendance"
)

type summaryApi struct {
	svc attendance.Service
}

func registerSummaryAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc attendance.Service) {
	api := summaryApi{svc: svc}
	g.GET("/summary", api.overview, jwt)
}

// overview returns the per-subject and overall attendance standing of the user.
func (api *summaryApi) overview(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	overview, err := api.svc.Overview(userID)
	if err != nil {
		return errors.Wrap(err, "computing overview")
	}
	return ctx.JSON(http.StatusOK, overview)
}
