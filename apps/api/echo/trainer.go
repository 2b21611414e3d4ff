package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/trainer"
	"github.com/AI-Fit-GMS/gms/core/user"
)

type trainerApi struct {
	svc     *trainer.Service
	perPage int
}

func registerTrainerAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *trainer.Service, conf *core.Config) {
	api := trainerApi{svc: svc, perPage: conf.Dashboard.ItemsPerPage}

	tg := g.Group("/trainers", jwt)
	tg.GET("", api.query)
	tg.GET("/:id", api.retrieve)
	tg.POST("", api.create, roleMiddleware(user.RoleAdmin))
}

func (api *trainerApi) query(ctx echo.Context) error {
	var filter trainer.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	page := bindPage(ctx, api.perPage)

	trainers, total, err := api.svc.Query(ctx.Request().Context(), filter, page, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying trainers")
	}
	return ctx.JSON(http.StatusOK, newListResponse(trainers, page, total))
}

func (api *trainerApi) retrieve(ctx echo.Context) error {
	t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding trainer by ID")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *trainerApi) create(ctx echo.Context) error {
	var data trainer.NewTrainer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTrainer")
	}
	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating trainer")
	}
	return ctx.JSON(http.StatusCreated, t)
}
