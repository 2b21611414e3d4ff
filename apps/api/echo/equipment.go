package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/equipment"
	"github.com/AI-Fit-GMS/gms/core/user"
)

type equipmentApi struct {
	svc     *equipment.Service
	perPage int
}

func registerEquipmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *equipment.Service, conf *core.Config) {
	api := equipmentApi{svc: svc, perPage: conf.Dashboard.ItemsPerPage}

	eg := g.Group("/equipment", jwt, roleMiddleware(user.RoleAdmin, user.RoleStaff))
	eg.GET("", api.query)
	eg.GET("/:id", api.retrieve)

	admin := roleMiddleware(user.RoleAdmin)
	eg.POST("", api.create, admin)
	eg.PATCH("/:id", api.update, admin)
}

func (api *equipmentApi) query(ctx echo.Context) error {
	var filter equipment.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	page := bindPage(ctx, api.perPage)

	items, total, err := api.svc.Query(ctx.Request().Context(), filter, page, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying equipment")
	}
	return ctx.JSON(http.StatusOK, newListResponse(items, page, total))
}

func (api *equipmentApi) retrieve(ctx echo.Context) error {
	eq, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding equipment by ID")
	}
	return ctx.JSON(http.StatusOK, eq)
}

func (api *equipmentApi) create(ctx echo.Context) error {
	var data equipment.NewEquipment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEquipment")
	}
	eq, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating equipment")
	}
	return ctx.JSON(http.StatusCreated, eq)
}

func (api *equipmentApi) update(ctx echo.Context) error {
	var data equipment.UpdateEquipment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEquipment")
	}
	eq, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating equipment")
	}
	return ctx.JSON(http.StatusOK, eq)
}
