package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/member"
	"github.com/AI-Fit-GMS/gms/core/user"
)

type memberApi struct {
	svc     *member.Service
	perPage int
}

func registerMemberAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *member.Service, conf *core.Config) {
	api := memberApi{svc: svc, perPage: conf.Dashboard.ItemsPerPage}

	mg := g.Group("/members", jwt, roleMiddleware(user.RoleAdmin, user.RoleStaff))
	mg.GET("", api.query)
	mg.GET("/stats", api.stats)
	mg.GET("/:id", api.retrieve)

	desk := roleMiddleware(user.RoleAdmin, user.RoleFrontDesk)
	mg.POST("", api.create, desk)
	mg.PUT("/:id", api.update, desk)
	mg.DELETE("/:id", api.destroy, roleMiddleware(user.RoleAdmin))
}

func (api *memberApi) query(ctx echo.Context) error {
	var filter member.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	page := bindPage(ctx, api.perPage)

	members, total, err := api.svc.Query(ctx.Request().Context(), filter, page, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	return ctx.JSON(http.StatusOK, newListResponse(members, page, total))
}

func (api *memberApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing member stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *memberApi) retrieve(ctx echo.Context) error {
	m, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding member by ID")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *memberApi) create(ctx echo.Context) error {
	var data member.NewMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMember")
	}
	m, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating member")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *memberApi) update(ctx echo.Context) error {
	var data member.UpdateMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMember")
	}
	m, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating member")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *memberApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting member")
	}
	return ctx.NoContent(http.StatusNoContent)
}
