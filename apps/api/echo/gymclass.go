package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/gymclass"
	"github.com/AI-Fit-GMS/gms/core/user"
)

type classApi struct {
	svc     *gymclass.Service
	perPage int
}

func registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *gymclass.Service, conf *core.Config) {
	api := classApi{svc: svc, perPage: conf.Dashboard.ItemsPerPage}

	cg := g.Group("/classes", jwt)
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.POST("", api.create, roleMiddleware(user.RoleAdmin))
	cg.POST("/:id/enroll", api.enroll, roleMiddleware(user.RoleAdmin, user.RoleStaff))
}

type EnrollRequest struct {
	MemberID string `json:"member_id"`
}

func (api *classApi) query(ctx echo.Context) error {
	var filter gymclass.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	page := bindPage(ctx, api.perPage)

	classes, total, err := api.svc.Query(ctx.Request().Context(), filter, page, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, newListResponse(classes, page, total))
}

func (api *classApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding class by ID")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) create(ctx echo.Context) error {
	var data gymclass.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *classApi) enroll(ctx echo.Context) error {
	var data EnrollRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	if core.CleanString(data.MemberID) == "" {
		return core.NewFieldValidationError("member_id", errors.New("this field is required"))
	}
	c, err := api.svc.Enroll(ctx.Request().Context(), ctx.Param("id"), core.CleanString(data.MemberID))
	if err != nil {
		return errors.Wrap(err, "enrolling member")
	}
	return ctx.JSON(http.StatusOK, c)
}
