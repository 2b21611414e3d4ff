package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/billing"
	"github.com/AI-Fit-GMS/gms/core/user"
)

type invoiceApi struct {
	svc     *billing.Service
	perPage int
}

func registerInvoiceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *billing.Service, conf *core.Config) {
	api := invoiceApi{svc: svc, perPage: conf.Dashboard.ItemsPerPage}

	ig := g.Group("/invoices", jwt, roleMiddleware(user.RoleAdmin, user.RoleFrontDesk))
	ig.GET("", api.query)
	ig.POST("", api.create)
	ig.GET("/:id", api.retrieve)
	ig.POST("/:id/pay", api.pay)
	ig.GET("/:id/payments", api.payments)
	ig.POST("/:id/cancel", api.cancel, roleMiddleware(user.RoleAdmin))
}

type PaymentResponse struct {
	Invoice billing.Invoice `json:"invoice"`
	Payment billing.Payment `json:"payment"`
}

func (api *invoiceApi) query(ctx echo.Context) error {
	var filter billing.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	page := bindPage(ctx, api.perPage)

	invoices, total, err := api.svc.Query(ctx.Request().Context(), filter, page, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying invoices")
	}
	return ctx.JSON(http.StatusOK, newListResponse(invoices, page, total))
}

func (api *invoiceApi) retrieve(ctx echo.Context) error {
	inv, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding invoice by ID")
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *invoiceApi) payments(ctx echo.Context) error {
	payments, err := api.svc.Payments(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing invoice payments")
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *invoiceApi) create(ctx echo.Context) error {
	var data billing.NewInvoice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInvoice")
	}
	inv, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating invoice")
	}
	return ctx.JSON(http.StatusCreated, inv)
}

func (api *invoiceApi) pay(ctx echo.Context) error {
	var data billing.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	inv, p, err := api.svc.RecordPayment(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "recording payment")
	}
	return ctx.JSON(http.StatusCreated, PaymentResponse{Invoice: inv, Payment: p})
}

func (api *invoiceApi) cancel(ctx echo.Context) error {
	inv, err := api.svc.Cancel(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "cancelling invoice")
	}
	return ctx.JSON(http.StatusOK, inv)
}
