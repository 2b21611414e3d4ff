package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/report"
	"github.com/AI-Fit-GMS/gms/core/user"
)

const (
	defaultMonths = 6
)

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *report.Service) {
	api := reportApi{svc: svc}

	admin := roleMiddleware(user.RoleAdmin)

	rg := g.Group("/dashboard", jwt)
	rg.GET("/stats", api.stats, admin)
	rg.GET("/revenue", api.revenue, admin)
	rg.GET("/member-growth", api.memberGrowth, admin)
	rg.GET("/class-attendance", api.classAttendance, roleMiddleware(user.RoleAdmin, user.RoleStaff))
	rg.GET("/recent-activities", api.recentActivities, admin)
}

// bindPeriod reads `start_date` and `end_date` (yyyy-mm-dd); the default is the last 6 months.
func bindPeriod(ctx echo.Context) (from, to time.Time, err error) {
	from, to = report.LastMonths(time.Now(), defaultMonths)
	if raw := ctx.QueryParam("end_date"); raw != "" {
		if to, err = time.Parse(dateLayout, raw); err != nil {
			return from, to, core.NewFieldValidationError("end_date", errors.New("must be a yyyy-mm-dd date"))
		}
		from, _ = report.LastMonths(to, defaultMonths)
	}
	if raw := ctx.QueryParam("start_date"); raw != "" {
		if from, err = time.Parse(dateLayout, raw); err != nil {
			return from, to, core.NewFieldValidationError("start_date", errors.New("must be a yyyy-mm-dd date"))
		}
	}
	return from, to, nil
}

func (api *reportApi) stats(ctx echo.Context) error {
	ov, err := api.svc.Overview(ctx.Request().Context(), time.Now())
	if err != nil {
		return errors.Wrap(err, "computing overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (api *reportApi) revenue(ctx echo.Context) error {
	from, to, err := bindPeriod(ctx)
	if err != nil {
		return err
	}
	revenue, err := api.svc.Revenue(ctx.Request().Context(), from, to)
	if err != nil {
		return errors.Wrap(err, "computing revenue")
	}
	return ctx.JSON(http.StatusOK, revenue)
}

func (api *reportApi) memberGrowth(ctx echo.Context) error {
	from, to, err := bindPeriod(ctx)
	if err != nil {
		return err
	}
	growth, err := api.svc.MemberGrowth(ctx.Request().Context(), from, to)
	if err != nil {
		return errors.Wrap(err, "computing member growth")
	}
	return ctx.JSON(http.StatusOK, growth)
}

func (api *reportApi) classAttendance(ctx echo.Context) error {
	attendance, err := api.svc.ClassAttendance(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing class attendance")
	}
	return ctx.JSON(http.StatusOK, attendance)
}

func (api *reportApi) recentActivities(ctx echo.Context) error {
	activities, err := api.svc.RecentActivities(ctx.Request().Context(), queryInt(ctx, "limit"))
	if err != nil {
		return errors.Wrap(err, "listing recent activities")
	}
	return ctx.JSON(http.StatusOK, activities)
}
