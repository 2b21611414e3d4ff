package echoapi

import (
	"net/http"
	"net/url"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/billing"
	"github.com/AI-Fit-GMS/gms/core/equipment"
	"github.com/AI-Fit-GMS/gms/core/gymclass"
	"github.com/AI-Fit-GMS/gms/core/member"
	"github.com/AI-Fit-GMS/gms/core/trainer"
	"github.com/AI-Fit-GMS/gms/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")

	// domain errors answered with a 4xx
	domainErrors = []struct {
		err  error
		code int
	}{
		{user.ErrNotFound, http.StatusNotFound},
		{member.ErrNotFound, http.StatusNotFound},
		{trainer.ErrNotFound, http.StatusNotFound},
		{gymclass.ErrNotFound, http.StatusNotFound},
		{billing.ErrNotFound, http.StatusNotFound},
		{equipment.ErrNotFound, http.StatusNotFound},
		{gymclass.ErrClassFull, http.StatusConflict},
		{gymclass.ErrAlreadyEnrolled, http.StatusConflict},
		{gymclass.ErrNotActive, http.StatusConflict},
		{billing.ErrNotPayable, http.StatusConflict},
	}
)

func domainHTTPError(err error) (*echo.HTTPError, bool) {
	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			return echo.NewHTTPError(de.code, de.err.Error()), true
		}
	}
	return nil, false
}

func isDashboardRequest(ctx echo.Context) bool {
	return strings.HasPrefix(ctx.Request().URL.Path, "/dashboard")
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		// field errors may wrap a domain error (unknown trainer_id): they stay 400s
		var verr *core.ValidationError
		if !errors.As(err, &verr) {
			if herr, ok := domainHTTPError(err); ok {
				err = herr
			}
		}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if fldErrs := origErr.FieldMap(); fldErrs != nil {
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Name = claims.Name
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Response().Committed {
			return
		}

		// anonymous dashboard visitors are sent to the login page
		if code == http.StatusUnauthorized && isDashboardRequest(ctx) && ctx.Request().Method == http.MethodGet {
			next := url.QueryEscape(ctx.Request().URL.RequestURI())
			if err = ctx.Redirect(http.StatusSeeOther, "/dashboard/login?next="+next); err != nil {
				ctx.Echo().Logger.Error(err)
			}
			return
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
