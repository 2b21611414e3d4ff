package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/billing"
	"github.com/AI-Fit-GMS/gms/core/equipment"
	"github.com/AI-Fit-GMS/gms/core/gymclass"
	"github.com/AI-Fit-GMS/gms/core/member"
	"github.com/AI-Fit-GMS/gms/core/report"
	"github.com/AI-Fit-GMS/gms/core/trainer"
	"github.com/AI-Fit-GMS/gms/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Translator     ut.Translator
		Registry       *prometheus.Registry // a fresh one is created when nil
		DisableReqLogs bool

		UserSvc      *user.Service
		MemberSvc    *member.Service
		TrainerSvc   *trainer.Service
		ClassSvc     *gymclass.Service
		BillingSvc   *billing.Service
		EquipmentSvc *equipment.Service
		ReportSvc    *report.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *authenticator
		shutdown chan os.Signal
		errors   chan error
	}
)

func NewServer(deps ServerDeps) *Server {
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf, deps.UserSvc),
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(newMetrics(s.deps.Registry).middleware)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Renderer = mustParseViews()
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/metrics", metricsHandler(s.deps.Registry))

	v1 := s.app.Group("/v1")
	jwt := s.auth.middleware(headerTokenLookup)

	registerUserAPI(v1, jwt, s.auth, s.deps.UserSvc)
	registerMemberAPI(v1, jwt, s.deps.MemberSvc, conf)
	registerTrainerAPI(v1, jwt, s.deps.TrainerSvc, conf)
	registerClassAPI(v1, jwt, s.deps.ClassSvc, conf)
	registerInvoiceAPI(v1, jwt, s.deps.BillingSvc, conf)
	registerEquipmentAPI(v1, jwt, s.deps.EquipmentSvc, conf)
	registerReportAPI(v1, jwt, s.deps.ReportSvc)

	registerDashboard(s.app.Group("/dashboard"), s.auth, &s.deps)
}

// Start listens in the background; listen errors are sent to Errors().
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
			s.errors <- err
		}
	}()
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to GMS API!")
}
