package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	echoapi "github.com/AI-Fit-GMS/gms/apps/api/echo"
	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/billing"
	"github.com/AI-Fit-GMS/gms/core/equipment"
	"github.com/AI-Fit-GMS/gms/core/gymclass"
	"github.com/AI-Fit-GMS/gms/core/member"
	"github.com/AI-Fit-GMS/gms/core/report"
	"github.com/AI-Fit-GMS/gms/core/trainer"
	"github.com/AI-Fit-GMS/gms/core/user"
	appfs "github.com/AI-Fit-GMS/gms/fs"
	emailsvc "github.com/AI-Fit-GMS/gms/services/email"
	logsvc "github.com/AI-Fit-GMS/gms/services/logger"
	"github.com/AI-Fit-GMS/gms/storage/database"
	inmemdb "github.com/AI-Fit-GMS/gms/storage/database/inmem"
	sqlxrepos "github.com/AI-Fit-GMS/gms/storage/database/sqlx"
)

type repositories struct {
	users     user.Repository
	members   member.Repository
	trainers  trainer.Repository
	classes   gymclass.Repository
	invoices  billing.Repository
	equipment equipment.Repository
}

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	if err := run(conf, logger); err != nil {
		logger.Fatal(fmt.Sprintf("main: %v", err), err)
	}
}

func run(conf *core.Config, logger *logsvc.RollbarLogger) error {
	// =========================================================================
	// Set up Dependencies

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.RegisterValidators(validate, translator)
	equipment.RegisterValidators(validate, translator)

	tmpls, err := core.ParseEmailTemplates(appfs.FS, conf.Debug)
	if err != nil {
		return errors.Wrap(err, "parsing email templates")
	}

	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, tmpls, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, tmpls, logger)
	}

	repos, closeDB, err := setUpStorage(conf, logger)
	if err != nil {
		return errors.Wrap(err, "setting up storage")
	}
	defer func() {
		if err := closeDB(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	usrSvc := user.NewService(repos.users, validate)
	memberSvc := member.NewService(repos.members, validate, logger)
	trainerSvc := trainer.NewService(repos.trainers, validate)
	classSvc := gymclass.NewService(repos.classes, trainerSvc, memberSvc, validate)
	billingSvc := billing.NewService(repos.invoices, memberSvc, mailSvc, validate, logger)
	equipmentSvc := equipment.NewService(repos.equipment, validate)
	reportSvc := report.NewService(repos.members, repos.trainers, repos.classes, repos.invoices)

	if conf.Database.Engine == "memory" {
		if err = seedAdmin(context.Background(), conf, logger, repos.users); err != nil {
			return errors.Wrap(err, "seeding admin")
		}
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	sched, err := newScheduler(conf, logger, memberSvc, billingSvc)
	if err != nil {
		return errors.Wrap(err, "setting up scheduler")
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:         conf,
		Logger:       logger,
		Translator:   translator,
		UserSvc:      usrSvc,
		MemberSvc:    memberSvc,
		TrainerSvc:   trainerSvc,
		ClassSvc:     classSvc,
		BillingSvc:   billingSvc,
		EquipmentSvc: equipmentSvc,
		ReportSvc:    reportSvc,
	})
	server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		return errors.Wrap(err, "server error")

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
			if err = server.Close(); err != nil {
				return errors.Wrap(err, "could not force stop server")
			}
		}
	}
	return nil
}

func setUpStorage(conf *core.Config, logger core.Logger) (repositories, func() error, error) {
	switch conf.Database.Engine {
	case "memory":
		db := inmemdb.Open()
		inmemdb.Seed(db, time.Now())
		return repositories{
			users:     inmemdb.NewUserRepository(db),
			members:   inmemdb.NewMemberRepository(db),
			trainers:  inmemdb.NewTrainerRepository(db),
			classes:   inmemdb.NewClassRepository(db),
			invoices:  inmemdb.NewInvoiceRepository(db),
			equipment: inmemdb.NewEquipmentRepository(db),
		}, func() error { return nil }, nil

	case "postgres":
		if err := database.CreateIfNotExist(conf); err != nil {
			return repositories{}, nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return repositories{}, nil, err
		}
		if err = database.Migrate(db.DB, "postgres"); err != nil {
			_ = db.Close()
			return repositories{}, nil, err
		}
		return repositories{
			users:    sqlxrepos.NewUserRepository(db),
			members:  sqlxrepos.NewMemberRepository(db),
			trainers: sqlxrepos.NewTrainerRepository(db),
			classes:  sqlxrepos.NewClassRepository(db),
			invoices: sqlxrepos.NewInvoiceRepository(db),
			equipment: equipment.NewFallbackRepository(
				sqlxrepos.NewEquipmentRepository(db),
				inmemdb.NewMockEquipmentRepository(),
				logger,
			),
		}, db.Close, nil

	default:
		return repositories{}, nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}

// seedAdmin creates the admin account of the memory engine.
func seedAdmin(ctx context.Context, conf *core.Config, logger core.Logger, repo user.Repository) error {
	pwd := conf.Seed.AdminPassword
	if pwd == "" {
		pwd = uuid.NewString()
		logger.Info("generated admin password", map[string]interface{}{"email": conf.Seed.AdminEmail, "password": pwd})
	}

	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      "Administrator",
		Email:     core.CleanString(conf.Seed.AdminEmail, true /* lower */),
		IsActive:  true,
		Roles:     []string{user.RoleAdminOwner},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	_, err := repo.CreateUser(ctx, usr)
	return err
}
