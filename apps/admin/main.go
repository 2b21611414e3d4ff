package main

import (
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/member"
	"github.com/AI-Fit-GMS/gms/core/user"
	logsvc "github.com/AI-Fit-GMS/gms/services/logger"
	"github.com/AI-Fit-GMS/gms/storage/database"
	sqlxrepos "github.com/AI-Fit-GMS/gms/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	if conf.Database.Engine != "postgres" {
		logger.Fatal(fmt.Sprintf("admin: the %q engine keeps no data between runs; set the postgres engine", conf.Database.Engine))
	}

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("admin: %v", err), err)
	}

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.RegisterValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:        db,
		dialect:   "postgres",
		usrSvc:    user.NewService(sqlxrepos.NewUserRepository(db), validate),
		memberSvc: member.NewService(sqlxrepos.NewMemberRepository(db), validate, logger),
		out:       os.Stdout,
		perPage:   conf.Dashboard.ItemsPerPage,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil && err != errHelp {
		logger.Error(fmt.Sprintf("error: %v", err), err)
	}
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}
