package main

import (
	"log"
	"os"

	"github.com/mwangaza/darasa/apps/api/echo"
	"github.com/mwangaza/darasa/core"
	"github.com/mwangaza/darasa/core/school"
	"github.com/mwangaza/darasa/core/user"
	"github.com/mwangaza/darasa/services/logger"
	"github.com/mwangaza/darasa/storage/database"
	"github.com/mwangaza/darasa/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, core.Conf.AppName+" ", log.LstdFlags|log.Lshortfile)

	var appLogger core.Logger
	if core.Conf.Debug {
		appLogger = logsvc.NewStdLogger(std)
	} else {
		appLogger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		appLogger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()

	// set up services
	validate, translator := core.NewValidator()
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))
	schSvc := school.NewService(sqlxrepos.NewSchoolRepository(db), validate)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:       core.Conf.Server.Addr(),
			Logger:     appLogger,
			Validate:   validate,
			Translator: translator,
			UserSvc:    usrSvc,
			SchoolSvc:  schSvc,
		},
	)
	appLogger.Info("API server listening on " + core.Conf.Server.Addr())
	app.Start()
}
