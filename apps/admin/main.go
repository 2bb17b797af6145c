package main

import (
	"log"
	"os"

	"github.com/mwangaza/darasa/core"
	"github.com/mwangaza/darasa/storage/database"
	"github.com/mwangaza/darasa/storage/database/sqlx"
)

func main() {
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		log.Fatalf("%+v", err)
	}

	db, err := database.Open(core.Conf)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	defer func() { _ = db.Close() }()

	cli := &commandLine{
		db:      db,
		usrRepo: sqlxrepos.NewUserRepository(db),
		schRepo: sqlxrepos.NewSchoolRepository(db),
	}
	if err := cli.run(os.Args); err != nil && err != errHelp {
		log.Fatalf("%+v", err)
	}
}
