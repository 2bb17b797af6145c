package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/mwangaza/darasa/core/school"
	"github.com/mwangaza/darasa/core/user"
	"github.com/mwangaza/darasa/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	migrateUpFunc    = database.Migrate
	migrateDownFunc  = database.MigrateDown

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sql.DB
	usrRepo user.Repository
	schRepo school.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate [up|down]                                     - apply (or revert) database migrations")
	fmt.Println("  adduser -email EMAIL -name NAME -school SCHOOL_ID [-admin] - update or create a user; the password is prompted next")
	fmt.Println("  seed                                                  - load demo data")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserSchool := addUserCmd.String("school", "", "The ID of the school the user belongs to.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant the admin role instead of teacher.")

	switch args[1] {
	case "migrate":
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserName == "" || *addUserSchool == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserEmail, *addUserName, *addUserSchool, string(pwd), *addUserAdmin)
	case "seed":
		return cli.seed()
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate(args []string) error {
	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}
	switch direction {
	case "up":
		return migrateUpFunc(cli.db)
	case "down":
		return migrateDownFunc(cli.db)
	default:
		return fmt.Errorf("%q: no such migrate direction", direction)
	}
}
