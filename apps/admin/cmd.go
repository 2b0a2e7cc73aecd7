package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/gradeportal/core/subject"
	"github.com/trezcool/gradeportal/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sqlx.DB
	usrSvc     *user.Service
	subjectSvc *subject.Service
	validate   *validator.Validate
	translator ut.Translator
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -username USERNAME -role ADMIN|TEACHER|STUDENT [-first-name F -last-name L -email E] - add or update an approved user")
	fmt.Println("  resetpassword -username USERNAME - reset user's password")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, version, ...)")
	fmt.Println("  seed [-admin-username USERNAME] [-password PASSWORD] - create the default admin & subjects")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username. The password will be prompted next.")
	addUserRole := addUserCmd.String("role", "", "The user's role: ADMIN, TEACHER or STUDENT.")
	addUserFirstName := addUserCmd.String("first-name", "", "The user's first name (defaults to the username).")
	addUserLastName := addUserCmd.String("last-name", "", "The user's last name (defaults to the username).")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username. The password will be prompted next.")

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedUname := seedCmd.String("admin-username", defaultAdminUsername, "The default admin's username.")
	seedPwd := seedCmd.String("password", "", "The default admin's password. Prompted when empty.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserRole == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(user.NewUser{
			Username:  *addUserUname,
			Password:  pwd,
			FirstName: defaultString(*addUserFirstName, *addUserUname),
			LastName:  defaultString(*addUserLastName, *addUserUname),
			Email:     *addUserEmail,
			Role:      user.Role(strings.ToUpper(*addUserRole)),
		})
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		pwd := *seedPwd
		if pwd == "" {
			var err error
			if pwd, err = promptPassword(); err != nil {
				return err
			}
		}
		if pwd == "" {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seed(*seedUname, pwd)
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func defaultString(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
