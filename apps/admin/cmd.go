package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/AI-Fit-GMS/gms/core/member"
	"github.com/AI-Fit-GMS/gms/core/user"
	"github.com/AI-Fit-GMS/gms/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	gooseRunFunc     = database.Run      // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *sqlx.DB
	dialect   string
	usrSvc    *user.Service
	memberSvc *member.Service
	out       io.Writer
	perPage   int
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL [-name NAME] [-admin] - create a user; the password is prompted")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL - reset user's password; the password is prompted")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, version, redo...)")
	fmt.Fprintln(cli.out, "  members [-page N] [-search TERM] - list the members")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

// promptPassword reads a password without echo; an empty password prints the usage of fs.
func (cli *commandLine) promptPassword(fs *flag.FlagSet) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "adduser":
		fs := cli.newFlagSet("adduser")
		email := fs.String("email", "", "The user's email. The password will be prompted next.")
		name := fs.String("name", "", "The user's name (defaults to the email).")
		isAdmin := fs.Bool("admin", false, "Give the user the admin owner role.")
		if err := parseFlags(fs, args[2:]); err != nil {
			return err
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(fs)
		if err != nil {
			return err
		}
		return cli.addUser(*name, *email, pwd, *isAdmin)

	case "resetpassword":
		fs := cli.newFlagSet("resetpassword")
		email := fs.String("email", "", "The user's email. The password will be prompted next.")
		if err := parseFlags(fs, args[2:]); err != nil {
			return err
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(fs)
		if err != nil {
			return err
		}
		return cli.resetPassword(*email, pwd)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "members":
		fs := cli.newFlagSet("members")
		page := fs.Int("page", 1, "The page to print.")
		search := fs.String("search", "", "Only list the members matching this term.")
		if err := parseFlags(fs, args[2:]); err != nil {
			return err
		}
		return cli.listMembers(*search, *page)

	default:
		cli.printUsage()
		return errHelp
	}
}
