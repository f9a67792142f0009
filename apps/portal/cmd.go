package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Onahi7/napps-portal/core"
	"github.com/Onahi7/napps-portal/core/fees"
	"github.com/Onahi7/napps-portal/core/levy"
	"github.com/Onahi7/napps-portal/core/payment"
	"github.com/Onahi7/napps-portal/core/registration"
	"github.com/Onahi7/napps-portal/core/session"
	"github.com/Onahi7/napps-portal/services/napps"
	"github.com/Onahi7/napps-portal/storage/draftstore"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf       *core.Config
	translator ut.Translator
	logger     core.Logger
	store      *draftstore.Store
	client     *napps.Client
	wizard     *registration.Wizard
	levySvc    *levy.Service
	feeSvc     *fees.Service
	paySvc     *payment.Service
	sessSvc    *session.Service

	in  *bufio.Reader
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  register (alias: resume)                    - start or resume a proprietor registration")
	fmt.Fprintln(cli.out, "  levy                                        - pay the one-time building levy")
	fmt.Fprintln(cli.out, "  fees                                        - show the active fee schedule")
	fmt.Fprintln(cli.out, "  status -reference REF [-gateway primary|levy] [-watch] - check a payment by reference")
	fmt.Fprintln(cli.out, "  login -email EMAIL [-admin]                 - log in; the password will be prompted next")
	fmt.Fprintln(cli.out, "  logout [-admin]                             - drop the saved session")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()

	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)
	statusRef := statusCmd.String("reference", "", "The payment reference to verify.")
	statusGateway := statusCmd.String("gateway", string(payment.GatewayPrimary), "Which gateway the reference belongs to: primary or levy.")
	statusWatch := statusCmd.Bool("watch", false, "Poll until the payment settles.")

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginEmail := loginCmd.String("email", "", "The account's email address. The password will be prompted next.")
	loginAdmin := loginCmd.Bool("admin", false, "Log into the admin back-office instead of the member portal.")

	logoutCmd := flag.NewFlagSet("logout", flag.ExitOnError)
	logoutAdmin := logoutCmd.Bool("admin", false, "Drop the admin session instead of the member one.")

	switch args[1] {
	case "register", "resume":
		return cli.register(ctx)
	case "levy":
		return cli.levy(ctx)
	case "fees":
		return cli.fees(ctx)
	case "status":
		if err := statusCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *statusRef == "" {
			statusCmd.Usage()
			return errHelp
		}
		return cli.status(ctx, *statusRef, payment.Gateway(*statusGateway), *statusWatch)
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginEmail, *loginAdmin)
	case "logout":
		if err := logoutCmd.Parse(args[2:]); err != nil {
			return err
		}
		role := session.RoleProprietor
		if *logoutAdmin {
			role = session.RoleAdmin
		}
		cli.sessSvc.Logout(role)
		fmt.Fprintln(cli.out, "Session cleared.")
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}

// prompt helpers

func (cli *commandLine) prompt(label string) string {
	fmt.Fprintf(cli.out, "%s: ", label)
	line, _ := cli.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// promptCount reads an optional enrollment count. An empty answer leaves the
// field unset (omitted from the payload); "0" is a real answer and is kept.
func (cli *commandLine) promptCount(label string) null.Int {
	for {
		raw := cli.prompt(label + " (blank to skip)")
		if raw == "" {
			return null.Int{}
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fmt.Fprintln(cli.out, "please enter a non-negative number, or leave blank")
			continue
		}
		return null.IntFrom(n)
	}
}

func (cli *commandLine) promptYesNo(label string) bool {
	answer := strings.ToLower(cli.prompt(label + " [y/N]"))
	return answer == "y" || answer == "yes"
}

// printFieldErrors renders a validation failure the way the web forms do:
// inline, per field.
func (cli *commandLine) printFieldErrors(err error) bool {
	switch vErr := err.(type) {
	case *core.ValidationError:
		for _, fld := range vErr.Fields {
			fmt.Fprintf(cli.out, "  %s: %s\n", fld.Field, fld.Error)
		}
		if len(vErr.Fields) == 0 {
			fmt.Fprintf(cli.out, "  %s\n", vErr.Error())
		}
		return true
	}
	if vErrs, ok := err.(validator.ValidationErrors); ok {
		for _, vErr := range vErrs {
			fmt.Fprintf(cli.out, "  %s: %s\n", vErr.Field(), vErr.Translate(cli.translator))
		}
		return true
	}
	return false
}
