package main

import (
	"context"
	"fmt"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/Onahi7/napps-portal/core/session"
)

// swappable for tests
var readPasswordFunc = term.ReadPassword

// login exchanges credentials for a bearer token and saves the session.
func (cli *commandLine) login(ctx context.Context, email string, admin bool) error {
	role := session.RoleProprietor
	if admin {
		role = session.RoleAdmin
	}

	if sess, ok := cli.sessSvc.Current(role); ok {
		fmt.Fprintf(cli.out, "Already logged in as %s; run `portal logout` first to switch accounts.\n", sess.Email)
		return nil
	}

	fmt.Fprint(cli.out, "Password: ")
	password, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return errors.Wrap(err, "reading password")
	}

	sess, err := cli.sessSvc.Login(ctx, email, string(password), role)
	if err != nil {
		if errors.Cause(err) == session.ErrInvalidCredentials {
			fmt.Fprintln(cli.out, "Invalid email or password.")
			return nil
		}
		return err
	}

	cli.client.SetToken(sess.Token)
	fmt.Fprintf(cli.out, "Logged in as %s (%s).\n", sess.Email, sess.Role)
	return nil
}
