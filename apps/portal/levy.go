package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/Onahi7/napps-portal/core/levy"
)

// levy runs the one-time building-levy payment flow.
func (cli *commandLine) levy(ctx context.Context) error {
	form, restored := cli.levySvc.Restore()
	if restored {
		fmt.Fprintf(cli.out, "Restored a saved levy form for %s (%s).\n", form.MemberName, form.Email)
		if !cli.promptYesNo("keep these details?") {
			form = levy.Form{}
		}
	}

	fmt.Fprintln(cli.out, "\n-- Building levy payment --")

	form.MemberName = cli.promptDefault("member name", form.MemberName)
	form.Email = cli.promptDefault("email", form.Email)
	form.Phone = cli.promptDefault("phone", form.Phone)

	// advisory early warning; the authoritative check runs on submit
	if outcome, err := cli.levySvc.CheckDuplicate(ctx, form.Email, form.Phone); err == nil {
		switch outcome.Kind {
		case levy.OutcomeCompleted:
			fmt.Fprintln(cli.out, "Note: a completed levy payment already exists for these details; submitting will be blocked.")
		case levy.OutcomePending:
			fmt.Fprintln(cli.out, "Note: a pending levy payment exists for these details; you will be asked whether to continue it.")
		}
	}

	form.Chapter = cli.promptDefault("chapter", form.Chapter)
	form.SchoolName = cli.promptDefault("school name", form.SchoolName)
	if form.SchoolName != "" && cli.promptYesNo("was the school name typed manually (not picked from the list)?") {
		form.ManualSchoolEntry = true
	}

	form.Wards = cli.promptWards(form.Wards)
	cli.levySvc.Persist(form)

	init, err := cli.levySvc.Submit(ctx, form, false)
	if err != nil {
		var pending *levy.PendingPaymentError
		switch {
		case errors.Cause(err) == levy.ErrAlreadyPaid:
			fmt.Fprintln(cli.out, "A completed building levy payment already exists for you; nothing more to pay.")
			return nil
		case errors.As(err, &pending):
			fmt.Fprintf(cli.out, "%s.\n", pending.Error())
			if pending.Existing != nil && pending.Existing.Reference != "" {
				fmt.Fprintf(cli.out, "Check it with `portal status -reference %s -gateway levy`.\n", pending.Existing.Reference)
			}
			if !cli.promptYesNo("start a fresh payment anyway?") {
				return nil
			}
			if init, err = cli.levySvc.Submit(ctx, form, true); err != nil {
				return err
			}
		case cli.printFieldErrors(err):
			fmt.Fprintln(cli.out, "Your answers were kept; run `portal levy` again to fix them.")
			return nil
		default:
			return err
		}
	}

	fmt.Fprintf(cli.out, "\nLevy payment created (reference %s", init.Reference)
	if init.ReceiptNumber != "" {
		fmt.Fprintf(cli.out, ", receipt %s", init.ReceiptNumber)
	}
	fmt.Fprintln(cli.out, ").")
	fmt.Fprintf(cli.out, "Complete your payment at:\n\n  %s\n\n", init.PaymentURL)
	fmt.Fprintf(cli.out, "Then check it with `portal status -reference %s -gateway levy`.\n", init.Reference)
	return nil
}

func (cli *commandLine) promptDefault(label, current string) string {
	if current != "" {
		if answer := cli.prompt(fmt.Sprintf("%s [%s]", label, current)); answer != "" {
			return answer
		}
		return current
	}
	return cli.prompt(label)
}

func (cli *commandLine) promptWards(existing []levy.Ward) []levy.Ward {
	wards := existing
	if len(wards) > 0 {
		fmt.Fprintln(cli.out, "Wards on the saved form:")
		for _, w := range wards {
			fmt.Fprintf(cli.out, "  - %s\n", w.Name)
		}
		if !cli.promptYesNo("keep them?") {
			wards = nil
		}
	}
	for {
		name := cli.prompt("ward name (blank to finish)")
		if name == "" {
			if len(wards) == 0 {
				fmt.Fprintln(cli.out, "at least one ward is required")
				continue
			}
			return wards
		}
		wards = append(wards, levy.NewWard(name))
	}
}
