package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/Onahi7/napps-portal/core/fees"
	"github.com/Onahi7/napps-portal/core/payment"
	"github.com/Onahi7/napps-portal/core/registration"
)

// errFlowDone ends the wizard loop without reporting a failure.
var errFlowDone = errors.New("flow done")

// register drives the three-step registration wizard, resuming any saved
// draft first.
func (cli *commandLine) register(ctx context.Context) error {
	if marker, ok := cli.wizard.PendingPayment(); ok {
		fmt.Fprintf(cli.out, "A %s payment from a previous run is awaiting verification (submission %s).\n",
			marker.PaymentMethod, marker.SubmissionID)
		fmt.Fprintln(cli.out, "Run `portal status -reference REF` to check it before paying again.")
	}

	if cli.wizard.Start() {
		if err := cli.chooseResume(ctx); err != nil {
			return err
		}
	}

	for {
		switch cli.wizard.Phase() {
		case registration.PhasePersonal:
			if err := cli.stepPersonal(ctx); err != nil {
				if err == errFlowDone {
					return nil
				}
				return err
			}
		case registration.PhaseSchool:
			if err := cli.stepSchool(ctx); err != nil {
				return err
			}
		case registration.PhasePayment:
			return cli.stepPayment(ctx)
		case registration.PhaseOnlineRedirect:
			fmt.Fprintln(cli.out, "An online payment is already in flight for this registration.")
			fmt.Fprintln(cli.out, "Complete it in your browser, or check it with `portal status`.")
			return nil
		case registration.PhaseBankSubmitted:
			fmt.Fprintln(cli.out, "This registration was submitted with bank-transfer verification pending.")
			return nil
		default:
			return errors.Errorf("unexpected wizard phase %q", cli.wizard.Phase())
		}
	}
}

func (cli *commandLine) chooseResume(ctx context.Context) error {
	draft := cli.wizard.Draft()
	fmt.Fprintf(cli.out, "Found a saved registration (submission %s).\n", draft.SubmissionID)
	fmt.Fprintln(cli.out, "  [c] continue where you left off")
	fmt.Fprintln(cli.out, "  [n] start a new registration (discards saved progress)")
	fmt.Fprintln(cli.out, "  [l] load a different submission id")

	for {
		switch cli.prompt("choice") {
		case "c", "":
			cli.wizard.ContinueSaved()
			return nil
		case "n":
			cli.wizard.StartNew()
			return nil
		case "l":
			id := cli.prompt("submission id")
			if _, err := cli.wizard.LoadSubmission(ctx, id); err != nil {
				if errors.Cause(err) == registration.ErrSubmissionNotFound {
					fmt.Fprintf(cli.out, "No submission found for %q.\n", id)
					continue
				}
				return err
			}
			return nil
		default:
			fmt.Fprintln(cli.out, "please answer c, n or l")
		}
	}
}

func (cli *commandLine) stepPersonal(ctx context.Context) error {
	fmt.Fprintln(cli.out, "\n-- Step 1 of 3: personal information --")

	info := registration.PersonalInfo{
		FirstName: cli.prompt("first name"),
		LastName:  cli.prompt("last name"),
		Email:     cli.prompt("email"),
		Phone:     cli.prompt("phone"),
		Sex:       cli.prompt("sex (Male/Female)"),
		LGA:       cli.prompt("LGA"),
	}

	err := cli.wizard.SubmitPersonal(ctx, info)
	switch {
	case err == nil:
		return nil
	case errors.Cause(err) == registration.ErrDuplicateIdentity:
		fmt.Fprintln(cli.out, "You are already registered with this email or phone number.")
		fmt.Fprintln(cli.out, "Run `portal resume` and load your submission id instead of registering again.")
		return errFlowDone
	case cli.printFieldErrors(err):
		return nil
	default:
		fmt.Fprintln(cli.out, "Something went wrong submitting this step; your answers were kept. Please try again.")
		cli.logger.Error(fmt.Sprintf("submitting step 1: %v", err), err)
		return nil
	}
}

func (cli *commandLine) stepSchool(ctx context.Context) error {
	fmt.Fprintln(cli.out, "\n-- Step 2 of 3: school information --")

	form := registration.SchoolForm{
		SchoolName:    cli.prompt("school name"),
		SchoolAddress: cli.prompt("school address"),
		SchoolLGA:     cli.prompt("school LGA"),
		Category:      cli.prompt("category"),
	}
	if year := cli.promptCount("year established"); year.Valid {
		form.YearEstablished = year
	}

	fmt.Fprintln(cli.out, "Enrollment counts (leave blank for levels you do not run; 0 counts are recorded):")
	form.PrePrimaryMale = cli.promptCount("pre-primary male")
	form.PrePrimaryFemale = cli.promptCount("pre-primary female")
	form.PrimaryMale = cli.promptCount("primary male")
	form.PrimaryFemale = cli.promptCount("primary female")
	form.JSSMale = cli.promptCount("JSS male")
	form.JSSFemale = cli.promptCount("JSS female")
	form.SSSMale = cli.promptCount("SSS male")
	form.SSSFemale = cli.promptCount("SSS female")

	err := cli.wizard.SubmitSchool(ctx, form)
	switch {
	case err == nil:
		return nil
	case cli.printFieldErrors(err):
		return nil
	default:
		fmt.Fprintln(cli.out, "Something went wrong submitting this step; your answers were kept. Please try again.")
		cli.logger.Error(fmt.Sprintf("submitting step 2: %v", err), err)
		return nil
	}
}

func (cli *commandLine) stepPayment(ctx context.Context) error {
	fmt.Fprintln(cli.out, "\n-- Step 3 of 3: payment --")

	cli.printSchedule(cli.feeSvc.Fetch(ctx))

	var method payment.Method
	for {
		switch cli.prompt("payment method ([o]nline / [b]ank transfer)") {
		case "o", "online":
			method = payment.MethodOnline
		case "b", "bank", "bank transfer":
			method = payment.MethodBankTransfer
		default:
			fmt.Fprintln(cli.out, "please answer o or b")
			continue
		}
		break
	}

	init, err := cli.wizard.SubmitPayment(ctx, method)
	if err != nil {
		fmt.Fprintln(cli.out, "Payment could not be started; nothing was changed. Please try again.")
		cli.logger.Error(fmt.Sprintf("submitting step 3: %v", err), err)
		return nil
	}

	switch method {
	case payment.MethodOnline:
		if init.SimulationMode {
			fmt.Fprintln(cli.out, "(gateway is in simulation mode)")
		}
		fmt.Fprintf(cli.out, "Complete your payment at:\n\n  %s\n\n", init.PaymentURL)
		fmt.Fprintln(cli.out, "You will be redirected back when done; or check later with `portal status`.")
	case payment.MethodBankTransfer:
		fmt.Fprintln(cli.out, "Registration submitted. Your payment will be verified once the transfer clears;")
		fmt.Fprintln(cli.out, "check progress with `portal status -reference REF`.")
	}
	return nil
}

func (cli *commandLine) printSchedule(schedule fees.Schedule) {
	if schedule.IsEmpty() {
		fmt.Fprintln(cli.out, "No fees are configured; any amount due is determined at payment time.")
		return
	}
	for _, fee := range schedule.Items {
		fmt.Fprintf(cli.out, "  %-30s %s\n", fee.Name, fees.FormatNaira(fee.Amount))
	}
	fmt.Fprintf(cli.out, "  %-30s %s\n", "Total", fees.FormatNaira(schedule.Total()))
}

// fees prints the active fee schedule.
func (cli *commandLine) fees(ctx context.Context) error {
	cli.printSchedule(cli.feeSvc.Fetch(ctx))
	return nil
}
