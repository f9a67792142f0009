package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/Onahi7/napps-portal/core/fees"
	"github.com/Onahi7/napps-portal/core/payment"
)

const pollInterval = 5 * time.Second

// status verifies a payment reference, optionally polling until it settles.
// Only a verified success ends the locally saved session.
func (cli *commandLine) status(ctx context.Context, reference string, gw payment.Gateway, watch bool) error {
	if !gw.Valid() {
		return errors.Errorf("unknown gateway %q; use primary or levy", gw)
	}

	var (
		detail payment.Detail
		err    error
	)
	if watch {
		fmt.Fprintf(cli.out, "Watching %s (checking every %v, Ctrl-C to stop)...\n", reference, pollInterval)
		detail, err = cli.paySvc.Poll(ctx, gw, reference, pollInterval)
	} else {
		detail, err = cli.paySvc.Verify(ctx, gw, reference)
	}
	if err != nil {
		if errors.Cause(err) == payment.ErrNotFound {
			fmt.Fprintf(cli.out, "No payment found for reference %q.\n", reference)
			return nil
		}
		return err
	}

	status := detail.ParsedStatus()
	fmt.Fprintf(cli.out, "Reference: %s\n", detail.Reference)
	fmt.Fprintf(cli.out, "Status:    %s\n", status)
	if detail.Amount > 0 {
		fmt.Fprintf(cli.out, "Amount:    %s\n", fees.FormatNaira(detail.Amount))
	}
	if detail.Channel != "" {
		fmt.Fprintf(cli.out, "Channel:   %s\n", detail.Channel)
	}
	if detail.ReceiptNumber != "" {
		fmt.Fprintf(cli.out, "Receipt:   %s\n", detail.ReceiptNumber)
	}

	switch status {
	case payment.StatusSuccess:
		if gw == payment.GatewayPrimary {
			cli.wizard.CompleteRegistration(detail.ReceiptNumber)
			fmt.Fprintln(cli.out, "\nPayment verified. Your registration is complete; saved progress was cleared.")
		} else {
			cli.levySvc.ClearSaved()
			fmt.Fprintln(cli.out, "\nLevy payment verified; the saved form was cleared.")
		}
	case payment.StatusFailed:
		fmt.Fprintln(cli.out, "\nThe payment failed. Nothing was charged; start a new attempt when ready.")
	default:
		fmt.Fprintln(cli.out, "\nStill pending; check again later or re-run with -watch.")
	}
	return nil
}
