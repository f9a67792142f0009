package levy

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Onahi7/napps-portal/core"
	"github.com/Onahi7/napps-portal/storage/draftstore"
)

// ErrAlreadyPaid is the hard stop: a completed building-levy payment already
// exists for this member and a new one must not be created.
var ErrAlreadyPaid = errors.New("a completed building levy payment already exists for this member")

// Service runs the building-levy payment flow.
//
// The levy duplicate policy is deliberately distinct from the registration
// conflict policy: registration conflicts invite a resume, while a levy
// duplicate hard-blocks on completed payments and soft-continues pending ones.
type Service struct {
	gw       Gateway
	store    *draftstore.Store
	validate *validator.Validate
	logger   core.Logger
}

func NewService(gw Gateway, store *draftstore.Store, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{gw: gw, store: store, validate: validate, logger: logger}
}

// Persist saves the in-progress form; called on every change.
func (svc *Service) Persist(form Form) {
	svc.store.Save(draftstore.KeyLevyForm, form)
}

// Restore loads the previously saved form, if any.
func (svc *Service) Restore() (Form, bool) {
	var form Form
	ok := svc.store.Load(draftstore.KeyLevyForm, &form)
	return form, ok
}

// ClearSaved drops the saved form, e.g. after a verified payment.
func (svc *Service) ClearSaved() {
	svc.store.Clear(draftstore.KeyLevyForm)
}

// CheckDuplicate is the opportunistic check fired when the member's email or
// phone field loses focus. Its result is advisory and never cached past the
// call; the authoritative check happens inside Submit.
func (svc *Service) CheckDuplicate(ctx context.Context, email, phone string) (Outcome, error) {
	check, err := svc.gw.CheckDuplicateLevyPayment(ctx, core.CleanString(email, true), core.CleanString(phone))
	if err != nil {
		return Outcome{Kind: OutcomeNew}, errors.Wrap(err, "checking duplicate levy payment")
	}
	return classify(check), nil
}

// Submit validates the form, re-runs the duplicate check authoritatively and
// initializes a new levy payment.
//
// A completed prior payment returns ErrAlreadyPaid and the initialize call is
// never made. A pending prior payment returns *PendingPaymentError unless the
// caller explicitly chose to proceed with a fresh attempt.
func (svc *Service) Submit(ctx context.Context, form Form, proceedWithPending bool) (Initialized, error) {
	if err := form.Validate(svc.validate); err != nil {
		return Initialized{}, err
	}

	check, err := svc.gw.CheckDuplicateLevyPayment(ctx, form.Email, form.Phone)
	if err != nil {
		return Initialized{}, errors.Wrap(err, "checking duplicate levy payment")
	}
	switch outcome := classify(check); outcome.Kind {
	case OutcomeCompleted:
		return Initialized{}, ErrAlreadyPaid
	case OutcomePending:
		if !proceedWithPending {
			return Initialized{}, &PendingPaymentError{Existing: outcome.Existing}
		}
	case OutcomeNew:
	}

	init, err := svc.gw.InitializeLevyPayment(ctx, form)
	if err != nil {
		return Initialized{}, errors.Wrap(err, "initializing levy payment")
	}
	svc.Persist(form)
	return init, nil
}
