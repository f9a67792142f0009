package registration

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Onahi7/napps-portal/core"
	"github.com/Onahi7/napps-portal/core/payment"
	"github.com/Onahi7/napps-portal/storage/draftstore"
)

// Wizard owns the step index and the accumulated registration data. It decides
// when to persist/resume the draft and dispatches step submissions to the
// backend. A submit failure never advances the phase or drops entered data.
type Wizard struct {
	api      Backend
	store    *draftstore.Store
	validate *validator.Validate
	logger   core.Logger

	phase Phase
	draft Draft
}

func NewWizard(api Backend, store *draftstore.Store, validate *validator.Validate, logger core.Logger) *Wizard {
	return &Wizard{
		api:      api,
		store:    store,
		validate: validate,
		logger:   logger,
		phase:    PhasePersonal,
	}
}

func (w *Wizard) Phase() Phase { return w.phase }
func (w *Wizard) Draft() Draft { return w.draft }

// Start loads any saved draft and reports whether a resume choice should be
// surfaced. A saved draft without a submission id (or a malformed one) is
// treated as no draft at all.
func (w *Wizard) Start() (resumable bool) {
	var d Draft
	if w.store.Load(draftstore.KeyRegistrationProgress, &d) && d.SubmissionID != "" {
		w.draft = d
		return true
	}
	return false
}

// PendingPayment returns the payment-pending marker from the last run, if any.
func (w *Wizard) PendingPayment() (PendingMarker, bool) {
	var marker PendingMarker
	ok := w.store.Load(draftstore.KeyPaymentPending, &marker)
	return marker, ok
}

// ContinueSaved resumes the loaded draft at its next incomplete phase.
func (w *Wizard) ContinueSaved() Phase {
	w.phase = w.draft.NextPhase()
	return w.phase
}

// StartNew discards all saved progress and resets to an empty first step.
func (w *Wizard) StartNew() {
	w.store.Clear(draftstore.KeyRegistrationProgress)
	w.store.Clear(draftstore.KeyPaymentPending)
	w.draft = Draft{}
	w.phase = PhasePersonal
}

// LoadSubmission reconstructs the draft from the server state for the given
// submission id and selects the step the server reports as next incomplete.
// On error (including an unknown id) no local state is mutated.
func (w *Wizard) LoadSubmission(ctx context.Context, submissionID string) (Phase, error) {
	sub, err := w.api.GetSubmission(ctx, submissionID)
	if err != nil {
		return w.phase, errors.Wrapf(err, "loading submission %q", submissionID)
	}

	w.draft = Draft{
		PersonalInfo: sub.Proprietor,
		SchoolInfo:   sub.School,
		SubmissionID: submissionID,
	}
	w.persistDraft()

	if sub.IsComplete {
		// terminal display of the last step
		w.phase = PhaseBankSubmitted
		return w.phase, nil
	}
	switch sub.CurrentStep {
	case 0, 1:
		w.phase = PhasePersonal
	case 2:
		w.phase = PhaseSchool
	case 3:
		w.phase = PhasePayment
	default:
		return w.phase, errors.Errorf("server reported unexpected step %d", sub.CurrentStep)
	}
	return w.phase, nil
}

// SubmitPersonal validates and submits the step-1 form. On success the
// returned submission id is merged into the draft and the wizard advances.
// ErrDuplicateIdentity flows through untouched so callers can invite a resume
// instead of a retry.
func (w *Wizard) SubmitPersonal(ctx context.Context, info PersonalInfo) error {
	switch w.phase {
	case PhasePersonal:
	default:
		return errors.Errorf("cannot submit personal info during phase %q", w.phase)
	}

	if err := info.Validate(w.validate); err != nil {
		return err
	}

	submissionID, err := w.api.BeginRegistration(ctx, info)
	if err != nil {
		return errors.Wrap(err, "beginning registration")
	}

	w.mergeStored()
	w.draft.PersonalInfo = &info
	w.draft.SubmissionID = submissionID
	w.persistDraft()
	w.phase = PhaseSchool
	return nil
}

// SubmitSchool validates the step-2 form, partitions it into school info and
// enrollment counts, and submits both with the submission id.
func (w *Wizard) SubmitSchool(ctx context.Context, form SchoolForm) error {
	switch w.phase {
	case PhaseSchool:
	default:
		return errors.Errorf("cannot submit school info during phase %q", w.phase)
	}
	if w.draft.SubmissionID == "" {
		return ErrNoSubmission
	}

	if err := form.Validate(w.validate); err != nil {
		return err
	}

	info, enrollment := form.Partition()
	if err := w.api.SubmitSchoolInfo(ctx, w.draft.SubmissionID, info, enrollment); err != nil {
		return errors.Wrap(err, "submitting school info")
	}

	w.mergeStored()
	w.draft.SchoolInfo = &info
	w.persistDraft()
	w.phase = PhasePayment
	return nil
}

// SubmitPayment submits step 3 with the chosen method. For online payments it
// returns the gateway hand-off to redirect to; for bank transfers the
// registration is finalized with verification pending. Either way a
// PendingMarker is persisted before returning.
func (w *Wizard) SubmitPayment(ctx context.Context, method payment.Method) (PaymentInit, error) {
	switch w.phase {
	case PhasePayment:
	default:
		return PaymentInit{}, errors.Errorf("cannot submit payment during phase %q", w.phase)
	}
	if w.draft.SubmissionID == "" {
		return PaymentInit{}, ErrNoSubmission
	}

	switch method {
	case payment.MethodOnline:
		init, err := w.api.InitiateOnlinePayment(ctx, w.draft.SubmissionID)
		if err != nil {
			return PaymentInit{}, errors.Wrap(err, "initiating online payment")
		}
		w.markPaymentPending(PaymentOnlinePending, method)
		w.phase = PhaseOnlineRedirect
		return init, nil

	case payment.MethodBankTransfer:
		if err := w.api.FinalizeBankTransfer(ctx, w.draft.SubmissionID); err != nil {
			return PaymentInit{}, errors.Wrap(err, "finalizing bank transfer")
		}
		w.markPaymentPending(PaymentBankPending, method)
		w.phase = PhaseBankSubmitted
		return PaymentInit{}, nil

	default:
		return PaymentInit{}, errors.Errorf("unknown payment method %q", method)
	}
}

// Back moves the displayed step back without clearing any collected data.
func (w *Wizard) Back() Phase {
	switch w.phase {
	case PhaseSchool:
		w.phase = PhasePersonal
	case PhasePayment:
		w.phase = PhaseSchool
	}
	return w.phase
}

// CompleteRegistration records a verified payment: the pending marker and the
// draft are both cleared, ending the resumable session.
func (w *Wizard) CompleteRegistration(registrationNumber string) {
	w.draft.RegistrationNumber = registrationNumber
	w.draft.PaymentPhase = PaymentVerified
	w.store.Clear(draftstore.KeyPaymentPending)
	w.store.Clear(draftstore.KeyRegistrationProgress)
}

func (w *Wizard) markPaymentPending(phase PaymentPhase, method payment.Method) {
	w.mergeStored()
	w.draft.PaymentPhase = phase
	w.draft.PaymentMethod = method
	w.persistDraft()
	w.store.Save(draftstore.KeyPaymentPending, PendingMarker{
		PaymentMethod: method,
		SubmissionID:  w.draft.SubmissionID,
	})
}

// mergeStored folds the stored draft into the in-memory one before a write, so
// a concurrent writer's submission id or step data is not lost (read-modify-
// write; last writer still wins on conflicting fields).
func (w *Wizard) mergeStored() {
	var stored Draft
	if !w.store.Load(draftstore.KeyRegistrationProgress, &stored) {
		return
	}
	if w.draft.SubmissionID == "" {
		w.draft.SubmissionID = stored.SubmissionID
	}
	if w.draft.PersonalInfo == nil {
		w.draft.PersonalInfo = stored.PersonalInfo
	}
	if w.draft.SchoolInfo == nil {
		w.draft.SchoolInfo = stored.SchoolInfo
	}
	if w.draft.PaymentPhase == "" || w.draft.PaymentPhase == PaymentNone {
		if stored.PaymentPhase != "" {
			w.draft.PaymentPhase = stored.PaymentPhase
		}
	}
	if w.draft.PaymentMethod == "" {
		w.draft.PaymentMethod = stored.PaymentMethod
	}
	if w.draft.RegistrationNumber == "" {
		w.draft.RegistrationNumber = stored.RegistrationNumber
	}
}

func (w *Wizard) persistDraft() {
	w.store.Save(draftstore.KeyRegistrationProgress, w.draft)
}
