package levy

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Onahi7/napps-portal/core"
	"github.com/Onahi7/napps-portal/core/payment"
)

// Ward is a proprietor's child covered by the building levy.
type Ward struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
}

func NewWard(name string) Ward {
	return Ward{ID: uuid.NewString(), Name: core.CleanString(name)}
}

// Form is the building-levy payment form. It is persisted on every change
// under draftstore.KeyLevyForm, independent of the registration draft.
type Form struct {
	MemberName        string `json:"memberName" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone" validate:"required,ngphone"`
	Chapter           string `json:"chapter" validate:"required"`
	SchoolName        string `json:"schoolName" validate:"required"`
	ManualSchoolEntry bool   `json:"isManualSchoolEntry"`
	Wards             []Ward `json:"wards" validate:"required,min=1,dive"`
}

func (f *Form) Validate(validate *validator.Validate) error {
	f.MemberName = core.CleanString(f.MemberName)
	f.Email = core.CleanString(f.Email, true /* lower */)
	f.Phone = core.CleanString(f.Phone)
	f.Chapter = core.CleanString(f.Chapter)
	f.SchoolName = core.CleanString(f.SchoolName)
	for i := range f.Wards {
		f.Wards[i].Name = core.CleanString(f.Wards[i].Name)
	}
	return validate.Struct(f)
}

// DuplicateCheck is the backend's answer to "does an equivalent payment exist?".
type DuplicateCheck struct {
	IsDuplicate bool            `json:"isDuplicate"`
	CanContinue bool            `json:"canContinue"`
	Payment     *payment.Detail `json:"payment,omitempty"`
}

// OutcomeKind classifies a duplicate check.
type OutcomeKind string

const (
	// OutcomeNew: no equivalent payment exists; a new one may be created.
	OutcomeNew OutcomeKind = "new"
	// OutcomePending: a prior attempt is still pending; the member may
	// continue it instead of paying again, but may also proceed anew.
	OutcomePending OutcomeKind = "pending"
	// OutcomeCompleted: a prior attempt already succeeded; creating another
	// payment is blocked outright.
	OutcomeCompleted OutcomeKind = "completed"
)

// Outcome is the classified result of a duplicate check. Existing is only set
// for the duplicate kinds and is never persisted.
type Outcome struct {
	Kind     OutcomeKind
	Existing *payment.Detail
}

func classify(check DuplicateCheck) Outcome {
	switch {
	case !check.IsDuplicate:
		return Outcome{Kind: OutcomeNew}
	case check.CanContinue:
		return Outcome{Kind: OutcomePending, Existing: check.Payment}
	default:
		return Outcome{Kind: OutcomeCompleted, Existing: check.Payment}
	}
}

// Initialized is the gateway hand-off for a newly created levy payment.
type Initialized struct {
	Reference     string `json:"reference"`
	ReceiptNumber string `json:"receiptNumber"`
	PaymentURL    string `json:"paymentUrl"`
}

// Gateway is the slice of the NAPPS API the levy flow drives.
type Gateway interface {
	CheckDuplicateLevyPayment(ctx context.Context, email, phone string) (DuplicateCheck, error)
	InitializeLevyPayment(ctx context.Context, form Form) (Initialized, error)
}

// PendingPaymentError reports that a continuable pending payment already
// exists; callers may offer its reference as a "continue" alternative and
// resubmit with an explicit proceed.
type PendingPaymentError struct {
	Existing *payment.Detail
}

func (e *PendingPaymentError) Error() string {
	if e.Existing != nil {
		return fmt.Sprintf("a pending levy payment already exists (reference %s)", e.Existing.Reference)
	}
	return "a pending levy payment already exists"
}
