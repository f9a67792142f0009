package registration

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Onahi7/napps-portal/core"
	"github.com/Onahi7/napps-portal/core/payment"
)

var (
	// errors
	ErrDuplicateIdentity  = errors.New("a registration with this email or phone number already exists")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrNoSubmission       = errors.New("no submission in progress")
)

// Phase is the registration wizard's current step.
type Phase string

const (
	PhasePersonal       Phase = "personal"
	PhaseSchool         Phase = "school"
	PhasePayment        Phase = "payment"
	PhaseOnlineRedirect Phase = "online_redirect"
	PhaseBankSubmitted  Phase = "bank_submitted"
)

// PaymentPhase tracks the single in-flight payment attempt for a submission.
// A submission is in exactly one of these at any time; "online pending" and
// "bank finalized" cannot coexist.
type PaymentPhase string

const (
	PaymentNone          PaymentPhase = "none"
	PaymentOnlinePending PaymentPhase = "online_pending"
	PaymentBankPending   PaymentPhase = "bank_pending"
	PaymentVerified      PaymentPhase = "verified"
)

// PersonalInfo is the step-1 form.
type PersonalInfo struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,ngphone"`
	Sex       string `json:"sex" validate:"required,oneof=Male Female"`
	LGA       string `json:"lga" validate:"required"`
}

func (pi *PersonalInfo) Validate(validate *validator.Validate) error {
	pi.FirstName = core.CleanString(pi.FirstName)
	pi.LastName = core.CleanString(pi.LastName)
	pi.Email = core.CleanString(pi.Email, true /* lower */)
	pi.Phone = core.CleanString(pi.Phone)
	pi.LGA = core.CleanString(pi.LGA)
	return validate.Struct(pi)
}

// SchoolForm is the step-2 form: school particulars plus per-level enrollment
// counts. Counts are nullable on purpose: an untouched field is omitted from
// the payload entirely while an explicit 0 is transmitted.
type SchoolForm struct {
	SchoolName      string   `json:"schoolName" validate:"required"`
	SchoolAddress   string   `json:"schoolAddress" validate:"required"`
	SchoolLGA       string   `json:"schoolLga" validate:"required"`
	Category        string   `json:"category" validate:"required"`
	YearEstablished null.Int `json:"yearEstablished,omitempty"`

	PrePrimaryMale   null.Int `json:"prePrimaryMale,omitempty"`
	PrePrimaryFemale null.Int `json:"prePrimaryFemale,omitempty"`
	PrimaryMale      null.Int `json:"primaryMale,omitempty"`
	PrimaryFemale    null.Int `json:"primaryFemale,omitempty"`
	JSSMale          null.Int `json:"jssMale,omitempty"`
	JSSFemale        null.Int `json:"jssFemale,omitempty"`
	SSSMale          null.Int `json:"sssMale,omitempty"`
	SSSFemale        null.Int `json:"sssFemale,omitempty"`
}

func (sf *SchoolForm) Validate(validate *validator.Validate) error {
	sf.SchoolName = core.CleanString(sf.SchoolName)
	sf.SchoolAddress = core.CleanString(sf.SchoolAddress)
	sf.SchoolLGA = core.CleanString(sf.SchoolLGA)
	sf.Category = core.CleanString(sf.Category)
	return validate.Struct(sf)
}

// SchoolInfo is the school-particulars partition persisted in the draft.
type SchoolInfo struct {
	SchoolName      string   `json:"schoolName"`
	SchoolAddress   string   `json:"schoolAddress"`
	SchoolLGA       string   `json:"schoolLga"`
	Category        string   `json:"category"`
	YearEstablished null.Int `json:"yearEstablished,omitempty"`
}

// Enrollment maps enrollment field names to their submitted counts.
// Zero is a valid, included value; unset fields never appear.
type Enrollment map[string]int

// Draft is the resumable registration state persisted under
// draftstore.KeyRegistrationProgress.
type Draft struct {
	PersonalInfo       *PersonalInfo  `json:"personalInfo,omitempty"`
	SchoolInfo         *SchoolInfo    `json:"schoolInfo,omitempty"`
	SubmissionID       string         `json:"submissionId,omitempty"`
	PaymentPhase       PaymentPhase   `json:"paymentPhase,omitempty"`
	PaymentMethod      payment.Method `json:"paymentMethod,omitempty"`
	RegistrationNumber string         `json:"registrationNumber,omitempty"`
	Timestamp          int64          `json:"timestamp,omitempty"` // epoch-ms, stamped by the store
}

func (d Draft) IsEmpty() bool {
	return d.PersonalInfo == nil && d.SchoolInfo == nil && d.SubmissionID == ""
}

// NextPhase derives where a resumed draft should land.
func (d Draft) NextPhase() Phase {
	switch {
	case d.PaymentPhase == PaymentOnlinePending:
		return PhaseOnlineRedirect
	case d.PaymentPhase == PaymentBankPending:
		return PhaseBankSubmitted
	case d.SchoolInfo != nil:
		return PhasePayment
	case d.SubmissionID != "":
		return PhaseSchool
	default:
		return PhasePersonal
	}
}

// PendingMarker is persisted under draftstore.KeyPaymentPending when step 3 is
// submitted, so the next app load can prompt a payment-status check.
// It is cleared on verified success.
type PendingMarker struct {
	PaymentMethod payment.Method `json:"paymentMethod"`
	SubmissionID  string         `json:"submissionId"`
	Timestamp     int64          `json:"timestamp,omitempty"`
}

// PaymentInit is the gateway hand-off returned by an online step-3 submit.
type PaymentInit struct {
	PaymentURL     string `json:"paymentUrl"`
	SimulationMode bool   `json:"simulationMode,omitempty"`
}

// Submission is the server-side view of a registration, used to reconstruct a
// draft from a submission id.
type Submission struct {
	Proprietor  *PersonalInfo `json:"proprietor"`
	School      *SchoolInfo   `json:"school"`
	IsComplete  bool          `json:"isComplete"`
	CurrentStep int           `json:"currentStep"`
}

// Backend is the slice of the NAPPS API the wizard drives.
type Backend interface {
	// BeginRegistration returns the new submission id.
	// Returns ErrDuplicateIdentity when the email/phone is already registered.
	BeginRegistration(ctx context.Context, info PersonalInfo) (string, error)
	SubmitSchoolInfo(ctx context.Context, submissionID string, info SchoolInfo, enrollment Enrollment) error
	// InitiateOnlinePayment starts a payment without finalizing the registration.
	InitiateOnlinePayment(ctx context.Context, submissionID string) (PaymentInit, error)
	// FinalizeBankTransfer finalizes the registration with verification pending.
	FinalizeBankTransfer(ctx context.Context, submissionID string) error
	// GetSubmission returns ErrSubmissionNotFound for unknown ids.
	GetSubmission(ctx context.Context, submissionID string) (Submission, error)
}
