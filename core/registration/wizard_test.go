package registration

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Onahi7/napps-portal/core"
	"github.com/Onahi7/napps-portal/core/payment"
	"github.com/Onahi7/napps-portal/storage/draftstore"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// mockBackend records what was sent and answers from canned state.
type mockBackend struct {
	submissionID string
	beginErr     error
	submission   Submission
	getErr       error

	sentInfo       *PersonalInfo
	sentSchool     *SchoolInfo
	sentEnrollment Enrollment
	finalized      bool
	initiated      bool
}

func (m *mockBackend) BeginRegistration(_ context.Context, info PersonalInfo) (string, error) {
	if m.beginErr != nil {
		return "", m.beginErr
	}
	m.sentInfo = &info
	return m.submissionID, nil
}

func (m *mockBackend) SubmitSchoolInfo(_ context.Context, _ string, info SchoolInfo, enrollment Enrollment) error {
	m.sentSchool = &info
	m.sentEnrollment = enrollment
	return nil
}

func (m *mockBackend) InitiateOnlinePayment(_ context.Context, _ string) (PaymentInit, error) {
	m.initiated = true
	return PaymentInit{PaymentURL: "https://pay.test/redirect"}, nil
}

func (m *mockBackend) FinalizeBankTransfer(_ context.Context, _ string) error {
	m.finalized = true
	return nil
}

func (m *mockBackend) GetSubmission(_ context.Context, _ string) (Submission, error) {
	if m.getErr != nil {
		return Submission{}, m.getErr
	}
	return m.submission, nil
}

func setup(t *testing.T, api *mockBackend) (*Wizard, *draftstore.Store) {
	t.Helper()
	validate, _ := core.NewValidator()
	store := draftstore.NewStore(draftstore.NewInMemKV(), nopLogger{})
	return NewWizard(api, store, validate, nopLogger{}), store
}

func validPersonal() PersonalInfo {
	return PersonalInfo{
		FirstName: "Amina",
		LastName:  "Bello",
		Email:     "amina@test.ng",
		Phone:     "08031234567",
		Sex:       "Female",
		LGA:       "Lafia",
	}
}

func validSchool() SchoolForm {
	return SchoolForm{
		SchoolName:    "Sunrise Academy",
		SchoolAddress: "1 School Rd",
		SchoolLGA:     "Lafia",
		Category:      "primary",
	}
}

func Test_Wizard_draftIsUnionOfSteps(t *testing.T) {
	api := &mockBackend{submissionID: "SUB123"}
	w, store := setup(t, api)
	ctx := context.Background()

	if err := w.SubmitPersonal(ctx, validPersonal()); err != nil {
		t.Fatalf("SubmitPersonal() failed: %v", err)
	}
	if w.Phase() != PhaseSchool {
		t.Fatalf("Phase() = %q, want %q", w.Phase(), PhaseSchool)
	}

	if err := w.SubmitSchool(ctx, validSchool()); err != nil {
		t.Fatalf("SubmitSchool() failed: %v", err)
	}
	if w.Phase() != PhasePayment {
		t.Fatalf("Phase() = %q, want %q", w.Phase(), PhasePayment)
	}

	// the stored draft must hold both steps plus the submission id
	var d Draft
	if !store.Load(draftstore.KeyRegistrationProgress, &d) {
		t.Fatal("no draft persisted")
	}
	if d.SubmissionID != "SUB123" {
		t.Errorf("draft submission id = %q, want SUB123", d.SubmissionID)
	}
	if d.PersonalInfo == nil || d.PersonalInfo.Email != "amina@test.ng" {
		t.Errorf("draft personal info = %+v, want the step-1 data", d.PersonalInfo)
	}
	if d.SchoolInfo == nil || d.SchoolInfo.SchoolName != "Sunrise Academy" {
		t.Errorf("draft school info = %+v, want the step-2 data", d.SchoolInfo)
	}
}

func Test_Wizard_resumeLandsOnNextIncompleteStep(t *testing.T) {
	api := &mockBackend{submissionID: "SUB123"}
	w, store := setup(t, api)

	// a draft with only step 1 done resumes at step 2
	store.Save(draftstore.KeyRegistrationProgress, Draft{
		PersonalInfo: &PersonalInfo{FirstName: "Amina"},
		SubmissionID: "SUB123",
	})
	if !w.Start() {
		t.Fatal("Start() = false, want a resumable draft")
	}
	if got := w.ContinueSaved(); got != PhaseSchool {
		t.Errorf("ContinueSaved() = %q, want %q", got, PhaseSchool)
	}

	// a draft without a submission id is not resumable
	w2, store2 := setup(t, api)
	store2.Save(draftstore.KeyRegistrationProgress, Draft{PersonalInfo: &PersonalInfo{FirstName: "Amina"}})
	if w2.Start() {
		t.Error("Start() = true for a draft without a submission id, want false")
	}
}

func Test_Wizard_startNewClearsBothKeys(t *testing.T) {
	api := &mockBackend{submissionID: "SUB123"}
	w, store := setup(t, api)

	store.Save(draftstore.KeyRegistrationProgress, Draft{SubmissionID: "SUB123"})
	store.Save(draftstore.KeyPaymentPending, PendingMarker{SubmissionID: "SUB123", PaymentMethod: payment.MethodOnline})

	w.Start()
	w.StartNew()

	var d Draft
	if store.Load(draftstore.KeyRegistrationProgress, &d) {
		t.Error("registration progress survived StartNew()")
	}
	var m PendingMarker
	if store.Load(draftstore.KeyPaymentPending, &m) {
		t.Error("payment-pending marker survived StartNew()")
	}
	if w.Phase() != PhasePersonal || !w.Draft().IsEmpty() {
		t.Errorf("wizard not reset: phase %q, draft %+v", w.Phase(), w.Draft())
	}
}

func Test_Wizard_duplicateIdentityDoesNotAdvance(t *testing.T) {
	api := &mockBackend{beginErr: errors.Wrap(ErrDuplicateIdentity, "beginning registration")}
	w, store := setup(t, api)

	err := w.SubmitPersonal(context.Background(), validPersonal())
	if errors.Cause(err) != ErrDuplicateIdentity {
		t.Fatalf("SubmitPersonal() error = %v, want ErrDuplicateIdentity", err)
	}
	if w.Phase() != PhasePersonal {
		t.Errorf("Phase() = %q after a conflict, want to stay on %q", w.Phase(), PhasePersonal)
	}
	var d Draft
	if store.Load(draftstore.KeyRegistrationProgress, &d) {
		t.Error("a failed submit persisted a draft")
	}
}

func Test_Wizard_invalidFormDoesNotHitBackend(t *testing.T) {
	api := &mockBackend{submissionID: "SUB123"}
	w, _ := setup(t, api)

	info := validPersonal()
	info.Phone = "12345" // not a valid Nigerian number
	if err := w.SubmitPersonal(context.Background(), info); err == nil {
		t.Fatal("SubmitPersonal() with a bad phone = nil error")
	}
	if api.sentInfo != nil {
		t.Error("backend was called despite a validation failure")
	}
}

func Test_Wizard_enrollmentZeroVsUnset(t *testing.T) {
	api := &mockBackend{submissionID: "SUB123"}
	w, _ := setup(t, api)
	ctx := context.Background()

	if err := w.SubmitPersonal(ctx, validPersonal()); err != nil {
		t.Fatalf("SubmitPersonal() failed: %v", err)
	}

	form := validSchool()
	form.PrimaryMale = null.IntFrom(40)
	form.PrimaryFemale = null.IntFrom(0) // an explicit zero is a real answer
	// the remaining levels were never touched
	if err := w.SubmitSchool(ctx, form); err != nil {
		t.Fatalf("SubmitSchool() failed: %v", err)
	}

	got := api.sentEnrollment
	if len(got) != 2 {
		t.Fatalf("enrollment payload = %v, want exactly the 2 set fields", got)
	}
	if got["primaryMale"] != 40 {
		t.Errorf("primaryMale = %d, want 40", got["primaryMale"])
	}
	if n, ok := got["primaryFemale"]; !ok || n != 0 {
		t.Errorf("primaryFemale = (%d, %v), want an explicit 0", n, ok)
	}
	if _, ok := got["jssMale"]; ok {
		t.Error("an untouched field was transmitted")
	}
}

func Test_Wizard_loadSubmission(t *testing.T) {
	tests := []struct {
		name      string
		sub       Submission
		getErr    error
		wantPhase Phase
		wantErr   error
	}{
		{
			name:      "server says step 2",
			sub:       Submission{Proprietor: &PersonalInfo{FirstName: "Amina"}, CurrentStep: 2},
			wantPhase: PhaseSchool,
		},
		{
			name:      "server says step 3",
			sub:       Submission{Proprietor: &PersonalInfo{FirstName: "Amina"}, School: &SchoolInfo{SchoolName: "Sunrise"}, CurrentStep: 3},
			wantPhase: PhasePayment,
		},
		{
			name:      "complete submission",
			sub:       Submission{IsComplete: true, CurrentStep: 3},
			wantPhase: PhaseBankSubmitted,
		},
		{
			name:    "unknown id",
			getErr:  ErrSubmissionNotFound,
			wantErr: ErrSubmissionNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockBackend{submission: tt.sub, getErr: tt.getErr}
			w, store := setup(t, api)

			phase, err := w.LoadSubmission(context.Background(), "SUB123")
			if tt.wantErr != nil {
				if errors.Cause(err) != tt.wantErr {
					t.Fatalf("LoadSubmission() error = %v, want %v", err, tt.wantErr)
				}
				var d Draft
				if store.Load(draftstore.KeyRegistrationProgress, &d) {
					t.Error("a failed load persisted a draft")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadSubmission() failed: %v", err)
			}
			if phase != tt.wantPhase {
				t.Errorf("LoadSubmission() phase = %q, want %q", phase, tt.wantPhase)
			}
			var d Draft
			if !store.Load(draftstore.KeyRegistrationProgress, &d) || d.SubmissionID != "SUB123" {
				t.Errorf("reconstructed draft not persisted: %+v", d)
			}
		})
	}
}

func Test_Wizard_submitPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("online", func(t *testing.T) {
		api := &mockBackend{submissionID: "SUB123"}
		w, store := setup(t, api)
		if err := w.SubmitPersonal(ctx, validPersonal()); err != nil {
			t.Fatalf("SubmitPersonal() failed: %v", err)
		}
		if err := w.SubmitSchool(ctx, validSchool()); err != nil {
			t.Fatalf("SubmitSchool() failed: %v", err)
		}

		init, err := w.SubmitPayment(ctx, payment.MethodOnline)
		if err != nil {
			t.Fatalf("SubmitPayment() failed: %v", err)
		}
		if init.PaymentURL == "" {
			t.Error("SubmitPayment() returned no redirect URL")
		}
		if api.finalized {
			t.Error("an online payment must not finalize the registration")
		}
		if w.Phase() != PhaseOnlineRedirect {
			t.Errorf("Phase() = %q, want %q", w.Phase(), PhaseOnlineRedirect)
		}

		var m PendingMarker
		if !store.Load(draftstore.KeyPaymentPending, &m) {
			t.Fatal("no pending marker persisted")
		}
		if m.PaymentMethod != payment.MethodOnline || m.SubmissionID != "SUB123" {
			t.Errorf("pending marker = %+v", m)
		}
	})

	t.Run("bank transfer", func(t *testing.T) {
		api := &mockBackend{submissionID: "SUB123"}
		w, store := setup(t, api)
		if err := w.SubmitPersonal(ctx, validPersonal()); err != nil {
			t.Fatalf("SubmitPersonal() failed: %v", err)
		}
		if err := w.SubmitSchool(ctx, validSchool()); err != nil {
			t.Fatalf("SubmitSchool() failed: %v", err)
		}

		if _, err := w.SubmitPayment(ctx, payment.MethodBankTransfer); err != nil {
			t.Fatalf("SubmitPayment() failed: %v", err)
		}
		if !api.finalized {
			t.Error("a bank transfer must finalize the registration")
		}
		if api.initiated {
			t.Error("a bank transfer must not open an online payment")
		}
		if w.Phase() != PhaseBankSubmitted {
			t.Errorf("Phase() = %q, want %q", w.Phase(), PhaseBankSubmitted)
		}

		var d Draft
		if !store.Load(draftstore.KeyRegistrationProgress, &d) {
			t.Fatal("no draft persisted")
		}
		if d.PaymentPhase != PaymentBankPending {
			t.Errorf("draft payment phase = %q, want %q", d.PaymentPhase, PaymentBankPending)
		}
	})

	t.Run("out of order", func(t *testing.T) {
		api := &mockBackend{submissionID: "SUB123"}
		w, _ := setup(t, api)
		if _, err := w.SubmitPayment(ctx, payment.MethodOnline); err == nil {
			t.Error("SubmitPayment() before step 1 = nil error")
		}
	})
}

func Test_Wizard_completeRegistrationEndsSession(t *testing.T) {
	api := &mockBackend{submissionID: "SUB123"}
	w, store := setup(t, api)
	ctx := context.Background()

	if err := w.SubmitPersonal(ctx, validPersonal()); err != nil {
		t.Fatalf("SubmitPersonal() failed: %v", err)
	}
	if err := w.SubmitSchool(ctx, validSchool()); err != nil {
		t.Fatalf("SubmitSchool() failed: %v", err)
	}
	if _, err := w.SubmitPayment(ctx, payment.MethodOnline); err != nil {
		t.Fatalf("SubmitPayment() failed: %v", err)
	}

	w.CompleteRegistration("NAPPS/2024/0042")

	var d Draft
	if store.Load(draftstore.KeyRegistrationProgress, &d) {
		t.Error("registration progress survived completion")
	}
	var m PendingMarker
	if store.Load(draftstore.KeyPaymentPending, &m) {
		t.Error("pending marker survived completion")
	}
	if w.Draft().RegistrationNumber != "NAPPS/2024/0042" {
		t.Errorf("registration number = %q", w.Draft().RegistrationNumber)
	}
}

func Test_Wizard_backKeepsData(t *testing.T) {
	api := &mockBackend{submissionID: "SUB123"}
	w, _ := setup(t, api)

	if err := w.SubmitPersonal(context.Background(), validPersonal()); err != nil {
		t.Fatalf("SubmitPersonal() failed: %v", err)
	}
	if got := w.Back(); got != PhasePersonal {
		t.Errorf("Back() = %q, want %q", got, PhasePersonal)
	}
	if w.Draft().PersonalInfo == nil {
		t.Error("Back() dropped the collected step-1 data")
	}
}
