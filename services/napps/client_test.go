package napps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Onahi7/napps-portal/core/payment"
	"github.com/Onahi7/napps-portal/core/registration"
	"github.com/Onahi7/napps-portal/core/session"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{http: srv.Client(), baseURL: srv.URL, logger: nopLogger{}}
}

func Test_Client_BeginRegistration(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		var gotBody map[string]interface{}
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/proprietors/registration/step1" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_ = json.NewEncoder(w).Encode(map[string]string{"submissionId": "SUB123"})
		})

		id, err := client.BeginRegistration(context.Background(), registration.PersonalInfo{
			FirstName: "Amina", LastName: "Bello", Email: "amina@test.ng",
			Phone: "08031234567", Sex: "Female", LGA: "Lafia",
		})
		if err != nil {
			t.Fatalf("BeginRegistration() failed: %v", err)
		}
		if id != "SUB123" {
			t.Errorf("submission id = %q, want SUB123", id)
		}
		if gotBody["email"] != "amina@test.ng" || gotBody["sex"] != "Female" {
			t.Errorf("request body = %v", gotBody)
		}
	})

	t.Run("conflict maps to duplicate identity", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "email already registered"})
		})

		_, err := client.BeginRegistration(context.Background(), registration.PersonalInfo{})
		if errors.Cause(err) != registration.ErrDuplicateIdentity {
			t.Errorf("BeginRegistration() error = %v, want ErrDuplicateIdentity", err)
		}
	})
}

func Test_Client_SubmitSchoolInfo_payloadShape(t *testing.T) {
	var gotBody map[string]json.RawMessage
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	})

	info := registration.SchoolInfo{
		SchoolName: "Sunrise Academy", SchoolAddress: "1 School Rd",
		SchoolLGA: "Lafia", Category: "primary", YearEstablished: null.IntFrom(2010),
	}
	enrollment := registration.Enrollment{"primaryMale": 40, "primaryFemale": 0}
	if err := client.SubmitSchoolInfo(context.Background(), "SUB123", info, enrollment); err != nil {
		t.Fatalf("SubmitSchoolInfo() failed: %v", err)
	}

	// the school fields are flattened alongside the submission id
	var name string
	if err := json.Unmarshal(gotBody["schoolName"], &name); err != nil || name != "Sunrise Academy" {
		t.Errorf("schoolName = %s", gotBody["schoolName"])
	}
	var sent registration.Enrollment
	if err := json.Unmarshal(gotBody["enrollment"], &sent); err != nil {
		t.Fatalf("enrollment: %v", err)
	}
	if n, ok := sent["primaryFemale"]; !ok || n != 0 {
		t.Errorf("explicit zero was not transmitted: %v", sent)
	}
	if _, ok := sent["jssMale"]; ok {
		t.Errorf("unset field was transmitted: %v", sent)
	}
}

func Test_Client_step3(t *testing.T) {
	t.Run("online initiates without finalizing", func(t *testing.T) {
		var got step3Request
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"payment": map[string]interface{}{"simulationMode": true, "paymentUrl": "https://pay.test/x"},
			})
		})

		init, err := client.InitiateOnlinePayment(context.Background(), "SUB123")
		if err != nil {
			t.Fatalf("InitiateOnlinePayment() failed: %v", err)
		}
		if got.FinalSubmit {
			t.Error("online initiation must not set finalSubmit")
		}
		if got.PaymentMethod != payment.MethodOnline {
			t.Errorf("paymentMethod = %q", got.PaymentMethod)
		}
		if init.PaymentURL != "https://pay.test/x" || !init.SimulationMode {
			t.Errorf("init = %+v", init)
		}
	})

	t.Run("online with no payment URL fails", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{})
		})
		if _, err := client.InitiateOnlinePayment(context.Background(), "SUB123"); err == nil {
			t.Error("InitiateOnlinePayment() with no URL = nil error")
		}
	})

	t.Run("bank transfer finalizes", func(t *testing.T) {
		var got step3Request
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusOK)
		})

		if err := client.FinalizeBankTransfer(context.Background(), "SUB123"); err != nil {
			t.Fatalf("FinalizeBankTransfer() failed: %v", err)
		}
		if !got.FinalSubmit {
			t.Error("bank transfer must set finalSubmit")
		}
		if got.PaymentMethod != payment.MethodBankTransfer {
			t.Errorf("paymentMethod = %q", got.PaymentMethod)
		}
	})
}

func Test_Client_GetSubmission_notFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetSubmission(context.Background(), "NOPE")
	if errors.Cause(err) != registration.ErrSubmissionNotFound {
		t.Errorf("GetSubmission() error = %v, want ErrSubmissionNotFound", err)
	}
}

func Test_Client_VerifyPayment(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/payments/verify/REF1" {
				t.Errorf("path = %s", r.URL.Path)
			}
			_ = json.NewEncoder(w).Encode(payment.Detail{Reference: "REF1", Status: "successful", Amount: 6500})
		})

		detail, err := client.VerifyPayment(context.Background(), "REF1")
		if err != nil {
			t.Fatalf("VerifyPayment() failed: %v", err)
		}
		if detail.ParsedStatus() != payment.StatusSuccess || detail.Amount != 6500 {
			t.Errorf("detail = %+v", detail)
		}
	})

	t.Run("unknown reference", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, err := client.VerifyLevyPayment(context.Background(), "NOPE")
		if errors.Cause(err) != payment.ErrNotFound {
			t.Errorf("VerifyLevyPayment() error = %v, want payment.ErrNotFound", err)
		}
	})
}

func Test_Client_Login(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok123"})
		})
		token, err := client.Login(context.Background(), "amina@test.ng", "pwd")
		if err != nil || token != "tok123" {
			t.Errorf("Login() = (%q, %v)", token, err)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_, err := client.Login(context.Background(), "amina@test.ng", "wrong")
		if errors.Cause(err) != session.ErrInvalidCredentials {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func Test_Client_bearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]interface{}{})
	})

	client.SetToken("tok123")
	if _, err := client.ActiveFees(context.Background()); err != nil {
		t.Fatalf("ActiveFees() failed: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}
