package napps

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/Onahi7/napps-portal/core/payment"
	"github.com/Onahi7/napps-portal/core/registration"
)

var _ registration.Backend = (*Client)(nil)

func (c *Client) BeginRegistration(ctx context.Context, info registration.PersonalInfo) (string, error) {
	var res struct {
		SubmissionID string `json:"submissionId"`
	}
	err := c.do(ctx, http.MethodPost, "/proprietors/registration/step1", info, &res)
	if err != nil {
		if IsConflict(err) {
			return "", errors.Wrap(registration.ErrDuplicateIdentity, err.Error())
		}
		return "", err
	}
	return res.SubmissionID, nil
}

func (c *Client) SubmitSchoolInfo(ctx context.Context, submissionID string, info registration.SchoolInfo, enrollment registration.Enrollment) error {
	body := struct {
		SubmissionID string `json:"submissionId"`
		registration.SchoolInfo
		Enrollment registration.Enrollment `json:"enrollment,omitempty"`
	}{
		SubmissionID: submissionID,
		SchoolInfo:   info,
		Enrollment:   enrollment,
	}
	return c.do(ctx, http.MethodPost, "/proprietors/registration/step2", body, nil)
}

type step3Request struct {
	SubmissionID  string         `json:"submissionId"`
	PaymentMethod payment.Method `json:"paymentMethod"`
	FinalSubmit   bool           `json:"finalSubmit"`
}

type step3Response struct {
	PaymentURL string `json:"paymentUrl"`
	Payment    *struct {
		SimulationMode bool   `json:"simulationMode"`
		PaymentURL     string `json:"paymentUrl"`
	} `json:"payment"`
}

func (c *Client) InitiateOnlinePayment(ctx context.Context, submissionID string) (registration.PaymentInit, error) {
	var res step3Response
	body := step3Request{SubmissionID: submissionID, PaymentMethod: payment.MethodOnline, FinalSubmit: false}
	if err := c.do(ctx, http.MethodPost, "/proprietors/registration/step3", body, &res); err != nil {
		return registration.PaymentInit{}, err
	}

	init := registration.PaymentInit{PaymentURL: res.PaymentURL}
	if res.Payment != nil {
		init.SimulationMode = res.Payment.SimulationMode
		if res.Payment.PaymentURL != "" {
			init.PaymentURL = res.Payment.PaymentURL
		}
	}
	if init.PaymentURL == "" {
		return registration.PaymentInit{}, errors.New("backend returned no payment URL")
	}
	return init, nil
}

func (c *Client) FinalizeBankTransfer(ctx context.Context, submissionID string) error {
	body := step3Request{SubmissionID: submissionID, PaymentMethod: payment.MethodBankTransfer, FinalSubmit: true}
	return c.do(ctx, http.MethodPost, "/proprietors/registration/step3", body, nil)
}

func (c *Client) GetSubmission(ctx context.Context, submissionID string) (registration.Submission, error) {
	var res registration.Submission
	err := c.do(ctx, http.MethodGet, "/proprietors/registration/"+submissionID, nil, &res)
	if err != nil {
		if IsNotFound(err) {
			return registration.Submission{}, errors.Wrap(registration.ErrSubmissionNotFound, err.Error())
		}
		return registration.Submission{}, err
	}
	return res, nil
}
