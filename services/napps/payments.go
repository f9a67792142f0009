package napps

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/Onahi7/napps-portal/core/levy"
	"github.com/Onahi7/napps-portal/core/payment"
)

var (
	_ levy.Gateway     = (*Client)(nil)
	_ payment.Verifier = (*Client)(nil)
)

func (c *Client) CheckDuplicateLevyPayment(ctx context.Context, email, phone string) (levy.DuplicateCheck, error) {
	body := struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}{Email: email, Phone: phone}

	var res levy.DuplicateCheck
	if err := c.do(ctx, http.MethodPost, "/levy-payments/check-duplicate", body, &res); err != nil {
		return levy.DuplicateCheck{}, err
	}
	return res, nil
}

func (c *Client) InitializeLevyPayment(ctx context.Context, form levy.Form) (levy.Initialized, error) {
	var res levy.Initialized
	if err := c.do(ctx, http.MethodPost, "/levy-payments/initialize", form, &res); err != nil {
		return levy.Initialized{}, err
	}
	return res, nil
}

func (c *Client) VerifyLevyPayment(ctx context.Context, reference string) (payment.Detail, error) {
	var res payment.Detail
	err := c.do(ctx, http.MethodGet, "/levy-payments/verify/"+reference, nil, &res)
	if err != nil {
		if IsNotFound(err) {
			return payment.Detail{}, errors.Wrap(payment.ErrNotFound, err.Error())
		}
		return payment.Detail{}, err
	}
	return res, nil
}

func (c *Client) VerifyPayment(ctx context.Context, reference string) (payment.Detail, error) {
	var res payment.Detail
	err := c.do(ctx, http.MethodGet, "/payments/verify/"+reference, nil, &res)
	if err != nil {
		if IsNotFound(err) {
			return payment.Detail{}, errors.Wrap(payment.ErrNotFound, err.Error())
		}
		return payment.Detail{}, err
	}
	return res, nil
}
