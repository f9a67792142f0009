package napps

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/Onahi7/napps-portal/core/session"
)

var _ session.Authenticator = (*Client)(nil)

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var res struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", body, &res)
	if err != nil {
		if apiErr, ok := errors.Cause(err).(*APIError); ok &&
			(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusBadRequest) {
			return "", session.ErrInvalidCredentials
		}
		return "", err
	}
	return res.Token, nil
}
