package napps

import (
	"context"
	"net/http"

	"github.com/Onahi7/napps-portal/core/fees"
)

var _ fees.Source = (*Client)(nil)

func (c *Client) ActiveFees(ctx context.Context) ([]fees.Fee, error) {
	var res []fees.Fee
	if err := c.do(ctx, http.MethodGet, "/fees/active", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}
