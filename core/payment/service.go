package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/Onahi7/napps-portal/core"
)

type (
	// Verifier resolves payment references against the backend.
	Verifier interface {
		VerifyPayment(ctx context.Context, reference string) (Detail, error)
		VerifyLevyPayment(ctx context.Context, reference string) (Detail, error)
	}

	Service struct {
		api    Verifier
		logger core.Logger
	}
)

func NewService(api Verifier, logger core.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// Verify resolves a reference against the given gateway.
func (svc *Service) Verify(ctx context.Context, gw Gateway, reference string) (Detail, error) {
	switch gw {
	case GatewayPrimary:
		return svc.api.VerifyPayment(ctx, reference)
	case GatewayLevy:
		return svc.api.VerifyLevyPayment(ctx, reference)
	default:
		return Detail{}, errors.Errorf("unknown gateway %q", gw)
	}
}

// Poll re-verifies the reference every interval until the gateway reports a
// terminal status or ctx is done. A verification error aborts the poll;
// recovery is up to the caller.
func (svc *Service) Poll(ctx context.Context, gw Gateway, reference string, interval time.Duration) (Detail, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		detail, err := svc.Verify(ctx, gw, reference)
		if err != nil {
			return Detail{}, errors.Wrapf(err, "verifying %q", reference)
		}
		if detail.ParsedStatus().Terminal() {
			return detail, nil
		}
		svc.logger.Debug(fmt.Sprintf("payment %q still %s; polling again in %v", reference, detail.Status, interval))

		select {
		case <-ctx.Done():
			return detail, ctx.Err()
		case <-ticker.C:
		}
	}
}
