package fees

import (
	"context"
	"fmt"

	"github.com/Onahi7/napps-portal/core"
)

type (
	// Source lists the active fee line items.
	Source interface {
		ActiveFees(ctx context.Context) ([]Fee, error)
	}

	Service struct {
		src    Source
		logger core.Logger
	}
)

func NewService(src Source, logger core.Logger) *Service {
	return &Service{src: src, logger: logger}
}

// Fetch returns the active fee schedule. A fetch failure degrades to an empty
// schedule: the breakdown is simply not shown and the form is not blocked.
func (svc *Service) Fetch(ctx context.Context) Schedule {
	items, err := svc.src.ActiveFees(ctx)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("fetching active fees: %v", err), err)
		return Schedule{}
	}
	return Schedule{Items: items}
}
