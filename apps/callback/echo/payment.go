package echoapi

import (
	"fmt"
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Onahi7/napps-portal/core"
	"github.com/Onahi7/napps-portal/core/payment"
	"github.com/Onahi7/napps-portal/storage/draftstore"
)

type paymentApi struct {
	paySvc   *payment.Service
	store    *draftstore.Store
	emailSvc core.EmailService
	logger   core.Logger
}

func registerPaymentAPI(e *echo.Echo, deps ServerDeps) {
	api := paymentApi{
		paySvc:   deps.PaymentSvc,
		store:    deps.Store,
		emailSvc: deps.EmailSvc,
		logger:   deps.Logger,
	}

	g := e.Group("/payment")
	g.GET("/status", api.status)
	g.GET("/success", api.success)
	g.GET("/simulate", api.simulate)
}

type statusResponse struct {
	Reference     string         `json:"reference"`
	Status        payment.Status `json:"status"`
	Amount        float64        `json:"amount,omitempty"`
	ReceiptNumber string         `json:"receiptNumber,omitempty"`
}

// verify resolves the reference/gateway query params against the backend.
func (api *paymentApi) verify(ctx echo.Context) (payment.Detail, payment.Gateway, error) {
	reference := ctx.QueryParam("reference")
	if reference == "" {
		return payment.Detail{}, "", core.NewValidationError(nil, core.FieldError{Field: "reference", Error: "this field is required"})
	}
	gw := payment.Gateway(ctx.QueryParam("gateway"))
	if gw == "" {
		gw = payment.GatewayPrimary
	}
	if !gw.Valid() {
		return payment.Detail{}, "", core.NewValidationError(nil, core.FieldError{Field: "gateway", Error: "must be one of: primary, levy"})
	}

	detail, err := api.paySvc.Verify(ctx.Request().Context(), gw, reference)
	if err != nil {
		if errors.Cause(err) == payment.ErrNotFound {
			return payment.Detail{}, gw, errHttpNotFound
		}
		return payment.Detail{}, gw, errors.Wrap(err, "verifying payment")
	}
	return detail, gw, nil
}

// status reports the current state of a payment attempt; the page the member
// lands on (and polls) while a transfer or card charge settles.
func (api *paymentApi) status(ctx echo.Context) error {
	detail, _, err := api.verify(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, statusResponse{
		Reference:     detail.Reference,
		Status:        detail.ParsedStatus(),
		Amount:        detail.Amount,
		ReceiptNumber: detail.ReceiptNumber,
	})
}

// success is where the gateway redirects after a payment attempt. Only a
// verified success clears the saved progress and sends a receipt; anything
// else is reported as-is so the member can keep checking /payment/status.
func (api *paymentApi) success(ctx echo.Context) error {
	detail, gw, err := api.verify(ctx)
	if err != nil {
		return err
	}

	res := statusResponse{
		Reference:     detail.Reference,
		Status:        detail.ParsedStatus(),
		Amount:        detail.Amount,
		ReceiptNumber: detail.ReceiptNumber,
	}
	if res.Status != payment.StatusSuccess {
		return ctx.JSON(http.StatusOK, res)
	}

	// verified success: the resumable session is over
	api.store.Clear(draftstore.KeyPaymentPending)
	if gw == payment.GatewayPrimary {
		api.store.Clear(draftstore.KeyRegistrationProgress)
	} else {
		api.store.Clear(draftstore.KeyLevyForm)
	}
	api.sendReceipt(detail)

	return ctx.JSON(http.StatusOK, res)
}

// simulate models the gateway's simulation mode: it accepts the redirect a
// simulated charge would produce and points at the success route.
func (api *paymentApi) simulate(ctx echo.Context) error {
	reference := ctx.QueryParam("reference")
	if reference == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "reference", Error: "this field is required"})
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"simulationMode": true,
		"reference":      reference,
		"next":           "/payment/success?reference=" + reference,
	})
}

func (api *paymentApi) sendReceipt(detail payment.Detail) {
	if detail.Email == "" {
		return
	}
	body := fmt.Sprintf(
		"Your payment of %s was received.\r\n\r\nReference: %s\r\n",
		fmt.Sprintf("NGN %.2f", detail.Amount), detail.Reference,
	)
	if detail.ReceiptNumber != "" {
		body += fmt.Sprintf("Receipt number: %s\r\n", detail.ReceiptNumber)
	}
	api.emailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Address: detail.Email}},
		Subject:     "Payment received",
		TextContent: body,
	})
}
