package payment

import (
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("payment reference not found")

// Method is how the proprietor chooses to settle the registration fee.
type Method string

const (
	MethodOnline       Method = "online"
	MethodBankTransfer Method = "bank_transfer"
)

func (m Method) Valid() bool {
	switch m {
	case MethodOnline, MethodBankTransfer:
		return true
	}
	return false
}

// Gateway identifies which payment gateway a reference belongs to:
// the primary registration gateway or the secondary building-levy gateway.
type Gateway string

const (
	GatewayPrimary Gateway = "primary"
	GatewayLevy    Gateway = "levy"
)

func (g Gateway) Valid() bool {
	switch g {
	case GatewayPrimary, GatewayLevy:
		return true
	}
	return false
}

// Status is the gateway-reported state of a payment attempt.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ParseStatus normalizes the status strings the gateways report.
// Anything unrecognized is still in flight.
func ParseStatus(s string) Status {
	switch s {
	case "success", "successful", "completed", "paid":
		return StatusSuccess
	case "failed", "abandoned", "cancelled", "reversed":
		return StatusFailed
	default:
		return StatusPending
	}
}

func (s Status) Terminal() bool { return s == StatusSuccess || s == StatusFailed }

// Detail is the payment detail object returned by the verify endpoints.
type Detail struct {
	Reference     string     `json:"reference"`
	Status        string     `json:"status"`
	Amount        float64    `json:"amount"`
	Channel       string     `json:"channel,omitempty"`
	Email         string     `json:"email,omitempty"`
	ReceiptNumber string     `json:"receiptNumber,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

func (d Detail) ParsedStatus() Status { return ParseStatus(d.Status) }
