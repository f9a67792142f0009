package fees

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Fee is one active fee line item configured on the backend.
type Fee struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	IsActive    bool    `json:"isActive"`
}

// Schedule is the set of active fees presented on the payment step.
// An empty schedule is a valid state: registration proceeds with zero
// required fees and the amount is determined server-side.
type Schedule struct {
	Items []Fee
}

func (s Schedule) Total() float64 {
	var total float64
	for _, fee := range s.Items {
		total += fee.Amount
	}
	return total
}

func (s Schedule) IsEmpty() bool { return len(s.Items) == 0 }

// FormatNaira renders an amount as e.g. ₦6,500 or ₦6,500.50.
func FormatNaira(amount float64) string {
	neg := amount < 0
	amount = math.Abs(amount)

	whole := int64(amount)
	frac := math.Round((amount - float64(whole)) * 100)
	if frac >= 100 { // rounding carried over
		whole++
		frac = 0
	}

	digits := strconv.FormatInt(whole, 10)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	out := "₦" + strings.Join(groups, ",")
	if frac > 0 {
		out += fmt.Sprintf(".%02d", int64(frac))
	}
	if neg {
		out = "-" + out
	}
	return out
}
