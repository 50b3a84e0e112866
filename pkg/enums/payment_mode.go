package enums

import "fmt"

// PaymentMode selects which customer-facing payment path the storefront
// advertises. It never gates server-side enforcement of the other paths.
type PaymentMode string

const (
	PaymentModeRazorpay  PaymentMode = "razorpay"
	PaymentModeManualUPI PaymentMode = "manual_upi"
)

var validPaymentModes = []PaymentMode{
	PaymentModeRazorpay,
	PaymentModeManualUPI,
}

// String implements fmt.Stringer.
func (p PaymentMode) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMode.
func (p PaymentMode) IsValid() bool {
	for _, candidate := range validPaymentModes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMode converts raw input into a PaymentMode.
func ParsePaymentMode(value string) (PaymentMode, error) {
	for _, candidate := range validPaymentModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment mode %q", value)
}
