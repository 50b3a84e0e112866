package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are stored as integer paise. Clients send and receive rupee values
// as decimal strings; the conversion must be exact, so it goes through
// decimal arithmetic rather than floats.

var paisePerRupee = decimal.NewFromInt(100)

// RupeesToPaise converts a client-supplied rupee amount into paise. It rejects
// negative values and values with sub-paise precision.
func RupeesToPaise(rupees decimal.Decimal) (int64, error) {
	if rupees.IsNegative() {
		return 0, fmt.Errorf("amount cannot be negative")
	}
	paise := rupees.Mul(paisePerRupee)
	if !paise.Equal(paise.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has sub-paise precision", rupees.String())
	}
	return paise.IntPart(), nil
}

// ParseRupees parses a rupee amount from its string form into paise.
func ParseRupees(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", value)
	}
	return RupeesToPaise(d)
}

// PaiseToRupees converts stored paise back to a rupee decimal.
func PaiseToRupees(paise int64) decimal.Decimal {
	return decimal.NewFromInt(paise).Div(paisePerRupee)
}

// FormatRupees renders paise as a fixed two-decimal rupee string.
func FormatRupees(paise int64) string {
	return PaiseToRupees(paise).StringFixed(2)
}
