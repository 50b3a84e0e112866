package enums

import "fmt"

// CancellationRefundStatus tracks whether a cancelled order's refund has been handled.
type CancellationRefundStatus string

const (
	CancellationRefundStatusNone      CancellationRefundStatus = "none"
	CancellationRefundStatusPending   CancellationRefundStatus = "pending"
	CancellationRefundStatusProcessed CancellationRefundStatus = "processed"
)

var validCancellationRefundStatuses = []CancellationRefundStatus{
	CancellationRefundStatusNone,
	CancellationRefundStatusPending,
	CancellationRefundStatusProcessed,
}

// String implements fmt.Stringer.
func (c CancellationRefundStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CancellationRefundStatus.
func (c CancellationRefundStatus) IsValid() bool {
	for _, candidate := range validCancellationRefundStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCancellationRefundStatus converts raw input into a CancellationRefundStatus.
func ParseCancellationRefundStatus(value string) (CancellationRefundStatus, error) {
	for _, candidate := range validCancellationRefundStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cancellation refund status %q", value)
}
