package enums

import "fmt"

// PaymentInfoStatus tracks the lifecycle of an individual payment attempt.
type PaymentInfoStatus string

const (
	PaymentInfoStatusInitiated           PaymentInfoStatus = "initiated"
	PaymentInfoStatusAuthorized          PaymentInfoStatus = "authorized"
	PaymentInfoStatusPendingCOD          PaymentInfoStatus = "pending_cod"
	PaymentInfoStatusPendingVerification PaymentInfoStatus = "pending_verification"
	PaymentInfoStatusCompleted           PaymentInfoStatus = "completed"
	PaymentInfoStatusFailed              PaymentInfoStatus = "failed"
)

var validPaymentInfoStatuses = []PaymentInfoStatus{
	PaymentInfoStatusInitiated,
	PaymentInfoStatusAuthorized,
	PaymentInfoStatusPendingCOD,
	PaymentInfoStatusPendingVerification,
	PaymentInfoStatusCompleted,
	PaymentInfoStatusFailed,
}

// String implements fmt.Stringer.
func (p PaymentInfoStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentInfoStatus.
func (p PaymentInfoStatus) IsValid() bool {
	for _, candidate := range validPaymentInfoStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentInfoStatus converts raw input into a PaymentInfoStatus.
func ParsePaymentInfoStatus(value string) (PaymentInfoStatus, error) {
	for _, candidate := range validPaymentInfoStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment info status %q", value)
}
