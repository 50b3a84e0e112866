package payments

import (
	"github.com/google/uuid"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
)

// GatewayCheckout is what the storefront needs to open the gateway's
// checkout widget.
type GatewayCheckout struct {
	GatewayOrderID string `json:"gateway_order_id"`
	AmountPaise    int64  `json:"amount_paise"`
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id"`
}

// VerifyGatewayInput carries the gateway callback fields the storefront
// relays after checkout completes.
type VerifyGatewayInput struct {
	OrderID          uuid.UUID
	UserID           uuid.UUID
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// SubmitUTRInput is the customer's manual-UPI transaction reference.
type SubmitUTRInput struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
	UTR     string
}

// SubmitUTRResult returns the updated order plus the expiring token an admin
// uses to verify the submission.
type SubmitUTRResult struct {
	Order             *models.Order
	VerificationToken string
}

// ManualVerificationInput is the admin decision on a pending UPI submission.
type ManualVerificationInput struct {
	OrderID uuid.UUID
	// Token, when set, must resolve to the order; it is revoked after the
	// decision lands.
	Token   string
	Approve bool
	Notes   string
	AdminID uuid.UUID
}

// RefundInput issues a refund against a paid order.
type RefundInput struct {
	OrderID uuid.UUID
	// AmountPaise nil means refund the full order total.
	AmountPaise *int64
	Reason      string
	Method      enums.RefundMethod
	Reference   string
	AdminID     uuid.UUID
}

// OverrideInput is the admin's direct payment-status set, bypassing the
// gateway and manual paths.
type OverrideInput struct {
	OrderID           uuid.UUID
	Target            enums.PaymentStatus
	Notes             string
	RefundAmountPaise *int64
	AdminID           uuid.UUID
}
