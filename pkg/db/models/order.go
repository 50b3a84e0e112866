package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
)

// Order is the persisted record of a purchase transaction and its lifecycle.
// Orders are never deleted; cancellation is a terminal status, not a removal.
type Order struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	OrderNumber int64     `gorm:"column:order_number;not null"`

	SubtotalPaise int64 `gorm:"column:subtotal_paise;not null"`
	ShippingPaise int64 `gorm:"column:shipping_paise;not null;default:0"`
	TotalPaise    int64 `gorm:"column:total_paise;not null"`

	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`

	PaymentInfo  PaymentInfo  `gorm:"embedded;embeddedPrefix:payment_"`
	ShippingInfo ShippingInfo `gorm:"embedded;embeddedPrefix:shipping_"`
	Cancellation Cancellation `gorm:"embedded;embeddedPrefix:cancellation_"`
	RefundInfo   RefundInfo   `gorm:"embedded;embeddedPrefix:refund_"`

	InventoryReserved bool `gorm:"column:inventory_reserved;not null;default:false"`
	InventoryUpdated  bool `gorm:"column:inventory_updated;not null;default:false"`

	Items    []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Timeline []OrderTimelineEntry `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Notes    []OrderNote          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PaymentInfo captures the state of the order's payment attempt.
type PaymentInfo struct {
	Method            enums.PaymentMethod     `gorm:"column:method;type:text"`
	Status            enums.PaymentInfoStatus `gorm:"column:info_status;type:text"`
	GatewayOrderID    string                  `gorm:"column:gateway_order_id"`
	GatewayPaymentID  string                  `gorm:"column:gateway_payment_id"`
	UTR               string                  `gorm:"column:utr"`
	FailureReason     string                  `gorm:"column:failure_reason"`
	VerifiedBy        *uuid.UUID              `gorm:"column:verified_by;type:uuid"`
	VerifiedAt        *time.Time              `gorm:"column:verified_at"`
	CapturedAt        *time.Time              `gorm:"column:captured_at"`
	InitiatedAt       *time.Time              `gorm:"column:initiated_at"`
	VerificationNotes string                  `gorm:"column:verification_notes"`
}

// ShippingInfo tracks carrier and delivery milestones.
type ShippingInfo struct {
	Carrier           string     `gorm:"column:carrier"`
	TrackingNumber    string     `gorm:"column:tracking_number"`
	TrackingURL       string     `gorm:"column:tracking_url"`
	ShippedAt         *time.Time `gorm:"column:shipped_at"`
	EstimatedDelivery *time.Time `gorm:"column:estimated_delivery"`
	DeliveredAt       *time.Time `gorm:"column:delivered_at"`
}

// Cancellation is populated only when the order reaches cancelled.
type Cancellation struct {
	Reason       string                         `gorm:"column:reason"`
	CancelledAt  *time.Time                     `gorm:"column:cancelled_at"`
	CancelledBy  *uuid.UUID                     `gorm:"column:cancelled_by;type:uuid"`
	ActorRole    enums.ActorRole                `gorm:"column:actor_role;type:text"`
	RefundStatus enums.CancellationRefundStatus `gorm:"column:refund_status;type:text;default:'none'"`
}

// RefundInfo is populated only when payment status reaches refunded.
type RefundInfo struct {
	AmountPaise int64              `gorm:"column:amount_paise"`
	Reason      string             `gorm:"column:reason"`
	Method      enums.RefundMethod `gorm:"column:method;type:text"`
	Reference   string             `gorm:"column:reference"`
	RefundedAt  *time.Time         `gorm:"column:refunded_at"`
	RefundedBy  *uuid.UUID         `gorm:"column:refunded_by;type:uuid"`
}
