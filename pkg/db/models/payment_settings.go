package models

import (
	"time"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
)

// PaymentSettings is the singleton configuration row selecting the active
// customer-facing payment path and the UPI display data.
type PaymentSettings struct {
	ID           int               `gorm:"column:id;primaryKey"`
	ActiveMode   enums.PaymentMode `gorm:"column:active_mode;type:text;not null;default:'razorpay'"`
	UPIID        string            `gorm:"column:upi_id"`
	PayeeName    string            `gorm:"column:payee_name"`
	Instructions string            `gorm:"column:instructions"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
