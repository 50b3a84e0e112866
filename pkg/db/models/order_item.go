package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem captures the purchase-time snapshot of each line item. The
// captured name and price are immutable; later product changes never alter
// historical orders.
type OrderItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid"`
	Name           string     `gorm:"column:name;not null"`
	ImageURL       string     `gorm:"column:image_url"`
	UnitPricePaise int64      `gorm:"column:unit_price_paise;not null"`
	Qty            int        `gorm:"column:qty;not null"`
	TotalPaise     int64      `gorm:"column:total_paise;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
