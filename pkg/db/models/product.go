package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog listing consumed by the order core. The order core
// calls reservation operations against its inventory but does not own pricing
// or catalog semantics.
type Product struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU            string         `gorm:"column:sku;not null"`
	Name           string         `gorm:"column:name;not null"`
	ImageURL       string         `gorm:"column:image_url"`
	PricePaise     int64          `gorm:"column:price_paise;not null"`
	InStock        bool           `gorm:"column:in_stock;not null;default:true"`
	TrackInventory bool           `gorm:"column:track_inventory;not null;default:true"`
	IsActive       bool           `gorm:"column:is_active;not null;default:true"`
	Inventory      *InventoryItem `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
