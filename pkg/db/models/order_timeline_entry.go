package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
)

// OrderTimelineEntry is one row of an order's append-only audit trail.
// Entries are immutable once written apart from the notification_sent flag,
// which flips to true only after a successful dispatch.
type OrderTimelineEntry struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	Action           string          `gorm:"column:action;not null"`
	Details          string          `gorm:"column:details"`
	OldValue         string          `gorm:"column:old_value"`
	NewValue         string          `gorm:"column:new_value"`
	PerformedBy      *uuid.UUID      `gorm:"column:performed_by;type:uuid"`
	ActorRole        enums.ActorRole `gorm:"column:actor_role;type:text"`
	NotificationSent bool            `gorm:"column:notification_sent;not null;default:false"`
	PerformedAt      time.Time       `gorm:"column:performed_at;not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}
