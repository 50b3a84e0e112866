package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
)

// SideEffectEvent records one applied reconciliation side effect. The
// (order_id, effect_type) pair is unique, so checking for an existing row
// before applying makes each effect at-most-once per order.
type SideEffectEvent struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_side_effect_order_type"`
	EffectType enums.SideEffectType `gorm:"column:effect_type;type:text;not null;uniqueIndex:idx_side_effect_order_type"`
	ActorID    *uuid.UUID           `gorm:"column:actor_id;type:uuid"`
	Details    string               `gorm:"column:details"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
}
