package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
)

// OrderNote is a free-text note attached to an order.
type OrderNote struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID        `gorm:"column:order_id;type:uuid;not null"`
	Author    enums.NoteAuthor `gorm:"column:author;type:text;not null"`
	AuthorID  *uuid.UUID       `gorm:"column:author_id;type:uuid"`
	Body      string           `gorm:"column:body;not null"`
	Visible   bool             `gorm:"column:visible;not null;default:true"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
}
