package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the account that placed an order. Authentication and account
// management live outside this service; the order core only reads contact
// details for notifications.
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"column:email;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	Role      string    `gorm:"column:role;not null;default:'customer'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
