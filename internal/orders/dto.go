package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/pagination"
)

// Actor identifies who requested a mutation.
type Actor struct {
	ID   uuid.UUID
	Role enums.ActorRole
}

// ShippingUpdate carries optional shipping fields for a transition request.
// Nil pointers leave the stored value untouched.
type ShippingUpdate struct {
	Carrier           *string
	TrackingNumber    *string
	TrackingURL       *string
	EstimatedDelivery *time.Time
}

// TransitionInput is a status change request against one order.
type TransitionInput struct {
	OrderID      uuid.UUID
	Target       enums.OrderStatus
	Notes        string
	ShippingInfo *ShippingUpdate
	Actor        Actor
	// CODCollected settles a cash-on-delivery balance when the order is
	// marked delivered.
	CODCollected bool
}

// BulkTransitionInput applies the same target status to several orders.
type BulkTransitionInput struct {
	OrderIDs []uuid.UUID
	Target   enums.OrderStatus
	Notes    string
	Actor    Actor
}

// BulkResult reports the outcome for one order in a bulk transition.
type BulkResult struct {
	OrderID uuid.UUID `json:"order_id"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
}

// CreateItemInput is one requested line item. Unit price is looked up
// server-side; the client never supplies amounts.
type CreateItemInput struct {
	ProductID uuid.UUID
	Qty       int
}

// CreateOrderInput opens a new order in pending/unpaid.
type CreateOrderInput struct {
	UserID        uuid.UUID
	Items         []CreateItemInput
	ShippingPaise int64
}

// ListQuery filters and paginates order listings.
type ListQuery struct {
	UserID        *uuid.UUID
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	Page          pagination.Params
}

// AddNoteInput appends a free-text note to an order.
type AddNoteInput struct {
	OrderID uuid.UUID
	Body    string
	Author  enums.NoteAuthor
	Actor   Actor
	Visible bool
}
