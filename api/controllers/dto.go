package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/money"
)

type orderItemResponse struct {
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	Name      string     `json:"name"`
	ImageURL  string     `json:"image_url,omitempty"`
	Qty       int        `json:"qty"`
	UnitPrice string     `json:"unit_price"`
	Total     string     `json:"total"`
}

type timelineEntryResponse struct {
	Action           string     `json:"action"`
	Details          string     `json:"details,omitempty"`
	OldValue         string     `json:"old_value,omitempty"`
	NewValue         string     `json:"new_value,omitempty"`
	ActorRole        string     `json:"actor_role,omitempty"`
	PerformedBy      *uuid.UUID `json:"performed_by,omitempty"`
	NotificationSent bool       `json:"notification_sent"`
	PerformedAt      time.Time  `json:"performed_at"`
}

type paymentInfoResponse struct {
	Method            string     `json:"method,omitempty"`
	Status            string     `json:"status,omitempty"`
	GatewayOrderID    string     `json:"gateway_order_id,omitempty"`
	GatewayPaymentID  string     `json:"gateway_payment_id,omitempty"`
	UTR               string     `json:"utr,omitempty"`
	FailureReason     string     `json:"failure_reason,omitempty"`
	VerificationNotes string     `json:"verification_notes,omitempty"`
	CapturedAt        *time.Time `json:"captured_at,omitempty"`
}

type shippingInfoResponse struct {
	Carrier           string     `json:"carrier,omitempty"`
	TrackingNumber    string     `json:"tracking_number,omitempty"`
	TrackingURL       string     `json:"tracking_url,omitempty"`
	ShippedAt         *time.Time `json:"shipped_at,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`
}

type cancellationResponse struct {
	Reason       string     `json:"reason,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	ActorRole    string     `json:"actor_role,omitempty"`
	RefundStatus string     `json:"refund_status,omitempty"`
}

type refundInfoResponse struct {
	Amount     string     `json:"amount,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Method     string     `json:"method,omitempty"`
	Reference  string     `json:"reference,omitempty"`
	RefundedAt *time.Time `json:"refunded_at,omitempty"`
}

type orderResponse struct {
	ID            uuid.UUID               `json:"id"`
	OrderNumber   int64                   `json:"order_number"`
	UserID        uuid.UUID               `json:"user_id"`
	Status        string                  `json:"status"`
	PaymentStatus string                  `json:"payment_status"`
	Subtotal      string                  `json:"subtotal"`
	Shipping      string                  `json:"shipping"`
	Total         string                  `json:"total"`
	Payment       paymentInfoResponse     `json:"payment"`
	ShippingInfo  shippingInfoResponse    `json:"shipping_info"`
	Cancellation  *cancellationResponse   `json:"cancellation,omitempty"`
	Refund        *refundInfoResponse     `json:"refund,omitempty"`
	Items         []orderItemResponse     `json:"items,omitempty"`
	Timeline      []timelineEntryResponse `json:"timeline,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

type orderListResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

type noteResponse struct {
	ID        uuid.UUID  `json:"id"`
	Author    string     `json:"author"`
	AuthorID  *uuid.UUID `json:"author_id,omitempty"`
	Body      string     `json:"body"`
	Visible   bool       `json:"visible"`
	CreatedAt time.Time  `json:"created_at"`
}

func toOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		Subtotal:      money.FormatRupees(order.SubtotalPaise),
		Shipping:      money.FormatRupees(order.ShippingPaise),
		Total:         money.FormatRupees(order.TotalPaise),
		Payment: paymentInfoResponse{
			Method:            string(order.PaymentInfo.Method),
			Status:            string(order.PaymentInfo.Status),
			GatewayOrderID:    order.PaymentInfo.GatewayOrderID,
			GatewayPaymentID:  order.PaymentInfo.GatewayPaymentID,
			UTR:               order.PaymentInfo.UTR,
			FailureReason:     order.PaymentInfo.FailureReason,
			VerificationNotes: order.PaymentInfo.VerificationNotes,
			CapturedAt:        order.PaymentInfo.CapturedAt,
		},
		ShippingInfo: shippingInfoResponse{
			Carrier:           order.ShippingInfo.Carrier,
			TrackingNumber:    order.ShippingInfo.TrackingNumber,
			TrackingURL:       order.ShippingInfo.TrackingURL,
			ShippedAt:         order.ShippingInfo.ShippedAt,
			EstimatedDelivery: order.ShippingInfo.EstimatedDelivery,
			DeliveredAt:       order.ShippingInfo.DeliveredAt,
		},
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}

	if order.Cancellation.CancelledAt != nil {
		resp.Cancellation = &cancellationResponse{
			Reason:       order.Cancellation.Reason,
			CancelledAt:  order.Cancellation.CancelledAt,
			ActorRole:    string(order.Cancellation.ActorRole),
			RefundStatus: string(order.Cancellation.RefundStatus),
		}
	}
	if order.RefundInfo.RefundedAt != nil {
		resp.Refund = &refundInfoResponse{
			Amount:     money.FormatRupees(order.RefundInfo.AmountPaise),
			Reason:     order.RefundInfo.Reason,
			Method:     string(order.RefundInfo.Method),
			Reference:  order.RefundInfo.Reference,
			RefundedAt: order.RefundInfo.RefundedAt,
		}
	}

	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			Qty:       item.Qty,
			UnitPrice: money.FormatRupees(item.UnitPricePaise),
			Total:     money.FormatRupees(item.TotalPaise),
		})
	}
	for _, entry := range order.Timeline {
		resp.Timeline = append(resp.Timeline, timelineEntryResponse{
			Action:           entry.Action,
			Details:          entry.Details,
			OldValue:         entry.OldValue,
			NewValue:         entry.NewValue,
			ActorRole:        string(entry.ActorRole),
			PerformedBy:      entry.PerformedBy,
			NotificationSent: entry.NotificationSent,
			PerformedAt:      entry.PerformedAt,
		})
	}

	return resp
}

func toOrderListResponse(orders []models.Order, nextCursor string) orderListResponse {
	resp := orderListResponse{
		Orders:     make([]orderResponse, 0, len(orders)),
		NextCursor: nextCursor,
	}
	for i := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(&orders[i]))
	}
	return resp
}

func toNoteResponses(notes []models.OrderNote) []noteResponse {
	out := make([]noteResponse, 0, len(notes))
	for _, note := range notes {
		out = append(out, noteResponse{
			ID:        note.ID,
			Author:    string(note.Author),
			AuthorID:  note.AuthorID,
			Body:      note.Body,
			Visible:   note.Visible,
			CreatedAt: note.CreatedAt,
		})
	}
	return out
}
