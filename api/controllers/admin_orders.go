package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/swiftcartlabs/swiftcart-backend/api/responses"
	"github.com/swiftcartlabs/swiftcart-backend/api/validators"
	"github.com/swiftcartlabs/swiftcart-backend/internal/orders"
	"github.com/swiftcartlabs/swiftcart-backend/internal/payments"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
	pkgerrors "github.com/swiftcartlabs/swiftcart-backend/pkg/errors"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/logger"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/money"
)

// AdminListOrders returns any customer's orders with status and payment filters.
func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := buildListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("user_id")); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id filter"))
				return
			}
			query.UserID = &userID
		}

		list, nextCursor, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderListResponse(list, nextCursor))
	}
}

// AdminOrderDetail returns the full order with items, timeline, and notes.
func AdminOrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

type shippingUpdateRequest struct {
	Carrier           *string `json:"carrier,omitempty" validate:"omitempty,max=100"`
	TrackingNumber    *string `json:"tracking_number,omitempty" validate:"omitempty,max=100"`
	TrackingURL       *string `json:"tracking_url,omitempty" validate:"omitempty,url"`
	EstimatedDelivery *string `json:"estimated_delivery,omitempty"`
}

type updateStatusRequest struct {
	Status       string                 `json:"status" validate:"required"`
	Notes        string                 `json:"notes,omitempty" validate:"omitempty,max=500"`
	CODCollected bool                   `json:"cod_collected,omitempty"`
	Shipping     *shippingUpdateRequest `json:"shipping,omitempty"`
}

// AdminUpdateStatus moves an order along the status state machine.
func AdminUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		input := orders.TransitionInput{
			OrderID:      orderID,
			Target:       target,
			Notes:        validators.SanitizeString(payload.Notes, 500),
			Actor:        orders.Actor{ID: adminID, Role: enums.ActorRoleAdmin},
			CODCollected: payload.CODCollected,
		}

		if payload.Shipping != nil {
			update, err := buildShippingUpdate(payload.Shipping)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.ShippingInfo = update
		}

		order, err := svc.Transition(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

type bulkStatusRequest struct {
	OrderIDs []string `json:"order_ids" validate:"required,min=1,max=100,dive,uuid4"`
	Status   string   `json:"status" validate:"required"`
	Notes    string   `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// AdminBulkStatus applies one target status to several orders, reporting
// per-order outcomes instead of failing the batch.
func AdminBulkStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bulkStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		orderIDs := make([]uuid.UUID, 0, len(payload.OrderIDs))
		for _, raw := range payload.OrderIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid order id %q", raw)))
				return
			}
			orderIDs = append(orderIDs, id)
		}

		results := svc.BulkTransition(r.Context(), orders.BulkTransitionInput{
			OrderIDs: orderIDs,
			Target:   target,
			Notes:    validators.SanitizeString(payload.Notes, 500),
			Actor:    orders.Actor{ID: adminID, Role: enums.ActorRoleAdmin},
		})
		responses.WriteSuccess(w, map[string]any{"results": results})
	}
}

type overridePaymentRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
	Notes         string `json:"notes,omitempty" validate:"omitempty,max=500"`
	// RefundAmount is a decimal rupee string, only read when the target is
	// refunded.
	RefundAmount *string `json:"refund_amount,omitempty"`
}

// AdminOverridePayment force-sets an order's payment status, forward only.
func AdminOverridePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload overridePaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParsePaymentStatus(payload.PaymentStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_status"))
			return
		}

		input := payments.OverrideInput{
			OrderID: orderID,
			Target:  target,
			Notes:   validators.SanitizeString(payload.Notes, 500),
			AdminID: adminID,
		}
		if payload.RefundAmount != nil {
			paise, err := money.ParseRupees(*payload.RefundAmount)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid refund_amount"))
				return
			}
			input.RefundAmountPaise = &paise
		}

		order, err := svc.OverridePaymentStatus(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

type refundRequest struct {
	// Amount is a decimal rupee string; empty refunds the full total.
	Amount    *string `json:"amount,omitempty"`
	Reason    string  `json:"reason,omitempty" validate:"omitempty,max=500"`
	Method    string  `json:"method,omitempty"`
	Reference string  `json:"reference,omitempty" validate:"omitempty,max=200"`
}

// AdminRefund issues a refund against a paid order.
func AdminRefund(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload refundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := payments.RefundInput{
			OrderID:   orderID,
			Reason:    validators.SanitizeString(payload.Reason, 500),
			Reference: validators.SanitizeString(payload.Reference, 200),
			AdminID:   adminID,
		}
		if payload.Amount != nil {
			paise, err := money.ParseRupees(*payload.Amount)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
				return
			}
			input.AmountPaise = &paise
		}
		if raw := strings.TrimSpace(payload.Method); raw != "" {
			method, err := enums.ParseRefundMethod(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid method"))
				return
			}
			input.Method = method
		}

		order, err := svc.Refund(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

var exportHeader = []string{
	"order_number", "order_id", "user_id", "status", "payment_status",
	"payment_method", "subtotal", "shipping", "total", "refund_amount",
	"created_at",
}

// AdminExportOrders streams the filtered order set as CSV with
// decimal-formatted rupee amounts.
func AdminExportOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := buildListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("user_id")); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id filter"))
				return
			}
			query.UserID = &userID
		}

		list, err := svc.ListForExport(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("orders-%s.csv", time.Now().UTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		writer := csv.NewWriter(w)
		if err := writer.Write(exportHeader); err != nil {
			logg.Error(r.Context(), "write csv header", err)
			return
		}
		for i := range list {
			order := &list[i]
			refundAmount := ""
			if order.RefundInfo.RefundedAt != nil {
				refundAmount = money.FormatRupees(order.RefundInfo.AmountPaise)
			}
			record := []string{
				strconv.FormatInt(order.OrderNumber, 10),
				order.ID.String(),
				order.UserID.String(),
				string(order.Status),
				string(order.PaymentStatus),
				string(order.PaymentInfo.Method),
				money.FormatRupees(order.SubtotalPaise),
				money.FormatRupees(order.ShippingPaise),
				money.FormatRupees(order.TotalPaise),
				refundAmount,
				order.CreatedAt.UTC().Format(time.RFC3339),
			}
			if err := writer.Write(record); err != nil {
				logg.Error(r.Context(), "write csv record", err)
				return
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			logg.Error(r.Context(), "flush csv export", err)
		}
	}
}

type addNoteRequest struct {
	Body    string `json:"body" validate:"required,max=2000"`
	Visible *bool  `json:"visible,omitempty"`
}

// AdminAddNote attaches a note to an order; visible defaults to true.
func AdminAddNote(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addNoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		visible := true
		if payload.Visible != nil {
			visible = *payload.Visible
		}

		note, err := svc.AddNote(r.Context(), orders.AddNoteInput{
			OrderID: orderID,
			Body:    validators.SanitizeString(payload.Body, 2000),
			Author:  enums.NoteAuthorInternal,
			Actor:   orders.Actor{ID: adminID, Role: enums.ActorRoleAdmin},
			Visible: visible,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toNoteResponses([]models.OrderNote{*note})[0])
	}
}

// AdminListNotes returns all notes on an order, hidden ones included.
func AdminListNotes(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notes, err := svc.ListNotes(r.Context(), orderID, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"notes": toNoteResponses(notes)})
	}
}

func buildShippingUpdate(payload *shippingUpdateRequest) (*orders.ShippingUpdate, error) {
	update := &orders.ShippingUpdate{
		Carrier:        payload.Carrier,
		TrackingNumber: payload.TrackingNumber,
		TrackingURL:    payload.TrackingURL,
	}
	if payload.EstimatedDelivery != nil {
		parsed, err := time.Parse(time.RFC3339, *payload.EstimatedDelivery)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid estimated_delivery")
		}
		update.EstimatedDelivery = &parsed
	}
	return update, nil
}
