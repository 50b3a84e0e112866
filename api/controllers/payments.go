package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/swiftcartlabs/swiftcart-backend/api/responses"
	"github.com/swiftcartlabs/swiftcart-backend/api/validators"
	"github.com/swiftcartlabs/swiftcart-backend/internal/payments"
	pkgerrors "github.com/swiftcartlabs/swiftcart-backend/pkg/errors"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/logger"
)

type createGatewayOrderRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid4"`
}

// CreateGatewayOrder opens a gateway order so the storefront can launch
// checkout for one of the customer's unpaid orders.
func CreateGatewayOrder(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createGatewayOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuid.Parse(payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		checkout, err := svc.CreateGatewayOrder(r.Context(), orderID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkout)
	}
}

type verifyGatewayRequest struct {
	OrderID          string `json:"order_id" validate:"required,uuid4"`
	GatewayOrderID   string `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature        string `json:"razorpay_signature" validate:"required"`
}

// VerifyGatewayPayment checks the gateway callback signature and captures
// the payment when it holds.
func VerifyGatewayPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload verifyGatewayRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuid.Parse(payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.VerifyGatewayPayment(r.Context(), payments.VerifyGatewayInput{
			OrderID:          orderID,
			UserID:           userID,
			GatewayOrderID:   payload.GatewayOrderID,
			GatewayPaymentID: payload.GatewayPaymentID,
			Signature:        payload.Signature,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

type markCODRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid4"`
}

// MarkCOD selects cash on delivery for one of the customer's unpaid orders.
func MarkCOD(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload markCODRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuid.Parse(payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.MarkCOD(r.Context(), orderID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

type submitUTRRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid4"`
	UTR     string `json:"utr" validate:"required,min=6,max=50"`
}

type submitUTRResponse struct {
	Order             orderResponse `json:"order"`
	VerificationToken string        `json:"verification_token,omitempty"`
}

// SubmitUTR records the customer's manual UPI transaction reference and
// parks the order pending admin verification.
func SubmitUTR(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitUTRRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuid.Parse(payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		result, err := svc.SubmitUTR(r.Context(), payments.SubmitUTRInput{
			OrderID: orderID,
			UserID:  userID,
			UTR:     validators.SanitizeString(payload.UTR, 50),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, submitUTRResponse{
			Order:             toOrderResponse(result.Order),
			VerificationToken: result.VerificationToken,
		})
	}
}

type manualVerificationRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid4"`
	Token   string `json:"token,omitempty"`
	Approve bool   `json:"approve"`
	Notes   string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// AdminVerifyPayment approves or rejects a pending manual-UPI submission.
func AdminVerifyPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload manualVerificationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuid.Parse(payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.VerifyManualPayment(r.Context(), payments.ManualVerificationInput{
			OrderID: orderID,
			Token:   payload.Token,
			Approve: payload.Approve,
			Notes:   validators.SanitizeString(payload.Notes, 500),
			AdminID: adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}
