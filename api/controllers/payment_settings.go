package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/swiftcartlabs/swiftcart-backend/api/responses"
	"github.com/swiftcartlabs/swiftcart-backend/api/validators"
	"github.com/swiftcartlabs/swiftcart-backend/internal/paymentsettings"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
	pkgerrors "github.com/swiftcartlabs/swiftcart-backend/pkg/errors"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/logger"
)

type paymentSettingsResponse struct {
	ActiveMode   string    `json:"active_mode"`
	UPIID        string    `json:"upi_id,omitempty"`
	PayeeName    string    `json:"payee_name,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toPaymentSettingsResponse(settings *models.PaymentSettings) paymentSettingsResponse {
	return paymentSettingsResponse{
		ActiveMode:   string(settings.ActiveMode),
		UPIID:        settings.UPIID,
		PayeeName:    settings.PayeeName,
		Instructions: settings.Instructions,
		UpdatedAt:    settings.UpdatedAt,
	}
}

// GetPaymentSettings returns the active payment mode and UPI display data.
func GetPaymentSettings(svc paymentsettings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toPaymentSettingsResponse(settings))
	}
}

type updatePaymentSettingsRequest struct {
	ActiveMode   *string `json:"active_mode,omitempty"`
	UPIID        *string `json:"upi_id,omitempty" validate:"omitempty,max=100"`
	PayeeName    *string `json:"payee_name,omitempty" validate:"omitempty,max=200"`
	Instructions *string `json:"instructions,omitempty" validate:"omitempty,max=1000"`
}

// AdminUpdatePaymentSettings switches the active payment mode and updates
// the UPI display fields.
func AdminUpdatePaymentSettings(svc paymentsettings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updatePaymentSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input paymentsettings.UpdateInput
		if payload.ActiveMode != nil {
			mode, err := enums.ParsePaymentMode(strings.TrimSpace(*payload.ActiveMode))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid active_mode"))
				return
			}
			input.ActiveMode = &mode
		}
		input.UPIID = payload.UPIID
		input.PayeeName = payload.PayeeName
		input.Instructions = payload.Instructions

		settings, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toPaymentSettingsResponse(settings))
	}
}
