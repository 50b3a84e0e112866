package notifications

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
)

type recordedMail struct {
	to      string
	subject string
	body    string
}

type recordingMailer struct {
	sent []recordedMail
}

func (r *recordingMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	r.sent = append(r.sent, recordedMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func testOrder() (*models.User, *models.Order) {
	user := &models.User{ID: uuid.New(), Email: "asha@example.com", Name: "Asha"}
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        user.ID,
		OrderNumber:   1042,
		SubtotalPaise: 99800,
		ShippingPaise: 5000,
		TotalPaise:    104800,
		Status:        enums.OrderStatusProcessing,
		Items: []models.OrderItem{
			{Name: "Steel Bottle", UnitPricePaise: 49900, Qty: 2, TotalPaise: 99800},
		},
	}
	return user, order
}

func TestStatusUpdateMailIncludesTracking(t *testing.T) {
	mailer := &recordingMailer{}
	svc, err := NewService(mailer)
	require.NoError(t, err)

	user, order := testOrder()
	order.Status = enums.OrderStatusShipped
	order.ShippingInfo.TrackingNumber = "TRK1"

	require.NoError(t, svc.OrderStatusChanged(context.Background(), user, order, enums.OrderStatusProcessing))
	require.Len(t, mailer.sent, 1)

	mail := mailer.sent[0]
	assert.Equal(t, "asha@example.com", mail.to)
	assert.Contains(t, mail.subject, "#1042")
	assert.Contains(t, mail.body, "TRK1")
	assert.Contains(t, mail.body, "processing")
	assert.Contains(t, mail.body, "shipped")
}

func TestPaymentVerifiedMailItemizesOrder(t *testing.T) {
	mailer := &recordingMailer{}
	svc, err := NewService(mailer)
	require.NoError(t, err)

	user, order := testOrder()
	require.NoError(t, svc.PaymentVerified(context.Background(), user, order))
	require.Len(t, mailer.sent, 1)

	body := mailer.sent[0].body
	assert.Contains(t, body, "Steel Bottle")
	assert.Contains(t, body, "<table")
	// unit price, qty, and totals all appear
	assert.Contains(t, body, "499.00")
	assert.Contains(t, body, "1048.00")
}

func TestPaymentRejectedMailCarriesReason(t *testing.T) {
	mailer := &recordingMailer{}
	svc, err := NewService(mailer)
	require.NoError(t, err)

	user, order := testOrder()
	require.NoError(t, svc.PaymentRejected(context.Background(), user, order, "amount mismatch"))
	assert.Contains(t, mailer.sent[0].body, "amount mismatch")
}

func TestTemplateEscapesUserContent(t *testing.T) {
	mailer := &recordingMailer{}
	svc, err := NewService(mailer)
	require.NoError(t, err)

	user, order := testOrder()
	user.Name = `<script>alert("x")</script>`
	require.NoError(t, svc.PaymentConfirmed(context.Background(), user, order))
	assert.NotContains(t, mailer.sent[0].body, "<script>")
}
