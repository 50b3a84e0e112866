package notifications

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/config"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
)

// Mailer delivers one rendered message. Satisfied by the SMTP sender; tests
// substitute a recorder.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	host string
	port string
	from string
}

// NewSMTPMailer builds the production mailer from config.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{host: cfg.Host, port: cfg.Port, from: cfg.From}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.from, to, subject, htmlBody)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	return smtp.SendMail(addr, nil, m.from, []string{to}, []byte(msg))
}

// Service renders and dispatches the transactional order email. Every method
// returns the delivery error to the caller, who logs and continues; dispatch
// failures never block order mutations.
type Service struct {
	mailer Mailer
}

// NewService wires the notification dispatcher.
func NewService(mailer Mailer) (*Service, error) {
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	return &Service{mailer: mailer}, nil
}

func (s *Service) OrderStatusChanged(ctx context.Context, user *models.User, order *models.Order, oldStatus enums.OrderStatus) error {
	subject := fmt.Sprintf("Order #%d is now %s", order.OrderNumber, order.Status)
	return s.mailer.Send(ctx, user.Email, subject, buildStatusUpdateBody(user, order, oldStatus))
}

func (s *Service) OrderCancelled(ctx context.Context, user *models.User, order *models.Order) error {
	subject := fmt.Sprintf("Order #%d has been cancelled", order.OrderNumber)
	return s.mailer.Send(ctx, user.Email, subject, buildCancellationBody(user, order))
}

func (s *Service) PaymentConfirmed(ctx context.Context, user *models.User, order *models.Order) error {
	subject := fmt.Sprintf("Payment received for order #%d", order.OrderNumber)
	return s.mailer.Send(ctx, user.Email, subject, buildPaymentConfirmedBody(user, order))
}

func (s *Service) PaymentVerified(ctx context.Context, user *models.User, order *models.Order) error {
	subject := fmt.Sprintf("Payment verified for order #%d", order.OrderNumber)
	return s.mailer.Send(ctx, user.Email, subject, buildPaymentVerifiedBody(user, order))
}

func (s *Service) PaymentRejected(ctx context.Context, user *models.User, order *models.Order, reason string) error {
	subject := fmt.Sprintf("Payment verification failed for order #%d", order.OrderNumber)
	return s.mailer.Send(ctx, user.Email, subject, buildPaymentRejectedBody(user, order, reason))
}

func (s *Service) RefundProcessed(ctx context.Context, user *models.User, order *models.Order) error {
	subject := fmt.Sprintf("Refund processed for order #%d", order.OrderNumber)
	return s.mailer.Send(ctx, user.Email, subject, buildRefundBody(user, order))
}
