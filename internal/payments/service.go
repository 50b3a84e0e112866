package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/swiftcartlabs/swiftcart-backend/pkg/errors"

	"github.com/swiftcartlabs/swiftcart-backend/internal/effects"
	"github.com/swiftcartlabs/swiftcart-backend/internal/orders"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/logger"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/metrics"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/razorpay"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Gateway is the payment gateway surface the reconciler consumes, satisfied
// by pkg/razorpay.Client.
type Gateway interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	KeyID() string
}

// TokenStore issues, resolves and revokes expiring verification tokens for
// manual-UPI submissions.
type TokenStore interface {
	Issue(ctx context.Context, orderID uuid.UUID) (string, error)
	Lookup(ctx context.Context, token string) (uuid.UUID, error)
	Revoke(ctx context.Context, token string) error
}

// Notifier sends payment lifecycle email. Errors are logged, never surfaced.
type Notifier interface {
	PaymentConfirmed(ctx context.Context, user *models.User, order *models.Order) error
	PaymentVerified(ctx context.Context, user *models.User, order *models.Order) error
	PaymentRejected(ctx context.Context, user *models.User, order *models.Order, reason string) error
	RefundProcessed(ctx context.Context, user *models.User, order *models.Order) error
}

// Service reconciles payment state across the three payment paths: gateway
// verified, manual UPI, and cash on delivery. All paths converge on the same
// paymentStatus/paymentInfo fields, and paymentStatus only ever advances
// unpaid -> paid -> refunded.
type Service interface {
	CreateGatewayOrder(ctx context.Context, orderID, userID uuid.UUID) (*GatewayCheckout, error)
	VerifyGatewayPayment(ctx context.Context, input VerifyGatewayInput) (*models.Order, error)
	SubmitUTR(ctx context.Context, input SubmitUTRInput) (*SubmitUTRResult, error)
	VerifyManualPayment(ctx context.Context, input ManualVerificationInput) (*models.Order, error)
	MarkCOD(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	Refund(ctx context.Context, input RefundInput) (*models.Order, error)
	OverridePaymentStatus(ctx context.Context, input OverrideInput) (*models.Order, error)
}

type service struct {
	repo     orders.Repository
	tx       txRunner
	effects  effects.Repository
	gateway  Gateway
	machine  orders.Service
	tokens   TokenStore
	notifier Notifier
	log      *logger.Logger
	metrics  *metrics.OrderMetrics
}

// NewService wires the payment reconciler.
func NewService(
	repo orders.Repository,
	tx txRunner,
	effectsRepo effects.Repository,
	gateway Gateway,
	machine orders.Service,
	tokens TokenStore,
	notifier Notifier,
	log *logger.Logger,
	orderMetrics *metrics.OrderMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if effectsRepo == nil {
		return nil, fmt.Errorf("side effect ledger required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if machine == nil {
		return nil, fmt.Errorf("order service required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("verification token store required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		effects:  effectsRepo,
		gateway:  gateway,
		machine:  machine,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
		metrics:  orderMetrics,
	}, nil
}

func (s *service) CreateGatewayOrder(ctx context.Context, orderID, userID uuid.UUID) (*GatewayCheckout, error) {
	order, err := s.loadOwnedOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != enums.PaymentStatusUnpaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already paid")
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		AmountPaise: order.TotalPaise,
		Receipt:     strconv.FormatInt(order.OrderNumber, 10),
	})
	if err != nil {
		s.metrics.IncPayment("gateway", "create_failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway order")
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order.PaymentInfo.Method = enums.PaymentMethodRazorpay
		order.PaymentInfo.Status = enums.PaymentInfoStatusInitiated
		order.PaymentInfo.GatewayOrderID = gatewayOrder.ID
		order.PaymentInfo.InitiatedAt = &now
		if err := repo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}
		return repo.AppendTimeline(ctx, &models.OrderTimelineEntry{
			OrderID:     order.ID,
			Action:      "payment_initiated",
			Details:     "gateway order " + gatewayOrder.ID,
			NewValue:    enums.PaymentInfoStatusInitiated.String(),
			PerformedBy: &userID,
			ActorRole:   enums.ActorRoleCustomer,
			PerformedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPayment("gateway", "initiated")
	return &GatewayCheckout{
		GatewayOrderID: gatewayOrder.ID,
		AmountPaise:    gatewayOrder.AmountPaise,
		Currency:       gatewayOrder.Currency,
		KeyID:          s.gateway.KeyID(),
	}, nil
}

func (s *service) VerifyGatewayPayment(ctx context.Context, input VerifyGatewayInput) (*models.Order, error) {
	order, err := s.loadOwnedOrder(ctx, input.OrderID, input.UserID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != enums.PaymentStatusUnpaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already paid")
	}

	// The signature covers the (gateway order, payment) pair only; the pair
	// must also be the one initiated for this order.
	if order.PaymentInfo.GatewayOrderID == "" || order.PaymentInfo.GatewayOrderID != input.GatewayOrderID {
		s.metrics.IncPayment("gateway", "order_mismatch")
		return nil, pkgerrors.New(pkgerrors.CodeSignatureMismatch, "payment does not belong to this order")
	}

	if !s.gateway.VerifySignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		s.metrics.IncPayment("gateway", "signature_mismatch")
		now := time.Now().UTC()
		persistErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			order.PaymentInfo.Status = enums.PaymentInfoStatusFailed
			order.PaymentInfo.FailureReason = "gateway signature mismatch"
			if err := repo.SaveOrder(ctx, order); err != nil {
				return err
			}
			return repo.AppendTimeline(ctx, &models.OrderTimelineEntry{
				OrderID:     order.ID,
				Action:      "payment_failed",
				Details:     "gateway signature mismatch",
				NewValue:    enums.PaymentInfoStatusFailed.String(),
				PerformedBy: &input.UserID,
				ActorRole:   enums.ActorRoleCustomer,
				PerformedAt: now,
			})
		})
		if persistErr != nil {
			s.log.Error(s.log.WithOrderID(ctx, order.ID.String()), "persist failed payment state", persistErr)
		}
		return nil, pkgerrors.New(pkgerrors.CodeSignatureMismatch, "payment signature verification failed")
	}

	now := time.Now().UTC()
	var entry *models.OrderTimelineEntry
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		applied, err := s.effects.WithTx(tx).Record(ctx, &models.SideEffectEvent{
			OrderID:    order.ID,
			EffectType: enums.SideEffectPaymentCaptured,
			Details:    "gateway payment " + input.GatewayPaymentID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment capture")
		}
		if !applied {
			return nil
		}

		order.PaymentStatus = enums.PaymentStatusPaid
		order.PaymentInfo.Status = enums.PaymentInfoStatusCompleted
		order.PaymentInfo.GatewayPaymentID = input.GatewayPaymentID
		order.PaymentInfo.CapturedAt = &now
		if err := repo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		entry = &models.OrderTimelineEntry{
			OrderID:     order.ID,
			Action:      "payment_captured",
			Details:     "gateway payment " + input.GatewayPaymentID,
			OldValue:    enums.PaymentStatusUnpaid.String(),
			NewValue:    enums.PaymentStatusPaid.String(),
			PerformedBy: &input.UserID,
			ActorRole:   enums.ActorRoleCustomer,
			PerformedAt: now,
		}
		return repo.AppendTimeline(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPayment("gateway", "captured")
	s.advanceToProcessing(ctx, order, input.UserID)
	s.notify(ctx, order, entry, func(user *models.User) error {
		return s.notifier.PaymentConfirmed(ctx, user, order)
	})
	return order, nil
}

func (s *service) SubmitUTR(ctx context.Context, input SubmitUTRInput) (*SubmitUTRResult, error) {
	if input.UTR == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference required")
	}
	order, err := s.loadOwnedOrder(ctx, input.OrderID, input.UserID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != enums.PaymentStatusUnpaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already paid")
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order.PaymentInfo.Method = enums.PaymentMethodManualUPI
		order.PaymentInfo.Status = enums.PaymentInfoStatusPendingVerification
		order.PaymentInfo.UTR = input.UTR
		order.PaymentInfo.InitiatedAt = &now
		if err := repo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}
		return repo.AppendTimeline(ctx, &models.OrderTimelineEntry{
			OrderID:     order.ID,
			Action:      "payment_submitted",
			Details:     "upi transaction " + input.UTR,
			NewValue:    enums.PaymentInfoStatusPendingVerification.String(),
			PerformedBy: &input.UserID,
			ActorRole:   enums.ActorRoleCustomer,
			PerformedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, order.ID)
	if err != nil {
		s.log.Error(s.log.WithOrderID(ctx, order.ID.String()), "issue verification token", err)
		token = ""
	}
	s.metrics.IncPayment("manual_upi", "submitted")
	return &SubmitUTRResult{Order: order, VerificationToken: token}, nil
}

func (s *service) VerifyManualPayment(ctx context.Context, input ManualVerificationInput) (*models.Order, error) {
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if input.Token != "" {
		boundID, err := s.tokens.Lookup(ctx, input.Token)
		if err != nil {
			return nil, err
		}
		if boundID != order.ID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "verification token does not match this order")
		}
	}
	if order.PaymentInfo.Status != enums.PaymentInfoStatusPendingVerification {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no payment awaiting verification on this order")
	}

	now := time.Now().UTC()
	adminID := input.AdminID
	var entry *models.OrderTimelineEntry

	if !input.Approve {
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			order.PaymentInfo.Status = enums.PaymentInfoStatusFailed
			order.PaymentInfo.FailureReason = input.Notes
			order.PaymentInfo.VerifiedBy = &adminID
			order.PaymentInfo.VerifiedAt = &now
			if err := repo.SaveOrder(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
			}
			entry = &models.OrderTimelineEntry{
				OrderID:     order.ID,
				Action:      "payment_rejected",
				Details:     input.Notes,
				OldValue:    enums.PaymentInfoStatusPendingVerification.String(),
				NewValue:    enums.PaymentInfoStatusFailed.String(),
				PerformedBy: &adminID,
				ActorRole:   enums.ActorRoleAdmin,
				PerformedAt: now,
			}
			return repo.AppendTimeline(ctx, entry)
		})
		if err != nil {
			return nil, err
		}

		s.metrics.IncPayment("manual_upi", "rejected")
		s.revokeToken(ctx, input.Token)
		s.notify(ctx, order, entry, func(user *models.User) error {
			return s.notifier.PaymentRejected(ctx, user, order, input.Notes)
		})
		return order, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		applied, err := s.effects.WithTx(tx).Record(ctx, &models.SideEffectEvent{
			OrderID:    order.ID,
			EffectType: enums.SideEffectPaymentCaptured,
			ActorID:    &adminID,
			Details:    "manual upi verified",
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment capture")
		}
		if !applied {
			return nil
		}

		order.PaymentStatus = enums.PaymentStatusPaid
		order.PaymentInfo.Status = enums.PaymentInfoStatusCompleted
		order.PaymentInfo.VerifiedBy = &adminID
		order.PaymentInfo.VerifiedAt = &now
		order.PaymentInfo.VerificationNotes = input.Notes
		order.PaymentInfo.CapturedAt = &now
		if err := repo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		entry = &models.OrderTimelineEntry{
			OrderID:     order.ID,
			Action:      "payment_verified",
			Details:     input.Notes,
			OldValue:    enums.PaymentStatusUnpaid.String(),
			NewValue:    enums.PaymentStatusPaid.String(),
			PerformedBy: &adminID,
			ActorRole:   enums.ActorRoleAdmin,
			PerformedAt: now,
		}
		return repo.AppendTimeline(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPayment("manual_upi", "captured")
	s.revokeToken(ctx, input.Token)
	s.advanceToProcessing(ctx, order, adminID)
	s.notify(ctx, order, entry, func(user *models.User) error {
		return s.notifier.PaymentVerified(ctx, user, order)
	})
	return order, nil
}

func (s *service) MarkCOD(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOwnedOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != enums.PaymentStatusUnpaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already paid")
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order.PaymentInfo.Method = enums.PaymentMethodCOD
		order.PaymentInfo.Status = enums.PaymentInfoStatusPendingCOD
		order.PaymentInfo.InitiatedAt = &now
		if err := repo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}
		return repo.AppendTimeline(ctx, &models.OrderTimelineEntry{
			OrderID:     order.ID,
			Action:      "payment_method_selected",
			Details:     "cash on delivery",
			NewValue:    enums.PaymentInfoStatusPendingCOD.String(),
			PerformedBy: &userID,
			ActorRole:   enums.ActorRoleCustomer,
			PerformedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPayment("cod", "selected")
	s.advanceToProcessing(ctx, order, userID)
	return order, nil
}

func (s *service) Refund(ctx context.Context, input RefundInput) (*models.Order, error) {
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	switch order.PaymentStatus {
	case enums.PaymentStatusPaid:
	case enums.PaymentStatusRefunded:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already refunded")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only paid orders can be refunded")
	}

	amount := order.TotalPaise
	if input.AmountPaise != nil {
		if *input.AmountPaise <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
		}
		if *input.AmountPaise > order.TotalPaise {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount exceeds order total")
		}
		amount = *input.AmountPaise
	}
	method := input.Method
	if method == "" {
		method = enums.RefundMethodOriginal
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown refund method %q", method))
	}

	now := time.Now().UTC()
	adminID := input.AdminID
	var entry *models.OrderTimelineEntry
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		applied, err := s.effects.WithTx(tx).Record(ctx, &models.SideEffectEvent{
			OrderID:    order.ID,
			EffectType: enums.SideEffectRefundIssued,
			ActorID:    &adminID,
			Details:    fmt.Sprintf("amount_paise=%d", amount),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record refund")
		}
		if !applied {
			return nil
		}

		order.PaymentStatus = enums.PaymentStatusRefunded
		order.RefundInfo = models.RefundInfo{
			AmountPaise: amount,
			Reason:      input.Reason,
			Method:      method,
			Reference:   input.Reference,
			RefundedAt:  &now,
			RefundedBy:  &adminID,
		}
		if order.Status == enums.OrderStatusCancelled {
			order.Cancellation.RefundStatus = enums.CancellationRefundStatusProcessed
		}
		if err := repo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		entry = &models.OrderTimelineEntry{
			OrderID:     order.ID,
			Action:      "refund_processed",
			Details:     input.Reason,
			OldValue:    enums.PaymentStatusPaid.String(),
			NewValue:    enums.PaymentStatusRefunded.String(),
			PerformedBy: &adminID,
			ActorRole:   enums.ActorRoleAdmin,
			PerformedAt: now,
		}
		return repo.AppendTimeline(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRefund()
	s.notify(ctx, order, entry, func(user *models.User) error {
		return s.notifier.RefundProcessed(ctx, user, order)
	})
	return order, nil
}

func (s *service) OverridePaymentStatus(ctx context.Context, input OverrideInput) (*models.Order, error) {
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown payment status %q", input.Target))
	}
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == input.Target {
		return order, nil
	}
	if input.Target.Rank() < order.PaymentStatus.Rank() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf(
			"payment status only advances unpaid -> paid -> refunded (current: %s)", order.PaymentStatus))
	}

	if input.Target == enums.PaymentStatusRefunded {
		if order.PaymentStatus != enums.PaymentStatusPaid {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order must be paid before it can be refunded")
		}
		return s.Refund(ctx, RefundInput{
			OrderID:     input.OrderID,
			AmountPaise: input.RefundAmountPaise,
			Reason:      input.Notes,
			AdminID:     input.AdminID,
		})
	}

	now := time.Now().UTC()
	adminID := input.AdminID
	var entry *models.OrderTimelineEntry
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		applied, err := s.effects.WithTx(tx).Record(ctx, &models.SideEffectEvent{
			OrderID:    order.ID,
			EffectType: enums.SideEffectPaymentCaptured,
			ActorID:    &adminID,
			Details:    "manual override",
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment capture")
		}
		if !applied {
			return nil
		}

		order.PaymentStatus = enums.PaymentStatusPaid
		order.PaymentInfo.Status = enums.PaymentInfoStatusCompleted
		order.PaymentInfo.CapturedAt = &now
		if err := repo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		entry = &models.OrderTimelineEntry{
			OrderID:     order.ID,
			Action:      "payment_overridden",
			Details:     input.Notes,
			OldValue:    enums.PaymentStatusUnpaid.String(),
			NewValue:    enums.PaymentStatusPaid.String(),
			PerformedBy: &adminID,
			ActorRole:   enums.ActorRoleAdmin,
			PerformedAt: now,
		}
		return repo.AppendTimeline(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPayment("override", "captured")
	s.notify(ctx, order, entry, func(user *models.User) error {
		return s.notifier.PaymentConfirmed(ctx, user, order)
	})
	return order, nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) loadOwnedOrder(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// advanceToProcessing moves a pending order forward after payment lands. The
// state machine runs in its own transaction and failures are logged only;
// payment capture has already committed.
func (s *service) advanceToProcessing(ctx context.Context, order *models.Order, actorID uuid.UUID) {
	if order.Status != enums.OrderStatusPending {
		return
	}
	updated, err := s.machine.Transition(ctx, orders.TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusProcessing,
		Notes:   "payment received",
		Actor:   orders.Actor{ID: actorID, Role: enums.ActorRoleSystem},
	})
	if err != nil {
		s.log.Error(s.log.WithOrderID(ctx, order.ID.String()), "auto-advance after payment", err)
		return
	}
	order.Status = updated.Status
	order.InventoryReserved = updated.InventoryReserved
}

func (s *service) notify(ctx context.Context, order *models.Order, entry *models.OrderTimelineEntry, send func(user *models.User) error) {
	logCtx := s.log.WithOrderID(ctx, order.ID.String())
	user, err := s.repo.FindUser(ctx, order.UserID)
	if err != nil {
		s.log.Error(logCtx, "load user for notification", err)
		return
	}
	if err := send(user); err != nil {
		s.log.Warn(s.log.WithField(logCtx, "notify_error", err.Error()), "payment notification failed")
		return
	}
	if entry != nil {
		if err := s.repo.MarkTimelineNotified(ctx, entry.ID); err != nil {
			s.log.Error(logCtx, "mark timeline notified", err)
		}
	}
}

func (s *service) revokeToken(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.tokens.Revoke(ctx, token); err != nil {
		s.log.Warn(s.log.WithField(ctx, "token_error", err.Error()), "revoke verification token failed")
	}
}
