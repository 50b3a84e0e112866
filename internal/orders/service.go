package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/swiftcartlabs/swiftcart-backend/pkg/errors"

	"github.com/swiftcartlabs/swiftcart-backend/internal/effects"
	"github.com/swiftcartlabs/swiftcart-backend/internal/inventory"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/logger"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notifier sends transactional email on lifecycle changes. Callers treat any
// error as a delivery failure to log, never to surface.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, user *models.User, order *models.Order, oldStatus enums.OrderStatus) error
	OrderCancelled(ctx context.Context, user *models.User, order *models.Order) error
}

// Service is the order lifecycle surface: creation, the status state machine,
// notes, and listings.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, query ListQuery) ([]models.Order, string, error)
	ListForExport(ctx context.Context, query ListQuery) ([]models.Order, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
	BulkTransition(ctx context.Context, input BulkTransitionInput) []BulkResult
	CancelByCustomer(ctx context.Context, orderID, userID uuid.UUID, reason string) (*models.Order, error)
	AddNote(ctx context.Context, input AddNoteInput) (*models.OrderNote, error)
	ListNotes(ctx context.Context, orderID uuid.UUID, includeHidden bool) ([]models.OrderNote, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	products inventory.Repository
	stock    *inventory.Reconciler
	effects  effects.Repository
	notifier Notifier
	log      *logger.Logger
	metrics  *metrics.OrderMetrics
}

// NewService builds the order service with its required dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	products inventory.Repository,
	stock *inventory.Reconciler,
	effectsRepo effects.Repository,
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
	if products == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("inventory reconciler required")
	}
	if effectsRepo == nil {
		return nil, fmt.Errorf("side effect ledger required")
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
		products: products,
		stock:    stock,
		effects:  effectsRepo,
		notifier: notifier,
		log:      log,
		metrics:  orderMetrics,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	if input.ShippingPaise < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping amount cannot be negative")
	}
	for _, item := range input.Items {
		if item.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		products := s.products.WithTx(tx)

		items := make([]models.OrderItem, 0, len(input.Items))
		var subtotal int64
		for _, requested := range input.Items {
			product, err := products.FindProduct(ctx, requested.ProductID)
			if err != nil {
				return err
			}
			if !product.IsActive || !product.InStock {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("product %s is not available", product.Name))
			}
			productID := product.ID
			lineTotal := product.PricePaise * int64(requested.Qty)
			subtotal += lineTotal
			items = append(items, models.OrderItem{
				ProductID:      &productID,
				Name:           product.Name,
				ImageURL:       product.ImageURL,
				UnitPricePaise: product.PricePaise,
				Qty:            requested.Qty,
				TotalPaise:     lineTotal,
			})
		}

		number, err := repo.NextOrderNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
		}

		order := &models.Order{
			ID:            uuid.New(),
			UserID:        input.UserID,
			OrderNumber:   number,
			SubtotalPaise: subtotal,
			ShippingPaise: input.ShippingPaise,
			TotalPaise:    subtotal + input.ShippingPaise,
			Status:        enums.OrderStatusPending,
			PaymentStatus: enums.PaymentStatusUnpaid,
			Items:         items,
		}
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		entry := &models.OrderTimelineEntry{
			OrderID:     order.ID,
			Action:      "order_created",
			NewValue:    enums.OrderStatusPending.String(),
			PerformedBy: &input.UserID,
			ActorRole:   enums.ActorRoleCustomer,
			PerformedAt: time.Now().UTC(),
		}
		if err := repo.AppendTimeline(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
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

func (s *service) GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, query ListQuery) ([]models.Order, string, error) {
	return s.repo.List(ctx, query)
}

func (s *service) ListForExport(ctx context.Context, query ListQuery) ([]models.Order, error) {
	return s.repo.ListForExport(ctx, query)
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown order status %q", input.Target))
	}

	var (
		updated   *models.Order
		entry     *models.OrderTimelineEntry
		oldStatus enums.OrderStatus
		noop      bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stock := s.stock.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		oldStatus = order.Status
		if order.Status == input.Target {
			noop = true
			updated = order
			return nil
		}
		if !CanTransition(order.Status, input.Target) {
			s.metrics.IncRejected(order.Status.String(), input.Target.String())
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf(
				"cannot change status from %s to %s; legal next states: %s",
				order.Status, input.Target, legalTargetsMessage(order.Status)))
		}

		now := time.Now().UTC()
		switch input.Target {
		case enums.OrderStatusProcessing:
			if err := stock.Reserve(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve inventory")
			}
		case enums.OrderStatusShipped:
			applyShippingUpdate(order, input.ShippingInfo)
			order.ShippingInfo.ShippedAt = &now
			if err := stock.CommitStock(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commit stock")
			}
		case enums.OrderStatusDelivered:
			order.ShippingInfo.DeliveredAt = &now
			if order.PaymentInfo.Method == enums.PaymentMethodCOD && input.CODCollected {
				if err := s.settleCOD(ctx, tx, order, input.Actor, now); err != nil {
					return err
				}
			}
		case enums.OrderStatusCancelled:
			refundStatus := enums.CancellationRefundStatusNone
			if order.PaymentStatus == enums.PaymentStatusPaid {
				refundStatus = enums.CancellationRefundStatusPending
			}
			order.Cancellation = models.Cancellation{
				Reason:       input.Notes,
				CancelledAt:  &now,
				CancelledBy:  actorIDPtr(input.Actor),
				ActorRole:    input.Actor.Role,
				RefundStatus: refundStatus,
			}
			if err := stock.Release(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release inventory")
			}
		}

		order.Status = input.Target
		if err := repo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		entry = &models.OrderTimelineEntry{
			OrderID:     order.ID,
			Action:      "status_changed",
			Details:     input.Notes,
			OldValue:    oldStatus.String(),
			NewValue:    input.Target.String(),
			PerformedBy: actorIDPtr(input.Actor),
			ActorRole:   input.Actor.Role,
			PerformedAt: now,
		}
		if err := repo.AppendTimeline(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	if noop {
		return updated, nil
	}

	s.metrics.IncTransition(oldStatus.String(), updated.Status.String())
	s.notifyStatusChange(ctx, updated, oldStatus, entry)
	return updated, nil
}

func (s *service) BulkTransition(ctx context.Context, input BulkTransitionInput) []BulkResult {
	results := make([]BulkResult, 0, len(input.OrderIDs))
	for _, orderID := range input.OrderIDs {
		_, err := s.Transition(ctx, TransitionInput{
			OrderID: orderID,
			Target:  input.Target,
			Notes:   input.Notes,
			Actor:   input.Actor,
		})
		result := BulkResult{OrderID: orderID, Success: err == nil}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}

func (s *service) CancelByCustomer(ctx context.Context, orderID, userID uuid.UUID, reason string) (*models.Order, error) {
	order, err := s.GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case enums.OrderStatusPending, enums.OrderStatusProcessing:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("orders can only be cancelled before shipment (current status: %s)", order.Status))
	}
	return s.Transition(ctx, TransitionInput{
		OrderID: orderID,
		Target:  enums.OrderStatusCancelled,
		Notes:   reason,
		Actor:   Actor{ID: userID, Role: enums.ActorRoleCustomer},
	})
}

func (s *service) AddNote(ctx context.Context, input AddNoteInput) (*models.OrderNote, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "note body required")
	}
	if !input.Author.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown note author kind")
	}
	if _, err := s.Get(ctx, input.OrderID); err != nil {
		return nil, err
	}

	note := &models.OrderNote{
		OrderID:  input.OrderID,
		Author:   input.Author,
		AuthorID: actorIDPtr(input.Actor),
		Body:     input.Body,
		Visible:  input.Visible,
	}
	if err := s.repo.AddNote(ctx, note); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add note")
	}
	return note, nil
}

func (s *service) ListNotes(ctx context.Context, orderID uuid.UUID, includeHidden bool) ([]models.OrderNote, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	notes, err := s.repo.ListNotes(ctx, orderID, includeHidden)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notes")
	}
	return notes, nil
}

// settleCOD collects the cash-on-delivery balance as part of marking the
// order delivered. The ledger row keeps collection at-most-once even if the
// delivered transition is retried with the flag set.
func (s *service) settleCOD(ctx context.Context, tx *gorm.DB, order *models.Order, actor Actor, now time.Time) error {
	applied, err := s.effects.WithTx(tx).Record(ctx, &models.SideEffectEvent{
		OrderID:    order.ID,
		EffectType: enums.SideEffectPaymentCaptured,
		ActorID:    actorIDPtr(actor),
		Details:    "cod collected on delivery",
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record cod collection")
	}
	if !applied {
		return nil
	}
	order.PaymentStatus = enums.PaymentStatusPaid
	order.PaymentInfo.Status = enums.PaymentInfoStatusCompleted
	order.PaymentInfo.CapturedAt = &now
	return nil
}

func (s *service) notifyStatusChange(ctx context.Context, order *models.Order, oldStatus enums.OrderStatus, entry *models.OrderTimelineEntry) {
	logCtx := s.log.WithOrderID(ctx, order.ID.String())

	user, err := s.repo.FindUser(ctx, order.UserID)
	if err != nil {
		s.log.Error(logCtx, "load user for notification", err)
		return
	}

	if order.Status == enums.OrderStatusCancelled {
		err = s.notifier.OrderCancelled(ctx, user, order)
	} else {
		err = s.notifier.OrderStatusChanged(ctx, user, order, oldStatus)
	}
	if err != nil {
		s.log.Warn(s.log.WithField(logCtx, "notify_error", err.Error()), "status notification failed")
		return
	}

	if entry != nil {
		if err := s.repo.MarkTimelineNotified(ctx, entry.ID); err != nil {
			s.log.Error(logCtx, "mark timeline notified", err)
		}
	}
}

func applyShippingUpdate(order *models.Order, update *ShippingUpdate) {
	if update == nil {
		return
	}
	if update.Carrier != nil {
		order.ShippingInfo.Carrier = *update.Carrier
	}
	if update.TrackingNumber != nil {
		order.ShippingInfo.TrackingNumber = *update.TrackingNumber
	}
	if update.TrackingURL != nil {
		order.ShippingInfo.TrackingURL = *update.TrackingURL
	}
	if update.EstimatedDelivery != nil {
		order.ShippingInfo.EstimatedDelivery = update.EstimatedDelivery
	}
}

func actorIDPtr(actor Actor) *uuid.UUID {
	if actor.ID == uuid.Nil {
		return nil
	}
	id := actor.ID
	return &id
}
