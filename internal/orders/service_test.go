package orders

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgerrors "github.com/swiftcartlabs/swiftcart-backend/pkg/errors"

	"github.com/swiftcartlabs/swiftcart-backend/internal/effects"
	"github.com/swiftcartlabs/swiftcart-backend/internal/inventory"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/logger"
)

type stubOrdersRepo struct {
	orders     map[uuid.UUID]*models.Order
	users      map[uuid.UUID]*models.User
	timeline   []*models.OrderTimelineEntry
	notes      []*models.OrderNote
	notified   map[uuid.UUID]bool
	nextNumber int64
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{
		orders:   map[uuid.UUID]*models.Order{},
		users:    map[uuid.UUID]*models.User{},
		notified: map[uuid.UUID]bool{},
	}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	cp := *order
	s.orders[order.ID] = &cp
	return nil
}

func (s *stubOrdersRepo) NextOrderNumber(ctx context.Context) (int64, error) {
	s.nextNumber++
	return s.nextNumber, nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *order
	return &cp, nil
}

func (s *stubOrdersRepo) List(ctx context.Context, query ListQuery) ([]models.Order, string, error) {
	var results []models.Order
	for _, order := range s.orders {
		if query.UserID != nil && order.UserID != *query.UserID {
			continue
		}
		results = append(results, *order)
	}
	return results, "", nil
}

func (s *stubOrdersRepo) ListForExport(ctx context.Context, query ListQuery) ([]models.Order, error) {
	results, _, err := s.List(ctx, query)
	return results, err
}

func (s *stubOrdersRepo) SaveOrder(ctx context.Context, order *models.Order) error {
	cp := *order
	s.orders[order.ID] = &cp
	return nil
}

func (s *stubOrdersRepo) AppendTimeline(ctx context.Context, entry *models.OrderTimelineEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	cp := *entry
	s.timeline = append(s.timeline, &cp)
	return nil
}

func (s *stubOrdersRepo) MarkTimelineNotified(ctx context.Context, entryID uuid.UUID) error {
	s.notified[entryID] = true
	return nil
}

func (s *stubOrdersRepo) AddNote(ctx context.Context, note *models.OrderNote) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	cp := *note
	s.notes = append(s.notes, &cp)
	return nil
}

func (s *stubOrdersRepo) ListNotes(ctx context.Context, orderID uuid.UUID, includeHidden bool) ([]models.OrderNote, error) {
	var results []models.OrderNote
	for _, note := range s.notes {
		if note.OrderID != orderID {
			continue
		}
		if !includeHidden && !note.Visible {
			continue
		}
		results = append(results, *note)
	}
	return results, nil
}

func (s *stubOrdersRepo) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubOrdersRepo) timelineFor(orderID uuid.UUID) []*models.OrderTimelineEntry {
	var entries []*models.OrderTimelineEntry
	for _, entry := range s.timeline {
		if entry.OrderID == orderID {
			entries = append(entries, entry)
		}
	}
	return entries
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubInventoryRepo struct {
	products map[uuid.UUID]*models.Product
	reserved map[uuid.UUID]int
	released map[uuid.UUID]int
	commits  int
}

func newStubInventoryRepo() *stubInventoryRepo {
	return &stubInventoryRepo{
		products: map[uuid.UUID]*models.Product{},
		reserved: map[uuid.UUID]int{},
		released: map[uuid.UUID]int{},
	}
}

func (s *stubInventoryRepo) WithTx(tx *gorm.DB) inventory.Repository { return s }

func (s *stubInventoryRepo) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if product, ok := s.products[productID]; ok {
		return product, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubInventoryRepo) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	s.reserved[productID] += qty
	return nil
}

func (s *stubInventoryRepo) CommitReserved(ctx context.Context, productID uuid.UUID, qty int) error {
	s.commits += qty
	return nil
}

func (s *stubInventoryRepo) CommitAvailable(ctx context.Context, productID uuid.UUID, qty int) error {
	s.commits += qty
	return nil
}

func (s *stubInventoryRepo) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	s.released[productID] += qty
	return nil
}

type stubEffectsRepo struct {
	recorded map[string]bool
}

func newStubEffectsRepo() *stubEffectsRepo {
	return &stubEffectsRepo{recorded: map[string]bool{}}
}

func (s *stubEffectsRepo) WithTx(tx *gorm.DB) effects.Repository { return s }

func (s *stubEffectsRepo) Record(ctx context.Context, event *models.SideEffectEvent) (bool, error) {
	key := event.OrderID.String() + "/" + event.EffectType.String()
	if s.recorded[key] {
		return false, nil
	}
	s.recorded[key] = true
	return true, nil
}

func (s *stubEffectsRepo) Has(ctx context.Context, orderID uuid.UUID, effectType enums.SideEffectType) (bool, error) {
	return s.recorded[orderID.String()+"/"+effectType.String()], nil
}

func (s *stubEffectsRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.SideEffectEvent, error) {
	return nil, nil
}

type stubNotifier struct {
	statusChanges int
	cancellations int
	fail          bool
}

func (s *stubNotifier) OrderStatusChanged(ctx context.Context, user *models.User, order *models.Order, oldStatus enums.OrderStatus) error {
	s.statusChanges++
	if s.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (s *stubNotifier) OrderCancelled(ctx context.Context, user *models.User, order *models.Order) error {
	s.cancellations++
	if s.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

type fixture struct {
	service   Service
	repo      *stubOrdersRepo
	inventory *stubInventoryRepo
	effects   *stubEffectsRepo
	notifier  *stubNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newStubOrdersRepo()
	inventoryRepo := newStubInventoryRepo()
	effectsRepo := newStubEffectsRepo()
	notifier := &stubNotifier{}
	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	reconciler := inventory.NewReconciler(inventoryRepo, effectsRepo, log)

	svc, err := NewService(repo, stubTxRunner{}, inventoryRepo, reconciler, effectsRepo, notifier, log, nil)
	require.NoError(t, err)
	return &fixture{
		service:   svc,
		repo:      repo,
		inventory: inventoryRepo,
		effects:   effectsRepo,
		notifier:  notifier,
	}
}

func (f *fixture) seedUser() *models.User {
	user := &models.User{ID: uuid.New(), Email: "asha@example.com", Name: "Asha"}
	f.repo.users[user.ID] = user
	return user
}

func (f *fixture) seedOrder(user *models.User, status enums.OrderStatus) *models.Order {
	productID := uuid.New()
	f.inventory.products[productID] = &models.Product{
		ID:             productID,
		Name:           "Steel Bottle",
		PricePaise:     49900,
		InStock:        true,
		IsActive:       true,
		TrackInventory: true,
	}
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        user.ID,
		OrderNumber:   1001,
		SubtotalPaise: 99800,
		ShippingPaise: 5000,
		TotalPaise:    104800,
		Status:        status,
		PaymentStatus: enums.PaymentStatusUnpaid,
		Items: []models.OrderItem{{
			ID:             uuid.New(),
			ProductID:      &productID,
			Name:           "Steel Bottle",
			UnitPricePaise: 49900,
			Qty:            2,
			TotalPaise:     99800,
		}},
	}
	f.repo.orders[order.ID] = order
	return order
}

func adminActor() Actor {
	return Actor{ID: uuid.New(), Role: enums.ActorRoleAdmin}
}

func TestTransitionPendingToProcessingReservesInventory(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()
	order := f.seedOrder(user, enums.OrderStatusPending)

	updated, err := f.service.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusProcessing,
		Notes:   "confirmed by ops",
		Actor:   adminActor(),
	})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)
	assert.True(t, updated.InventoryReserved)
	assert.Equal(t, 2, f.inventory.reserved[*order.Items[0].ProductID])

	entries := f.repo.timelineFor(order.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, "status_changed", entries[0].Action)
	assert.Equal(t, "pending", entries[0].OldValue)
	assert.Equal(t, "processing", entries[0].NewValue)
	assert.Equal(t, 1, f.notifier.statusChanges)
	assert.True(t, f.repo.notified[entries[0].ID])
}

func TestTransitionSameStatusIsNoOp(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()
	order := f.seedOrder(user, enums.OrderStatusProcessing)

	updated, err := f.service.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusProcessing,
		Actor:   adminActor(),
	})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)
	assert.Empty(t, f.repo.timelineFor(order.ID))
	assert.Empty(t, f.inventory.reserved)
	assert.Zero(t, f.notifier.statusChanges)
}

func TestTransitionRejectsIllegalEdgeAndEnumeratesTargets(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()
	order := f.seedOrder(user, enums.OrderStatusDelivered)

	_, err := f.service.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusProcessing,
		Actor:   adminActor(),
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	assert.Contains(t, typed.Message(), "cancelled")

	stored, findErr := f.repo.FindOrder(context.Background(), order.ID)
	require.NoError(t, findErr)
	assert.Equal(t, enums.OrderStatusDelivered, stored.Status)
	assert.Empty(t, f.repo.timelineFor(order.ID))
}

func TestTransitionUnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Transition(context.Background(), TransitionInput{
		OrderID: uuid.New(),
		Target:  enums.OrderStatusProcessing,
		Actor:   adminActor(),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestTransitionPendingDirectlyToShippedCommitsStockOnce(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()
	order := f.seedOrder(user, enums.OrderStatusPending)
	tracking := "TRK1"

	updated, err := f.service.Transition(context.Background(), TransitionInput{
		OrderID:      order.ID,
		Target:       enums.OrderStatusShipped,
		ShippingInfo: &ShippingUpdate{TrackingNumber: &tracking},
		Actor:        adminActor(),
	})
	require.NoError(t, err)

	assert.True(t, updated.InventoryUpdated)
	assert.False(t, updated.InventoryReserved)
	assert.Equal(t, "TRK1", updated.ShippingInfo.TrackingNumber)
	require.NotNil(t, updated.ShippingInfo.ShippedAt)
	assert.Equal(t, 2, f.inventory.commits)
}

func TestTransitionShippedAfterProcessingBurnsReservation(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()
	order := f.seedOrder(user, enums.OrderStatusPending)

	_, err := f.service.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusProcessing,
		Actor:   adminActor(),
	})
	require.NoError(t, err)

	updated, err := f.service.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusShipped,
		Actor:   adminActor(),
	})
	require.NoError(t, err)

	assert.True(t, updated.InventoryReserved)
	assert.True(t, updated.InventoryUpdated)
	assert.Equal(t, 2, f.inventory.commits)
	assert.Len(t, f.repo.timelineFor(order.ID), 2)
}

func TestCancelReleasesOnlyUncommittedReservations(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()
	order := f.seedOrder(user, enums.OrderStatusPending)

	_, err := f.service.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusProcessing,
		Actor:   adminActor(),
	})
	require.NoError(t, err)

	actor := adminActor()
	updated, err := f.service.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusCancelled,
		Notes:   "customer request",
		Actor:   actor,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusCancelled, updated.Status)
	assert.Equal(t, 2, f.inventory.released[*order.Items[0].ProductID])
	assert.Equal(t, "customer request", updated.Cancellation.Reason)
	require.NotNil(t, updated.Cancellation.CancelledAt)
	assert.Equal(t, enums.CancellationRefundStatusNone, updated.Cancellation.RefundStatus)
	assert.Equal(t, 1, f.notifier.cancellations)
}

func TestCancelAfterShipmentDoesNotRelease(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()
	order := f.seedOrder(user, enums.OrderStatusPending)

	for _, target := range []enums.OrderStatus{enums.OrderStatusProcessing, enums.OrderStatusShipped} {
		_, err := f.service.Transition(context.Background(), TransitionInput{
			OrderID: order.ID,
			Target:  target,
			Actor:   adminActor(),
		})
		require.NoError(t, err)
	}

	_, err := f.service.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusCancelled,
		Actor:   adminActor(),
	})
	require.NoError(t, err)
	assert.Empty(t, f.inventory.released)
}

func TestCancelPaidOrderMarksRefundPending(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()
	order := f.seedOrder(user, enums.OrderStatusProcessing)
	order.PaymentStatus = enums.PaymentStatusPaid
	f.repo.orders[order.ID] = order

	updated, err := f.service.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusCancelled,
		Actor:   adminActor(),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.CancellationRefundStatusPending, updated.Cancellation.RefundStatus)
}

func TestDeliveredWithCODCollectedSettlesPayment(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()
	order := f.seedOrder(user, enums.OrderStatusProcessing)
	order.PaymentInfo.Method = enums.PaymentMethodCOD
	order.PaymentInfo.Status = enums.PaymentInfoStatusPendingCOD
	f.repo.orders[order.ID] = order

	updated, err := f.service.Transition(context.Background(), TransitionInput{
		OrderID:      order.ID,
		Target:       enums.OrderStatusDelivered,
		Actor:        adminActor(),
		CODCollected: true,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.PaymentStatusPaid, updated.PaymentStatus)
	assert.Equal(t, enums.PaymentInfoStatusCompleted, updated.PaymentInfo.Status)
	require.NotNil(t, updated.PaymentInfo.CapturedAt)
	require.NotNil(t, updated.ShippingInfo.DeliveredAt)
}

func TestDeliveredWithoutCollectedFlagLeavesCODUnpaid(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()
	order := f.seedOrder(user, enums.OrderStatusProcessing)
	order.PaymentInfo.Method = enums.PaymentMethodCOD
	f.repo.orders[order.ID] = order

	updated, err := f.service.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusDelivered,
		Actor:   adminActor(),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusUnpaid, updated.PaymentStatus)
}

func TestNotifierFailureDoesNotRollBackTransition(t *testing.T) {
	f := newFixture(t)
	f.notifier.fail = true
	user := f.seedUser()
	order := f.seedOrder(user, enums.OrderStatusPending)

	updated, err := f.service.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusProcessing,
		Actor:   adminActor(),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)

	entries := f.repo.timelineFor(order.ID)
	require.Len(t, entries, 1)
	assert.False(t, f.repo.notified[entries[0].ID])
}

func TestBulkTransitionIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()
	good := f.seedOrder(user, enums.OrderStatusPending)
	terminal := f.seedOrder(user, enums.OrderStatusCancelled)

	results := f.service.BulkTransition(context.Background(), BulkTransitionInput{
		OrderIDs: []uuid.UUID{good.ID, terminal.ID, uuid.New()},
		Target:   enums.OrderStatusProcessing,
		Actor:    adminActor(),
	})
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)
	assert.False(t, results[2].Success)

	stored, err := f.repo.FindOrder(context.Background(), good.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, stored.Status)
}

func TestCustomerCancelOnlyBeforeShipment(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()
	shipped := f.seedOrder(user, enums.OrderStatusShipped)

	_, err := f.service.CancelByCustomer(context.Background(), shipped.ID, user.ID, "changed my mind")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	pending := f.seedOrder(user, enums.OrderStatusPending)
	updated, err := f.service.CancelByCustomer(context.Background(), pending.ID, user.ID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, updated.Status)
	assert.Equal(t, enums.ActorRoleCustomer, updated.Cancellation.ActorRole)
}

func TestCustomerCancelHidesForeignOrders(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser()
	other := f.seedUser()
	order := f.seedOrder(owner, enums.OrderStatusPending)

	_, err := f.service.CancelByCustomer(context.Background(), order.ID, other.ID, "nope")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateComputesTotalsServerSide(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()

	productID := uuid.New()
	f.inventory.products[productID] = &models.Product{
		ID:         productID,
		Name:       "Clay Mug",
		PricePaise: 24900,
		InStock:    true,
		IsActive:   true,
	}

	order, err := f.service.Create(context.Background(), CreateOrderInput{
		UserID:        user.ID,
		Items:         []CreateItemInput{{ProductID: productID, Qty: 3}},
		ShippingPaise: 5000,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, int64(74700), order.SubtotalPaise)
	assert.Equal(t, int64(79700), order.TotalPaise)
	assert.Equal(t, order.SubtotalPaise+order.ShippingPaise, order.TotalPaise)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(24900), order.Items[0].UnitPricePaise)
	assert.Equal(t, "Clay Mug", order.Items[0].Name)

	entries := f.repo.timelineFor(order.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, "order_created", entries[0].Action)
}

func TestCreateRejectsUnavailableProduct(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()

	productID := uuid.New()
	f.inventory.products[productID] = &models.Product{
		ID:         productID,
		Name:       "Clay Mug",
		PricePaise: 24900,
		InStock:    false,
		IsActive:   true,
	}

	_, err := f.service.Create(context.Background(), CreateOrderInput{
		UserID: user.ID,
		Items:  []CreateItemInput{{ProductID: productID, Qty: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestAddAndListNotes(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser()
	order := f.seedOrder(user, enums.OrderStatusPending)
	actor := adminActor()

	_, err := f.service.AddNote(context.Background(), AddNoteInput{
		OrderID: order.ID,
		Body:    "verify address before shipping",
		Author:  enums.NoteAuthorInternal,
		Actor:   actor,
		Visible: false,
	})
	require.NoError(t, err)

	_, err = f.service.AddNote(context.Background(), AddNoteInput{
		OrderID: order.ID,
		Body:    "gift wrap please",
		Author:  enums.NoteAuthorCustomer,
		Actor:   Actor{ID: user.ID, Role: enums.ActorRoleCustomer},
		Visible: true,
	})
	require.NoError(t, err)

	visible, err := f.service.ListNotes(context.Background(), order.ID, false)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	all, err := f.service.ListNotes(context.Background(), order.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
