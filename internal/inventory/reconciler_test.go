package inventory

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "github.com/swiftcartlabs/swiftcart-backend/pkg/errors"

	"github.com/swiftcartlabs/swiftcart-backend/internal/effects"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/logger"
)

type stubInventoryRepo struct {
	products map[uuid.UUID]*models.Product

	reserved  map[uuid.UUID]int
	committed map[uuid.UUID]int
	released  map[uuid.UUID]int

	failProduct uuid.UUID
}

func newStubInventoryRepo() *stubInventoryRepo {
	return &stubInventoryRepo{
		products:  map[uuid.UUID]*models.Product{},
		reserved:  map[uuid.UUID]int{},
		committed: map[uuid.UUID]int{},
		released:  map[uuid.UUID]int{},
	}
}

func (s *stubInventoryRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubInventoryRepo) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if product, ok := s.products[productID]; ok {
		return product, nil
	}
	return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
}

func (s *stubInventoryRepo) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	if productID == s.failProduct {
		return apperrors.New(apperrors.CodeConflict, "insufficient stock")
	}
	s.reserved[productID] += qty
	return nil
}

func (s *stubInventoryRepo) CommitReserved(ctx context.Context, productID uuid.UUID, qty int) error {
	s.committed[productID] += qty
	return nil
}

func (s *stubInventoryRepo) CommitAvailable(ctx context.Context, productID uuid.UUID, qty int) error {
	s.committed[productID] += qty
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

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func trackedProduct(id uuid.UUID) *models.Product {
	return &models.Product{ID: id, TrackInventory: true}
}

func orderWithItems(items ...models.OrderItem) *models.Order {
	return &models.Order{
		ID:     uuid.New(),
		Status: enums.OrderStatusPending,
		Items:  items,
	}
}

func TestReserveTrackedItemsAndSetFlag(t *testing.T) {
	repo := newStubInventoryRepo()
	effectsRepo := newStubEffectsRepo()
	reconciler := NewReconciler(repo, effectsRepo, testLogger())

	tracked := uuid.New()
	untracked := uuid.New()
	repo.products[tracked] = trackedProduct(tracked)
	repo.products[untracked] = &models.Product{ID: untracked, TrackInventory: false}

	order := orderWithItems(
		models.OrderItem{ProductID: &tracked, Qty: 2},
		models.OrderItem{ProductID: &untracked, Qty: 1},
	)

	require.NoError(t, reconciler.Reserve(context.Background(), order))

	assert.True(t, order.InventoryReserved)
	assert.Equal(t, 2, repo.reserved[tracked])
	assert.Zero(t, repo.reserved[untracked])
}

func TestReserveIsAtMostOnce(t *testing.T) {
	repo := newStubInventoryRepo()
	effectsRepo := newStubEffectsRepo()
	reconciler := NewReconciler(repo, effectsRepo, testLogger())

	productID := uuid.New()
	repo.products[productID] = trackedProduct(productID)
	order := orderWithItems(models.OrderItem{ProductID: &productID, Qty: 2})

	require.NoError(t, reconciler.Reserve(context.Background(), order))
	require.NoError(t, reconciler.Reserve(context.Background(), order))

	assert.Equal(t, 2, repo.reserved[productID])
}

func TestReserveLedgerBeatsStaleFlag(t *testing.T) {
	// A second request racing on a stale in-memory order must not double
	// reserve: the ledger row, not the boolean, is the guard.
	repo := newStubInventoryRepo()
	effectsRepo := newStubEffectsRepo()
	reconciler := NewReconciler(repo, effectsRepo, testLogger())

	productID := uuid.New()
	repo.products[productID] = trackedProduct(productID)
	order := orderWithItems(models.OrderItem{ProductID: &productID, Qty: 2})

	require.NoError(t, reconciler.Reserve(context.Background(), order))

	stale := orderWithItems(models.OrderItem{ProductID: &productID, Qty: 2})
	stale.ID = order.ID
	require.NoError(t, reconciler.Reserve(context.Background(), stale))

	assert.True(t, stale.InventoryReserved)
	assert.Equal(t, 2, repo.reserved[productID])
}

func TestReserveSwallowsPerItemFailures(t *testing.T) {
	repo := newStubInventoryRepo()
	effectsRepo := newStubEffectsRepo()
	reconciler := NewReconciler(repo, effectsRepo, testLogger())

	failing := uuid.New()
	healthy := uuid.New()
	repo.products[failing] = trackedProduct(failing)
	repo.products[healthy] = trackedProduct(healthy)
	repo.failProduct = failing

	order := orderWithItems(
		models.OrderItem{ProductID: &failing, Qty: 1},
		models.OrderItem{ProductID: &healthy, Qty: 3},
	)

	require.NoError(t, reconciler.Reserve(context.Background(), order))

	assert.True(t, order.InventoryReserved)
	assert.Equal(t, 3, repo.reserved[healthy])
}

func TestCommitStockBurnsReservationWhenReserved(t *testing.T) {
	repo := newStubInventoryRepo()
	effectsRepo := newStubEffectsRepo()
	reconciler := NewReconciler(repo, effectsRepo, testLogger())

	productID := uuid.New()
	repo.products[productID] = trackedProduct(productID)
	order := orderWithItems(models.OrderItem{ProductID: &productID, Qty: 2})
	order.InventoryReserved = true

	require.NoError(t, reconciler.CommitStock(context.Background(), order))

	assert.True(t, order.InventoryUpdated)
	assert.Equal(t, 2, repo.committed[productID])
}

func TestCommitStockDirectFromPending(t *testing.T) {
	// pending straight to shipped: no reservation exists, stock still drops
	// exactly once.
	repo := newStubInventoryRepo()
	effectsRepo := newStubEffectsRepo()
	reconciler := NewReconciler(repo, effectsRepo, testLogger())

	productID := uuid.New()
	repo.products[productID] = trackedProduct(productID)
	order := orderWithItems(models.OrderItem{ProductID: &productID, Qty: 2})

	require.NoError(t, reconciler.CommitStock(context.Background(), order))
	require.NoError(t, reconciler.CommitStock(context.Background(), order))

	assert.True(t, order.InventoryUpdated)
	assert.Equal(t, 2, repo.committed[productID])
}

func TestReleaseOnlyWhenReservedAndNotCommitted(t *testing.T) {
	repo := newStubInventoryRepo()
	effectsRepo := newStubEffectsRepo()
	reconciler := NewReconciler(repo, effectsRepo, testLogger())

	productID := uuid.New()
	repo.products[productID] = trackedProduct(productID)

	order := orderWithItems(models.OrderItem{ProductID: &productID, Qty: 2})
	order.InventoryReserved = true
	require.NoError(t, reconciler.Release(context.Background(), order))
	assert.Equal(t, 2, repo.released[productID])

	committed := orderWithItems(models.OrderItem{ProductID: &productID, Qty: 2})
	committed.InventoryReserved = true
	committed.InventoryUpdated = true
	require.NoError(t, reconciler.Release(context.Background(), committed))
	assert.Equal(t, 2, repo.released[productID])

	neverReserved := orderWithItems(models.OrderItem{ProductID: &productID, Qty: 2})
	require.NoError(t, reconciler.Release(context.Background(), neverReserved))
	assert.Equal(t, 2, repo.released[productID])
}
