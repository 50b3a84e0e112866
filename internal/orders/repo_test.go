package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'customer',
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_number INTEGER NOT NULL,
  subtotal_paise INTEGER NOT NULL,
  shipping_paise INTEGER NOT NULL DEFAULT 0,
  total_paise INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  payment_method TEXT,
  payment_info_status TEXT,
  payment_gateway_order_id TEXT,
  payment_gateway_payment_id TEXT,
  payment_utr TEXT,
  payment_failure_reason TEXT,
  payment_verified_by TEXT,
  payment_verified_at DATETIME,
  payment_captured_at DATETIME,
  payment_initiated_at DATETIME,
  payment_verification_notes TEXT,
  shipping_carrier TEXT,
  shipping_tracking_number TEXT,
  shipping_tracking_url TEXT,
  shipping_shipped_at DATETIME,
  shipping_estimated_delivery DATETIME,
  shipping_delivered_at DATETIME,
  cancellation_reason TEXT,
  cancellation_cancelled_at DATETIME,
  cancellation_cancelled_by TEXT,
  cancellation_actor_role TEXT,
  cancellation_refund_status TEXT DEFAULT 'none',
  refund_amount_paise INTEGER,
  refund_reason TEXT,
  refund_method TEXT,
  refund_reference TEXT,
  refund_refunded_at DATETIME,
  refund_refunded_by TEXT,
  inventory_reserved INTEGER NOT NULL DEFAULT 0,
  inventory_updated INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  name TEXT NOT NULL,
  image_url TEXT,
  unit_price_paise INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  total_paise INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS order_timeline_entries (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  action TEXT NOT NULL,
  details TEXT,
  old_value TEXT,
  new_value TEXT,
  performed_by TEXT,
  actor_role TEXT,
  notification_sent INTEGER NOT NULL DEFAULT 0,
  performed_at DATETIME NOT NULL,
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS order_notes (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  author TEXT NOT NULL,
  author_id TEXT,
  body TEXT NOT NULL,
  visible INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func insertTestOrder(t *testing.T, repo Repository, userID uuid.UUID, number int64, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		OrderNumber:   number,
		SubtotalPaise: 10000,
		ShippingPaise: 1000,
		TotalPaise:    11000,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusUnpaid,
		CreatedAt:     createdAt,
		Items: []models.OrderItem{{
			Name:           "Steel Bottle",
			UnitPricePaise: 5000,
			Qty:            2,
			TotalPaise:     10000,
		}},
	}
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func TestCreateAndFindOrderRoundTrip(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	userID := uuid.New()

	order := insertTestOrder(t, repo, userID, 1001, time.Now().UTC())
	require.NoError(t, repo.AppendTimeline(context.Background(), &models.OrderTimelineEntry{
		OrderID:     order.ID,
		Action:      "order_created",
		NewValue:    "pending",
		ActorRole:   enums.ActorRoleCustomer,
		PerformedAt: time.Now().UTC(),
	}))

	found, err := repo.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1001), found.OrderNumber)
	assert.Equal(t, int64(11000), found.TotalPaise)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Steel Bottle", found.Items[0].Name)
	require.Len(t, found.Timeline, 1)
	assert.Equal(t, "order_created", found.Timeline[0].Action)
}

func TestFindOrderUnknownID(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	_, err := repo.FindOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSaveOrderPersistsEmbeddedFields(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	order := insertTestOrder(t, repo, uuid.New(), 1001, time.Now().UTC())

	now := time.Now().UTC()
	order.Status = enums.OrderStatusShipped
	order.InventoryUpdated = true
	order.ShippingInfo.TrackingNumber = "TRK1"
	order.ShippingInfo.ShippedAt = &now
	require.NoError(t, repo.SaveOrder(context.Background(), order))

	found, err := repo.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, found.Status)
	assert.True(t, found.InventoryUpdated)
	assert.Equal(t, "TRK1", found.ShippingInfo.TrackingNumber)
	require.NotNil(t, found.ShippingInfo.ShippedAt)
	require.Len(t, found.Items, 1)
}

func TestListFiltersAndPaginates(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	userID := uuid.New()
	otherUser := uuid.New()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		insertTestOrder(t, repo, userID, int64(1001+i), base.Add(time.Duration(i)*time.Minute))
	}
	insertTestOrder(t, repo, otherUser, 2001, base.Add(10*time.Minute))

	page, next, err := repo.List(context.Background(), ListQuery{
		UserID: &userID,
		Page:   pagination.Params{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotEmpty(t, next)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	rest, next, err := repo.List(context.Background(), ListQuery{
		UserID: &userID,
		Page:   pagination.Params{Limit: 2, Cursor: next},
	})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Empty(t, next)

	status := enums.OrderStatusShipped
	none, _, err := repo.List(context.Background(), ListQuery{Status: &status})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMarkTimelineNotified(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	order := insertTestOrder(t, repo, uuid.New(), 1001, time.Now().UTC())

	entry := &models.OrderTimelineEntry{
		OrderID:     order.ID,
		Action:      "status_changed",
		OldValue:    "pending",
		NewValue:    "processing",
		PerformedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.AppendTimeline(context.Background(), entry))
	require.NoError(t, repo.MarkTimelineNotified(context.Background(), entry.ID))

	found, err := repo.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, found.Timeline, 1)
	assert.True(t, found.Timeline[0].NotificationSent)
}

func TestNotesVisibilityFilter(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	order := insertTestOrder(t, repo, uuid.New(), 1001, time.Now().UTC())

	require.NoError(t, repo.AddNote(context.Background(), &models.OrderNote{
		OrderID: order.ID,
		Author:  enums.NoteAuthorInternal,
		Body:    "hold for address check",
		Visible: false,
	}))
	require.NoError(t, repo.AddNote(context.Background(), &models.OrderNote{
		OrderID: order.ID,
		Author:  enums.NoteAuthorCustomer,
		Body:    "leave at door",
		Visible: true,
	}))

	visible, err := repo.ListNotes(context.Background(), order.ID, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "leave at door", visible[0].Body)

	all, err := repo.ListNotes(context.Background(), order.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
