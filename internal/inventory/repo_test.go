package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	apperrors "github.com/swiftcartlabs/swiftcart-backend/pkg/errors"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  image_url TEXT,
  price_paise INTEGER NOT NULL,
  in_stock INTEGER NOT NULL DEFAULT 1,
  track_inventory INTEGER NOT NULL DEFAULT 1,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS inventory_items (
  product_id TEXT PRIMARY KEY,
  available_qty INTEGER NOT NULL DEFAULT 0,
  reserved_qty INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func seedStock(t *testing.T, conn *gorm.DB, productID uuid.UUID, available, reserved int) {
	t.Helper()
	require.NoError(t, conn.Create(&models.Product{
		ID:         productID,
		SKU:        "SKU-1",
		Name:       "Steel Bottle",
		PricePaise: 49900,
	}).Error)
	require.NoError(t, conn.Create(&models.InventoryItem{
		ProductID:    productID,
		AvailableQty: available,
		ReservedQty:  reserved,
	}).Error)
}

func stockFor(t *testing.T, conn *gorm.DB, productID uuid.UUID) models.InventoryItem {
	t.Helper()
	var item models.InventoryItem
	require.NoError(t, conn.Where("product_id = ?", productID).First(&item).Error)
	return item
}

func TestReserveMovesAvailableIntoReserved(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)
	productID := uuid.New()
	seedStock(t, conn, productID, 10, 0)

	require.NoError(t, repo.Reserve(context.Background(), productID, 3))

	item := stockFor(t, conn, productID)
	assert.Equal(t, 10, item.AvailableQty)
	assert.Equal(t, 3, item.ReservedQty)
}

func TestReserveFailsWhenNotEnoughUnreservedStock(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)
	productID := uuid.New()
	seedStock(t, conn, productID, 5, 4)

	err := repo.Reserve(context.Background(), productID, 2)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.As(err).Code())

	item := stockFor(t, conn, productID)
	assert.Equal(t, 4, item.ReservedQty)
}

func TestCommitReservedDecrementsBothCounters(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)
	productID := uuid.New()
	seedStock(t, conn, productID, 10, 3)

	require.NoError(t, repo.CommitReserved(context.Background(), productID, 3))

	item := stockFor(t, conn, productID)
	assert.Equal(t, 7, item.AvailableQty)
	assert.Equal(t, 0, item.ReservedQty)
}

func TestCommitAvailableSkipsReservedCounter(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)
	productID := uuid.New()
	seedStock(t, conn, productID, 10, 2)

	require.NoError(t, repo.CommitAvailable(context.Background(), productID, 4))

	item := stockFor(t, conn, productID)
	assert.Equal(t, 6, item.AvailableQty)
	assert.Equal(t, 2, item.ReservedQty)
}

func TestReleaseReturnsReservationToPool(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)
	productID := uuid.New()
	seedStock(t, conn, productID, 10, 3)

	require.NoError(t, repo.Release(context.Background(), productID, 3))

	item := stockFor(t, conn, productID)
	assert.Equal(t, 10, item.AvailableQty)
	assert.Equal(t, 0, item.ReservedQty)
}

func TestFindProductNotFound(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)

	_, err := repo.FindProduct(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}
