package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/swiftcartlabs/swiftcart-backend/pkg/errors"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
)

// Repository mutates per-product stock counters. All adjustments are guarded
// single-statement updates so concurrent orders can never drive a counter
// negative.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	// Reserve moves qty units from available into reserved.
	Reserve(ctx context.Context, productID uuid.UUID, qty int) error
	// CommitReserved burns a previous reservation: reserved and available both
	// drop by qty.
	CommitReserved(ctx context.Context, productID uuid.UUID, qty int) error
	// CommitAvailable decrements available stock directly, for orders shipped
	// without a prior reservation.
	CommitAvailable(ctx context.Context, productID uuid.UUID, qty int) error
	// Release undoes a reservation without touching available stock.
	Release(ctx context.Context, productID uuid.UUID, qty int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load product")
	}
	return &product, nil
}

func (r *repository) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("product_id = ? AND available_qty - reserved_qty >= ?", productID, qty).
		Update("reserved_qty", gorm.Expr("reserved_qty + ?", qty))
	return checkAdjustment(result, productID, "reserve")
}

func (r *repository) CommitReserved(ctx context.Context, productID uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("product_id = ? AND reserved_qty >= ? AND available_qty >= ?", productID, qty, qty).
		Updates(map[string]any{
			"reserved_qty":  gorm.Expr("reserved_qty - ?", qty),
			"available_qty": gorm.Expr("available_qty - ?", qty),
		})
	return checkAdjustment(result, productID, "commit reserved")
}

func (r *repository) CommitAvailable(ctx context.Context, productID uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("product_id = ? AND available_qty >= ?", productID, qty).
		Update("available_qty", gorm.Expr("available_qty - ?", qty))
	return checkAdjustment(result, productID, "commit available")
}

func (r *repository) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("product_id = ? AND reserved_qty >= ?", productID, qty).
		Update("reserved_qty", gorm.Expr("reserved_qty - ?", qty))
	return checkAdjustment(result, productID, "release")
}

func checkAdjustment(result *gorm.DB, productID uuid.UUID, op string) error {
	if result.Error != nil {
		return apperrors.Wrap(apperrors.CodeInternal, result.Error, fmt.Sprintf("failed to %s stock", op))
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeConflict, fmt.Sprintf("insufficient stock to %s for product %s", op, productID))
	}
	return nil
}
