package effects

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/db"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
)

// Repository manages the append-only ledger of applied side effects. A row per
// (order, effect type) with a unique constraint makes each effect at-most-once
// even when two requests race.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// Record appends the effect row. It returns false when the effect was
	// already applied for this order.
	Record(ctx context.Context, event *models.SideEffectEvent) (bool, error)
	Has(ctx context.Context, orderID uuid.UUID, effectType enums.SideEffectType) (bool, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.SideEffectEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a side-effect ledger repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Record(ctx context.Context, event *models.SideEffectEvent) (bool, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repository) Has(ctx context.Context, orderID uuid.UUID, effectType enums.SideEffectType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SideEffectEvent{}).
		Where("order_id = ? AND effect_type = ?", orderID, effectType).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.SideEffectEvent, error) {
	var events []models.SideEffectEvent
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
