package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/pagination"
)

// Repository is the persistence surface for orders, their timeline, and notes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	NextOrderNumber(ctx context.Context) (int64, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, query ListQuery) ([]models.Order, string, error)
	ListForExport(ctx context.Context, query ListQuery) ([]models.Order, error)
	SaveOrder(ctx context.Context, order *models.Order) error
	AppendTimeline(ctx context.Context, entry *models.OrderTimelineEntry) error
	MarkTimelineNotified(ctx context.Context, entryID uuid.UUID) error
	AddNote(ctx context.Context, note *models.OrderNote) error
	ListNotes(ctx context.Context, orderID uuid.UUID, includeHidden bool) ([]models.OrderNote, error)
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) NextOrderNumber(ctx context.Context) (int64, error) {
	var number int64
	err := r.db.WithContext(ctx).Raw("SELECT nextval('order_numbers')").Scan(&number).Error
	return number, err
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("performed_at ASC, created_at ASC")
		}).
		Preload("Notes").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Order, string, error) {
	limit := pagination.NormalizeLimit(query.Page.Limit)

	tx := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(limit + 1)
	tx = applyListFilters(tx, query)

	cursor, err := pagination.ParseCursor(query.Page.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		tx = tx.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var results []models.Order
	if err := tx.Find(&results).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(results) > limit {
		results = results[:limit]
		last := results[len(results)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return results, next, nil
}

func (r *repository) ListForExport(ctx context.Context, query ListQuery) ([]models.Order, error) {
	tx := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at ASC")
	tx = applyListFilters(tx, query)

	var results []models.Order
	if err := tx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func applyListFilters(tx *gorm.DB, query ListQuery) *gorm.DB {
	if query.UserID != nil {
		tx = tx.Where("user_id = ?", *query.UserID)
	}
	if query.Status != nil {
		tx = tx.Where("status = ?", *query.Status)
	}
	if query.PaymentStatus != nil {
		tx = tx.Where("payment_status = ?", *query.PaymentStatus)
	}
	return tx
}

func (r *repository) SaveOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(order).Error
}

func (r *repository) AppendTimeline(ctx context.Context, entry *models.OrderTimelineEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) MarkTimelineNotified(ctx context.Context, entryID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderTimelineEntry{}).
		Where("id = ?", entryID).
		Update("notification_sent", true).Error
}

func (r *repository) AddNote(ctx context.Context, note *models.OrderNote) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *repository) ListNotes(ctx context.Context, orderID uuid.UUID, includeHidden bool) ([]models.OrderNote, error) {
	tx := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC")
	if !includeHidden {
		tx = tx.Where("visible = ?", true)
	}

	var notes []models.OrderNote
	if err := tx.Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
