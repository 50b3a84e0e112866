package paymentsettings

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	pkgerrors "github.com/swiftcartlabs/swiftcart-backend/pkg/errors"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
)

// singletonID is the fixed primary key of the one settings row.
const singletonID = 1

// UpdateInput replaces the mutable settings fields. Nil pointers leave the
// stored value untouched.
type UpdateInput struct {
	ActiveMode   *enums.PaymentMode
	UPIID        *string
	PayeeName    *string
	Instructions *string
}

// Repository reads and writes the singleton settings row.
type Repository interface {
	Get(ctx context.Context) (*models.PaymentSettings, error)
	Save(ctx context.Context, settings *models.PaymentSettings) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payment settings repository.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) Get(ctx context.Context) (*models.PaymentSettings, error) {
	var settings models.PaymentSettings
	err := r.db.WithContext(ctx).
		Where("id = ?", singletonID).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repository) Save(ctx context.Context, settings *models.PaymentSettings) error {
	settings.ID = singletonID
	return r.db.WithContext(ctx).Save(settings).Error
}

// Service exposes the singleton payment settings: which customer-facing
// payment path is advertised and the manual-UPI display data. The setting
// never gates server-side enforcement of the other paths.
type Service interface {
	Get(ctx context.Context) (*models.PaymentSettings, error)
	Update(ctx context.Context, input UpdateInput) (*models.PaymentSettings, error)
}

type service struct {
	repo Repository
}

// NewService builds the payment settings service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment settings repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context) (*models.PaymentSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment settings not seeded")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment settings")
	}
	return settings, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.PaymentSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.ActiveMode != nil {
		if !input.ActiveMode.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("unknown payment mode %q", *input.ActiveMode))
		}
		settings.ActiveMode = *input.ActiveMode
	}
	if input.UPIID != nil {
		settings.UPIID = *input.UPIID
	}
	if input.PayeeName != nil {
		settings.PayeeName = *input.PayeeName
	}
	if input.Instructions != nil {
		settings.Instructions = *input.Instructions
	}

	if settings.ActiveMode == enums.PaymentModeManualUPI && settings.UPIID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "manual upi mode requires a upi id")
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save payment settings")
	}
	return settings, nil
}
