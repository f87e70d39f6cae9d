package repository

import (
	"context"

	"fritter/internal/models"
	"fritter/internal/observability"

	"gorm.io/gorm"
)

// PaymentProfileRepository defines persistence operations for FritterPay records.
type PaymentProfileRepository interface {
	Create(ctx context.Context, profile *models.PaymentProfile) error
	GetByID(ctx context.Context, id uint) (*models.PaymentProfile, error)
	List(ctx context.Context) ([]*models.PaymentProfile, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.PaymentProfile, error)
	FirstByUser(ctx context.Context, userID uint) (*models.PaymentProfile, error)
	Update(ctx context.Context, profile *models.PaymentProfile) error
	Delete(ctx context.Context, id uint) error
}

type paymentProfileRepository struct {
	db *gorm.DB
}

// NewPaymentProfileRepository creates a payment profile repository.
func NewPaymentProfileRepository(db *gorm.DB) PaymentProfileRepository {
	return &paymentProfileRepository{db: db}
}

func (r *paymentProfileRepository) Create(ctx context.Context, profile *models.PaymentProfile) error {
	defer observability.TrackQuery("create", "payment_profiles")()
	if err := r.db.WithContext(ctx).Omit("User").Create(profile).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *paymentProfileRepository) GetByID(ctx context.Context, id uint) (*models.PaymentProfile, error) {
	defer observability.TrackQuery("get", "payment_profiles")()
	var profile models.PaymentProfile
	if err := r.db.WithContext(ctx).Preload("User").First(&profile, id).Error; err != nil {
		return nil, wrapErr(err, "FritterPay", id)
	}
	return &profile, nil
}

func (r *paymentProfileRepository) List(ctx context.Context) ([]*models.PaymentProfile, error) {
	defer observability.TrackQuery("list", "payment_profiles")()
	var profiles []*models.PaymentProfile
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Order("created_at ASC").Order("id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

// ListByUser returns the user's profiles, oldest first.
func (r *paymentProfileRepository) ListByUser(ctx context.Context, userID uint) ([]*models.PaymentProfile, error) {
	defer observability.TrackQuery("list_by_user", "payment_profiles")()
	var profiles []*models.PaymentProfile
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

// FirstByUser returns the user's oldest profile, or nil if they have none.
func (r *paymentProfileRepository) FirstByUser(ctx context.Context, userID uint) (*models.PaymentProfile, error) {
	defer observability.TrackQuery("first_by_user", "payment_profiles")()
	var profiles []*models.PaymentProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Limit(1).
		Find(&profiles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return profiles[0], nil
}

func (r *paymentProfileRepository) Update(ctx context.Context, profile *models.PaymentProfile) error {
	defer observability.TrackQuery("update", "payment_profiles")()
	res := r.db.WithContext(ctx).Model(&models.PaymentProfile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]any{
			"payment_type":     profile.PaymentType,
			"payment_username": profile.PaymentUsername,
			"payment_link":     profile.PaymentLink,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("FritterPay", profile.ID)
	}
	return nil
}

func (r *paymentProfileRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "payment_profiles")()
	res := r.db.WithContext(ctx).Delete(&models.PaymentProfile{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("FritterPay", id)
	}
	return nil
}
