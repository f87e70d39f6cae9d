package repository

import (
	"context"
	"errors"
	"fmt"

	"fritter/internal/cache"
	"fritter/internal/models"
	"fritter/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", "users")()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError(fmt.Sprintf("An account with username %s already exists.", user.Username))
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("get", "users")()
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return wrapErr(readDB(r.db).WithContext(ctx).First(&user, id).Error, "User", id)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer observability.TrackQuery("get_by_username", "users")()
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.AppError{
			Code:    models.CodeNotFound,
			Message: fmt.Sprintf("A user with username %s does not exist.", username),
		}
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// Delete removes the account together with its freets, their listings and
// its payment profiles. Listings the user bought keep the buyer snapshot.
func (r *userRepository) Delete(ctx context.Context, id uint) (err error) {
	defer observability.TrackQuery("delete", "users")()
	ctx, span := observability.StartRepositorySpan(ctx, "Delete", "users")
	defer func() { observability.EndSpan(span, err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authored := tx.Model(&models.Freet{}).Select("id").Where("author_id = ?", id)
		if err := tx.Where("freet_id IN (?)", authored).Delete(&models.Listing{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Freet{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.PaymentProfile{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", id)
		}
		return nil
	})
	if err != nil {
		return wrapErr(err, "User", id)
	}

	cache.InvalidateUser(ctx, id)
	cache.InvalidateFreets(ctx, id)
	return nil
}
