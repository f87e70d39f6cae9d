package repository

import (
	"context"
	"time"

	"fritter/internal/cache"
	"fritter/internal/models"
	"fritter/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FreetRepository defines persistence operations for freets and their listings.
type FreetRepository interface {
	Create(ctx context.Context, freet *models.Freet) error
	GetByID(ctx context.Context, id uint) (*models.Freet, error)
	List(ctx context.Context) ([]*models.Freet, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]*models.Freet, error)
	ListMerchant(ctx context.Context) ([]*models.Freet, error)
	ListExpiredBetween(ctx context.Context, after, upTo time.Time) ([]*models.Freet, error)
	Update(ctx context.Context, freet *models.Freet) error
	UpdateWithListing(ctx context.Context, freet *models.Freet, from models.ListingStatus) error
	Delete(ctx context.Context, freet *models.Freet) error
}

type freetRepository struct {
	db      *gorm.DB
	listTTL time.Duration
}

// NewFreetRepository creates a freet repository. listTTL bounds how long
// cached freet lists live; zero selects cache.ListTTL.
func NewFreetRepository(db *gorm.DB, listTTL time.Duration) FreetRepository {
	if listTTL <= 0 {
		listTTL = cache.ListTTL
	}
	return &freetRepository{db: db, listTTL: listTTL}
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Listing")
}

func newestModifiedFirst(db *gorm.DB) *gorm.DB {
	return db.Order("modified_at DESC").Order("id DESC")
}

func (r *freetRepository) Create(ctx context.Context, freet *models.Freet) (err error) {
	defer observability.TrackQuery("create", "freets")()
	ctx, span := observability.StartRepositorySpan(ctx, "Create", "freets")
	defer func() { observability.EndSpan(span, err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(freet).Error; err != nil {
			return err
		}
		if freet.Listing != nil {
			freet.Listing.FreetID = freet.ID
			if err := tx.Create(freet.Listing).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateFreets(ctx, freet.AuthorID)
	return nil
}

func (r *freetRepository) GetByID(ctx context.Context, id uint) (*models.Freet, error) {
	defer observability.TrackQuery("get", "freets")()

	var freet models.Freet
	// Reads that precede a write go to the primary.
	if err := withDetails(r.db.WithContext(ctx)).First(&freet, id).Error; err != nil {
		return nil, wrapErr(err, "Freet", id)
	}
	return &freet, nil
}

func (r *freetRepository) cachedList(ctx context.Context, key string, scope func(*gorm.DB) *gorm.DB) ([]*models.Freet, error) {
	var freets []*models.Freet
	err := cache.Aside(ctx, key, &freets, r.listTTL, func() error {
		q := newestModifiedFirst(withDetails(readDB(r.db).WithContext(ctx)))
		return scope(q).Find(&freets).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return freets, nil
}

func (r *freetRepository) List(ctx context.Context) ([]*models.Freet, error) {
	defer observability.TrackQuery("list", "freets")()
	return r.cachedList(ctx, cache.FreetListKey, func(db *gorm.DB) *gorm.DB { return db })
}

func (r *freetRepository) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Freet, error) {
	defer observability.TrackQuery("list_by_author", "freets")()
	return r.cachedList(ctx, cache.AuthorFreetsKey(authorID), func(db *gorm.DB) *gorm.DB {
		return db.Where("author_id = ?", authorID)
	})
}

func (r *freetRepository) ListMerchant(ctx context.Context) ([]*models.Freet, error) {
	defer observability.TrackQuery("list_merchant", "freets")()
	return r.cachedList(ctx, cache.MerchantListKey, func(db *gorm.DB) *gorm.DB {
		return db.Where("freet_type = ?", models.FreetTypeMerchant)
	})
}

// ListExpiredBetween returns freets whose expiration lies in (after, upTo].
func (r *freetRepository) ListExpiredBetween(ctx context.Context, after, upTo time.Time) ([]*models.Freet, error) {
	defer observability.TrackQuery("list_expired", "freets")()

	var freets []*models.Freet
	err := withDetails(readDB(r.db).WithContext(ctx)).
		Where("expiration > ? AND expiration <= ?", after, upTo).
		Order("expiration ASC").
		Find(&freets).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return freets, nil
}

func freetColumns(freet *models.Freet) map[string]any {
	return map[string]any{
		"content":     freet.Content,
		"freet_type":  freet.FreetType,
		"edited":      freet.Edited,
		"expiration":  freet.Expiration,
		"modified_at": freet.ModifiedAt,
	}
}

func updateFreetRow(tx *gorm.DB, freet *models.Freet) error {
	res := tx.Model(&models.Freet{}).Where("id = ?", freet.ID).Updates(freetColumns(freet))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Freet", freet.ID)
	}
	return nil
}

// Update persists the mutable freet columns.
func (r *freetRepository) Update(ctx context.Context, freet *models.Freet) (err error) {
	defer observability.TrackQuery("update", "freets")()
	ctx, span := observability.StartRepositorySpan(ctx, "Update", "freets")
	defer func() { observability.EndSpan(span, err) }()

	if err = updateFreetRow(r.db.WithContext(ctx), freet); err != nil {
		return wrapErr(err, "Freet", freet.ID)
	}
	cache.InvalidateFreets(ctx, freet.AuthorID)
	return nil
}

// UpdateWithListing persists the listing and its parent's columns in one
// transaction. The listing row is only written while it still has status
// from, so concurrent purchases cannot both succeed.
func (r *freetRepository) UpdateWithListing(ctx context.Context, freet *models.Freet, from models.ListingStatus) (err error) {
	defer observability.TrackQuery("update_with_listing", "listings")()
	ctx, span := observability.StartRepositorySpan(ctx, "UpdateWithListing", "listings")
	defer func() { observability.EndSpan(span, err) }()

	listing := freet.Listing
	if listing == nil {
		return models.NewNotFoundError("Listing for freet", freet.ID)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Listing{}).
			Where("id = ? AND status = ?", listing.ID, from).
			Updates(map[string]any{
				"status":         listing.Status,
				"name":           listing.Name,
				"price":          listing.Price,
				"location":       listing.Location,
				"buyer_id":       listing.BuyerID,
				"buyer_username": listing.BuyerUsername,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewPreconditionError("Listing was changed by another request.")
		}
		return updateFreetRow(tx, freet)
	})
	if err != nil {
		return wrapErr(err, "Freet", freet.ID)
	}

	cache.InvalidateFreets(ctx, freet.AuthorID)
	return nil
}

// Delete removes the freet and its listing together.
func (r *freetRepository) Delete(ctx context.Context, freet *models.Freet) (err error) {
	defer observability.TrackQuery("delete", "freets")()
	ctx, span := observability.StartRepositorySpan(ctx, "Delete", "freets")
	defer func() { observability.EndSpan(span, err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("freet_id = ?", freet.ID).Delete(&models.Listing{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Freet{}, freet.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Freet", freet.ID)
		}
		return nil
	})
	if err != nil {
		return wrapErr(err, "Freet", freet.ID)
	}

	cache.InvalidateFreets(ctx, freet.AuthorID)
	return nil
}
