package repository

import (
	"context"

	"github.com/yukikurage/taskquest-api/internal/models"
	"gorm.io/gorm"
)

// GormStoreRepository is a GORM implementation of StoreRepository
type GormStoreRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a new StoreRepository
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &GormStoreRepository{db: db}
}

// ListActiveItems lists purchasable items, cheapest first
func (r *GormStoreRepository) ListActiveItems(ctx context.Context) ([]models.StoreItem, error) {
	var items []models.StoreItem
	if err := r.db.WithContext(ctx).Where("active = ?", true).
		Order("cost ASC, name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindActiveItem finds a purchasable item
func (r *GormStoreRepository) FindActiveItem(ctx context.Context, id string) (*models.StoreItem, error) {
	var item models.StoreItem
	if err := r.db.WithContext(ctx).Where("id = ? AND active = ?", id, true).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem creates a store item
func (r *GormStoreRepository) CreateItem(ctx context.Context, item *models.StoreItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Purchase debits the balance with a conditional update and records the
// purchase in the same transaction. It returns the new balance.
func (r *GormStoreRepository) Purchase(ctx context.Context, userID string, item *models.StoreItem) (*models.Purchase, int64, error) {
	purchase := &models.Purchase{
		UserID: userID,
		ItemID: item.ID,
		Cost:   item.Cost,
	}
	var balance int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		debit := tx.Model(&models.User{}).
			Where("id = ? AND balance >= ?", userID, item.Cost).
			Update("balance", gorm.Expr("balance - ?", item.Cost))
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		if err := tx.Omit("Item").Create(purchase).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).Select("balance").Where("id = ?", userID).Scan(&balance).Error
	})
	if err != nil {
		return nil, 0, err
	}

	purchase.Item = *item
	return purchase, balance, nil
}

// ListPurchases lists a user's purchases, newest first
func (r *GormStoreRepository) ListPurchases(ctx context.Context, userID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	if err := r.db.WithContext(ctx).Preload("Item", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}
