package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/taskquest-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit("Tier").Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Tier").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOrCreateByEmail looks the email up first and inserts only when it is
// missing. A concurrent insert of the same email loses on the unique index;
// the loser re-reads and returns the winner's row.
func (r *GormUserRepository) FindOrCreateByEmail(ctx context.Context, user *models.User) (*models.User, bool, error) {
	existing, err := r.FindByEmail(ctx, user.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if err := r.Create(ctx, user); err != nil {
		existing, findErr := r.FindByEmail(ctx, user.Email)
		if findErr != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	return user, true, nil
}

// Update applies column updates to a user
func (r *GormUserRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ResetStreaks zeroes streaks of inactive users, or of everyone when
// staleBefore is nil
func (r *GormUserRepository) ResetStreaks(ctx context.Context, staleBefore *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("streak_days > 0")
	if staleBefore != nil {
		query = query.Where("(last_active_at IS NULL OR last_active_at < ?)", *staleBefore)
	}

	result := query.Update("streak_days", 0)
	return result.RowsAffected, result.Error
}
