package repositories

import (
	"context"
	"fmt"

	"atlasbank/internal/models"

	"gorm.io/gorm"
)

// ActivityRepository appends and reads audit-trail entries. Entries are
// never updated or deleted.
type ActivityRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	ListByAccount(ctx context.Context, accountID uint) ([]models.ActivityLog, error)
	ListUserLevel(ctx context.Context, userID uint) ([]models.ActivityLog, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

func (r *activityRepository) ListByAccount(ctx context.Context, accountID uint) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list account activity: %w", err)
	}
	return entries, nil
}

func (r *activityRepository) ListUserLevel(ctx context.Context, userID uint) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND account_id IS NULL", userID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user activity: %w", err)
	}
	return entries, nil
}
