package notifications

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/coexhq/coex-backend/pkg/db/models"
	"github.com/coexhq/coex-backend/pkg/enums"
)

// Repository exposes persistence helpers for notifications.
type Repository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CountRecentDuplicates(ctx context.Context, key DuplicateKey, since time.Time) (int64, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uint, now time.Time) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uint, now time.Time) (int64, error)
	ClearAll(ctx context.Context, userID uint) (int64, error)
}

// DuplicateKey identifies notifications considered identical for dedup.
type DuplicateKey struct {
	UserID  uint
	Title   string
	Message string
	Type    enums.NotificationType
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) CountRecentDuplicates(ctx context.Context, key DuplicateKey, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND title = ? AND message = ? AND type = ? AND created_at > ?",
			key.UserID, key.Title, key.Message, key.Type, since).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *repositoryImpl) MarkRead(ctx context.Context, userID, notificationID uint, now time.Time) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error
	if err != nil {
		return nil, err
	}

	notification.Read = true
	notification.ReadAt = &now
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", notification.ID).
		Updates(map[string]any{"read": true, "read_at": now}).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, userID uint, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]any{"read": true, "read_at": now})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) ClearAll(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
