package notif

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"artfolio/internal/dbmysql"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *dbmysql.Notification) error
	ByRecipient(ctx context.Context, recipientID uint64, limit, offset int) ([]*dbmysql.Notification, error)
	MarkAsRead(ctx context.Context, notificationID, recipientID uint64) error
	MarkAllAsRead(ctx context.Context, recipientID uint64) error
	UnreadCount(ctx context.Context, recipientID uint64) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *dbmysql.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ByRecipient(ctx context.Context, recipientID uint64, limit, offset int) ([]*dbmysql.Notification, error) {
	var notifications []*dbmysql.Notification

	query := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, notificationID, recipientID uint64) error {
	result := r.db.WithContext(ctx).Model(&dbmysql.Notification{}).
		Where("notification_id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint64) error {
	err := r.db.WithContext(ctx).Model(&dbmysql.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
