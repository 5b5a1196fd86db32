package repositories

import (
	"errors"
	"time"

	"barterly/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(db *gorm.DB, notification *models.Notification) error
	FindUserNotifications(db *gorm.DB, userID string, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkAsRead(db *gorm.DB, userID, notificationID string) error
	MarkAllAsRead(db *gorm.DB, userID string) (int64, error)
	GetUnreadCount(db *gorm.DB, userID string) (int64, error)
	DeleteReadOlderThan(db *gorm.DB, before time.Time) (int64, error)
}

type NotificationRepositoryImpl struct{}

func NewNotificationRepository() NotificationRepository {
	return &NotificationRepositoryImpl{}
}

func (r *NotificationRepositoryImpl) Create(db *gorm.DB, notification *models.Notification) error {
	return db.Create(notification).Error
}

func (r *NotificationRepositoryImpl) FindUserNotifications(db *gorm.DB, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	q := db.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var notifications []models.Notification
	err := q.Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

// MarkAsRead only touches rows owned by userID.
func (r *NotificationRepositoryImpl) MarkAsRead(db *gorm.DB, userID, notificationID string) error {
	result := db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.Notification{}).Where("id = ? AND user_id = ?", notificationID, userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotificationNotFound
		}
	}
	return nil
}

func (r *NotificationRepositoryImpl) MarkAllAsRead(db *gorm.DB, userID string) (int64, error) {
	result := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *NotificationRepositoryImpl) GetUnreadCount(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepositoryImpl) DeleteReadOlderThan(db *gorm.DB, before time.Time) (int64, error) {
	result := db.Where("is_read = ? AND created_at < ?", true, before).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

type PushSubscriptionRepository interface {
	// Upsert binds an endpoint to a user, moving it if another user had it.
	Upsert(db *gorm.DB, sub *models.PushSubscription) error
	DeleteByEndpoint(db *gorm.DB, userID, endpoint string) error
	DeleteEndpoint(db *gorm.DB, endpoint string) error
	FindByUser(db *gorm.DB, userID string) ([]models.PushSubscription, error)
}

type PushSubscriptionRepositoryImpl struct{}

func NewPushSubscriptionRepository() PushSubscriptionRepository {
	return &PushSubscriptionRepositoryImpl{}
}

func (r *PushSubscriptionRepositoryImpl) Upsert(db *gorm.DB, sub *models.PushSubscription) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "updated_at"}),
	}).Create(sub).Error
}

func (r *PushSubscriptionRepositoryImpl) DeleteByEndpoint(db *gorm.DB, userID, endpoint string) error {
	return db.Where("user_id = ? AND endpoint = ?", userID, endpoint).Delete(&models.PushSubscription{}).Error
}

func (r *PushSubscriptionRepositoryImpl) DeleteEndpoint(db *gorm.DB, endpoint string) error {
	return db.Where("endpoint = ?", endpoint).Delete(&models.PushSubscription{}).Error
}

func (r *PushSubscriptionRepositoryImpl) FindByUser(db *gorm.DB, userID string) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := db.Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}
