package repositories

import (
	"time"

	"barterly/internal/models"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(db *gorm.DB, message *models.Message) error
	FindByBarter(db *gorm.DB, barterID string) ([]models.Message, error)
	// CountRecentIncoming counts messages in the user's accepted barters
	// written by someone else since the given time.
	CountRecentIncoming(db *gorm.DB, userID string, since time.Time) (int64, error)
}

type MessageRepositoryImpl struct{}

func NewMessageRepository() MessageRepository {
	return &MessageRepositoryImpl{}
}

func (r *MessageRepositoryImpl) Create(db *gorm.DB, message *models.Message) error {
	if message.MessageType == "" {
		message.MessageType = models.MessageTypeText
	}
	return db.Create(message).Error
}

func (r *MessageRepositoryImpl) FindByBarter(db *gorm.DB, barterID string) ([]models.Message, error) {
	var messages []models.Message
	err := db.Where("barter_id = ?", barterID).Order("created_at ASC").Find(&messages).Error
	return messages, err
}

func (r *MessageRepositoryImpl) CountRecentIncoming(db *gorm.DB, userID string, since time.Time) (int64, error) {
	accepted := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.BarterRequest{}).
		Select("id").
		Where("(requester_id = ? OR recipient_id = ?) AND status = ?", userID, userID, models.BarterStatusAccepted)

	var count int64
	err := db.Model(&models.Message{}).
		Where("barter_id IN (?)", accepted).
		Where("sender_id <> ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}
