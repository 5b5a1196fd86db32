package repositories

import (
	"errors"
	"time"

	"barterly/internal/models"

	"gorm.io/gorm"
)

var ErrBarterNotFound = errors.New("barter request not found")

// BarterFilter narrows FindForUser. Role is "incoming", "outgoing" or empty
// for both directions.
type BarterFilter struct {
	Role   string
	Status models.BarterStatus
}

type BarterRepository interface {
	Create(db *gorm.DB, barter *models.BarterRequest) error
	FindByID(db *gorm.DB, id string) (*models.BarterRequest, error)
	FindByIDWithProfiles(db *gorm.DB, id string) (*models.BarterRequest, error)
	FindForUser(db *gorm.DB, userID string, filter BarterFilter) ([]models.BarterRequest, error)
	FindCompletedForUser(db *gorm.DB, userID string) ([]models.BarterRequest, error)
	// UpdateStatus changes the status only when the row is still in
	// fromStatus; it returns false when nothing matched.
	UpdateStatus(db *gorm.DB, id string, from, to models.BarterStatus, completedAt *time.Time) (bool, error)
	Delete(db *gorm.DB, id string) error

	HasCompletedBetween(db *gorm.DB, barterID, userA, userB string) (bool, error)
	CountPendingForRecipient(db *gorm.DB, userID string) (int64, error)
	CountAll(db *gorm.DB) (int64, error)
	CountByStatus(db *gorm.DB, status models.BarterStatus) (int64, error)
}

type BarterRepositoryImpl struct{}

func NewBarterRepository() BarterRepository {
	return &BarterRepositoryImpl{}
}

func (r *BarterRepositoryImpl) Create(db *gorm.DB, barter *models.BarterRequest) error {
	if barter.Status == "" {
		barter.Status = models.BarterStatusPending
	}
	return db.Create(barter).Error
}

func (r *BarterRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.BarterRequest, error) {
	var barter models.BarterRequest
	if err := db.First(&barter, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBarterNotFound
		}
		return nil, err
	}
	return &barter, nil
}

func (r *BarterRepositoryImpl) FindByIDWithProfiles(db *gorm.DB, id string) (*models.BarterRequest, error) {
	var barter models.BarterRequest
	err := db.Preload("Requester").Preload("Recipient").First(&barter, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBarterNotFound
		}
		return nil, err
	}
	return &barter, nil
}

func (r *BarterRepositoryImpl) FindForUser(db *gorm.DB, userID string, filter BarterFilter) ([]models.BarterRequest, error) {
	q := db.Preload("Requester").Preload("Recipient")

	switch filter.Role {
	case "incoming":
		q = q.Where("recipient_id = ?", userID)
	case "outgoing":
		q = q.Where("requester_id = ?", userID)
	default:
		q = q.Where("requester_id = ? OR recipient_id = ?", userID, userID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var barters []models.BarterRequest
	err := q.Order("created_at DESC").Find(&barters).Error
	return barters, err
}

func (r *BarterRepositoryImpl) FindCompletedForUser(db *gorm.DB, userID string) ([]models.BarterRequest, error) {
	var barters []models.BarterRequest
	err := db.Preload("Requester").Preload("Recipient").
		Where("(requester_id = ? OR recipient_id = ?) AND status = ?", userID, userID, models.BarterStatusCompleted).
		Order("updated_at DESC").
		Find(&barters).Error
	return barters, err
}

func (r *BarterRepositoryImpl) UpdateStatus(db *gorm.DB, id string, from, to models.BarterStatus, completedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	result := db.Model(&models.BarterRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *BarterRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.BarterRequest{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBarterNotFound
	}
	return nil
}

func (r *BarterRepositoryImpl) HasCompletedBetween(db *gorm.DB, barterID, userA, userB string) (bool, error) {
	var count int64
	err := db.Model(&models.BarterRequest{}).
		Where("id = ? AND status = ?", barterID, models.BarterStatusCompleted).
		Where("(requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?)", userA, userB, userB, userA).
		Count(&count).Error
	return count > 0, err
}

func (r *BarterRepositoryImpl) CountPendingForRecipient(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.BarterRequest{}).
		Where("recipient_id = ? AND status = ?", userID, models.BarterStatusPending).
		Count(&count).Error
	return count, err
}

func (r *BarterRepositoryImpl) CountAll(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.BarterRequest{}).Count(&count).Error
	return count, err
}

func (r *BarterRepositoryImpl) CountByStatus(db *gorm.DB, status models.BarterStatus) (int64, error) {
	var count int64
	err := db.Model(&models.BarterRequest{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
