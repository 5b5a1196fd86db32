package repositories

import (
	"barterly/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository interface {
	// Add is idempotent on the (owner, target) pair.
	Add(db *gorm.DB, userID, targetUserID string) error
	Remove(db *gorm.DB, userID, targetUserID string) error
	Exists(db *gorm.DB, userID, targetUserID string) (bool, error)
	FindTargetIDs(db *gorm.DB, userID string) ([]string, error)
}

type FavoriteRepositoryImpl struct{}

func NewFavoriteRepository() FavoriteRepository {
	return &FavoriteRepositoryImpl{}
}

func (r *FavoriteRepositoryImpl) Add(db *gorm.DB, userID, targetUserID string) error {
	fav := &models.Favorite{UserID: userID, FavoritedProfileID: targetUserID}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(fav).Error
}

func (r *FavoriteRepositoryImpl) Remove(db *gorm.DB, userID, targetUserID string) error {
	return db.Where("user_id = ? AND favorited_profile_id = ?", userID, targetUserID).
		Delete(&models.Favorite{}).Error
}

func (r *FavoriteRepositoryImpl) Exists(db *gorm.DB, userID, targetUserID string) (bool, error) {
	var count int64
	err := db.Model(&models.Favorite{}).
		Where("user_id = ? AND favorited_profile_id = ?", userID, targetUserID).
		Count(&count).Error
	return count > 0, err
}

func (r *FavoriteRepositoryImpl) FindTargetIDs(db *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("favorited_profile_id", &ids).Error
	return ids, err
}
