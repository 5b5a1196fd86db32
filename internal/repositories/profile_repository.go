package repositories

import (
	"context"
	"errors"

	"barterly/internal/models"

	"gorm.io/gorm"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

type ProfileRepository interface {
	Create(db *gorm.DB, profile *models.Profile) error
	FindByUserID(db *gorm.DB, userID string) (*models.Profile, error)
	FindByUserIDs(db *gorm.DB, userIDs []string) (map[string]*models.Profile, error)
	Update(db *gorm.DB, profile *models.Profile) error
	SetBanned(db *gorm.DB, userID string, banned bool) error
	IsBanned(ctx context.Context, db *gorm.DB, userID string) (bool, error)

	// Listings
	FindWithOfferedSkill(db *gorm.DB) ([]models.Profile, error)
	FindMatchCandidates(db *gorm.DB, excludeUserID string) ([]models.Profile, error)
	FindWithLocation(db *gorm.DB) ([]models.Profile, error)
	FindAll(db *gorm.DB) ([]models.Profile, error)

	// Stats
	CountAll(db *gorm.DB) (int64, error)
	CountBanned(db *gorm.DB) (int64, error)
}

type ProfileRepositoryImpl struct{}

func NewProfileRepository() ProfileRepository {
	return &ProfileRepositoryImpl{}
}

func (r *ProfileRepositoryImpl) Create(db *gorm.DB, profile *models.Profile) error {
	if profile.Languages == nil {
		profile.SetLanguages(nil)
	}
	if profile.ProofLinks == nil {
		profile.SetProofLinks(nil)
	}
	return db.Create(profile).Error
}

func (r *ProfileRepositoryImpl) FindByUserID(db *gorm.DB, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := db.First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) FindByUserIDs(db *gorm.DB, userIDs []string) (map[string]*models.Profile, error) {
	out := make(map[string]*models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var profiles []models.Profile
	if err := db.Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for i := range profiles {
		out[profiles[i].UserID] = &profiles[i]
	}
	return out, nil
}

// Update saves every column; callers load, mutate, then save.
func (r *ProfileRepositoryImpl) Update(db *gorm.DB, profile *models.Profile) error {
	return db.Save(profile).Error
}

func (r *ProfileRepositoryImpl) SetBanned(db *gorm.DB, userID string, banned bool) error {
	result := db.Model(&models.Profile{}).Where("user_id = ?", userID).Update("is_banned", banned)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// IsBanned treats a missing profile as not banned.
func (r *ProfileRepositoryImpl) IsBanned(ctx context.Context, db *gorm.DB, userID string) (bool, error) {
	var profiles []models.Profile
	err := db.WithContext(ctx).Select("is_banned").Where("user_id = ?", userID).Limit(1).Find(&profiles).Error
	if err != nil {
		return false, err
	}
	return len(profiles) > 0 && profiles[0].IsBanned, nil
}

func (r *ProfileRepositoryImpl) FindWithOfferedSkill(db *gorm.DB) ([]models.Profile, error) {
	var profiles []models.Profile
	err := db.Where("skill_offered <> '' AND is_banned = ?", false).
		Order("created_at DESC").
		Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepositoryImpl) FindMatchCandidates(db *gorm.DB, excludeUserID string) ([]models.Profile, error) {
	var profiles []models.Profile
	err := db.Where("user_id <> ? AND is_banned = ?", excludeUserID, false).
		Where("skill_offered <> '' AND skill_wanted <> ''").
		Order("created_at ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepositoryImpl) FindWithLocation(db *gorm.DB) ([]models.Profile, error) {
	var profiles []models.Profile
	err := db.Where("location <> '' AND is_banned = ?", false).
		Order("created_at ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepositoryImpl) FindAll(db *gorm.DB) ([]models.Profile, error) {
	var profiles []models.Profile
	err := db.Order("created_at ASC").Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepositoryImpl) CountAll(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.Profile{}).Count(&count).Error
	return count, err
}

func (r *ProfileRepositoryImpl) CountBanned(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.Profile{}).Where("is_banned = ?", true).Count(&count).Error
	return count, err
}
