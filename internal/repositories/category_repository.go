package repositories

import (
	"errors"

	"barterly/internal/models"

	"gorm.io/gorm"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository interface {
	FindAll(db *gorm.DB) ([]models.SkillCategory, error)
	FindByName(db *gorm.DB, name string) (*models.SkillCategory, error)
	Exists(db *gorm.DB, name string) (bool, error)
	Count(db *gorm.DB) (int64, error)
	// EnsureDefaults inserts the default categories that are missing.
	EnsureDefaults(db *gorm.DB) (int, error)
}

type CategoryRepositoryImpl struct{}

func NewCategoryRepository() CategoryRepository {
	return &CategoryRepositoryImpl{}
}

func (r *CategoryRepositoryImpl) FindAll(db *gorm.DB) ([]models.SkillCategory, error) {
	var categories []models.SkillCategory
	err := db.Order("name").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepositoryImpl) FindByName(db *gorm.DB, name string) (*models.SkillCategory, error) {
	var category models.SkillCategory
	if err := db.First(&category, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepositoryImpl) Exists(db *gorm.DB, name string) (bool, error) {
	var count int64
	err := db.Model(&models.SkillCategory{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *CategoryRepositoryImpl) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.SkillCategory{}).Count(&count).Error
	return count, err
}

func (r *CategoryRepositoryImpl) EnsureDefaults(db *gorm.DB) (int, error) {
	created := 0
	for _, def := range models.DefaultCategories {
		exists, err := r.Exists(db, def.Name)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		category := def
		if err := db.Create(&category).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
