package repositories

import (
	"errors"

	"barterly/internal/models"

	"gorm.io/gorm"
)

var ErrSkillNotFound = errors.New("skill not found")

type SkillRepository interface {
	Create(db *gorm.DB, skill *models.Skill) error
	FindByID(db *gorm.DB, id string) (*models.Skill, error)
	Update(db *gorm.DB, skill *models.Skill) error
	Delete(db *gorm.DB, id string) error
	FindByUser(db *gorm.DB, userID string) ([]models.Skill, error)
	FindOfferedByCategory(db *gorm.DB, category string) ([]models.Skill, error)
	// FirstOfferedCategories maps each user to the category of their
	// earliest offered skill.
	FirstOfferedCategories(db *gorm.DB, userIDs []string) (map[string]string, error)
	CountByCategory(db *gorm.DB, skillType models.SkillType) (map[string]int64, error)
	FindCategoryNames(db *gorm.DB) ([]string, error)
}

type SkillRepositoryImpl struct{}

func NewSkillRepository() SkillRepository {
	return &SkillRepositoryImpl{}
}

func (r *SkillRepositoryImpl) Create(db *gorm.DB, skill *models.Skill) error {
	if skill.Tags == nil {
		skill.SetTags(nil)
	}
	return db.Create(skill).Error
}

func (r *SkillRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Skill, error) {
	var skill models.Skill
	if err := db.First(&skill, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSkillNotFound
		}
		return nil, err
	}
	return &skill, nil
}

func (r *SkillRepositoryImpl) Update(db *gorm.DB, skill *models.Skill) error {
	return db.Save(skill).Error
}

func (r *SkillRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Skill{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSkillNotFound
	}
	return nil
}

func (r *SkillRepositoryImpl) FindByUser(db *gorm.DB, userID string) ([]models.Skill, error) {
	var skills []models.Skill
	err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&skills).Error
	return skills, err
}

func (r *SkillRepositoryImpl) FindOfferedByCategory(db *gorm.DB, category string) ([]models.Skill, error) {
	var skills []models.Skill
	err := db.Where("category = ? AND skill_type = ?", category, models.SkillTypeOffered).
		Order("created_at ASC").
		Find(&skills).Error
	return skills, err
}

func (r *SkillRepositoryImpl) FirstOfferedCategories(db *gorm.DB, userIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var skills []models.Skill
	err := db.Select("user_id, category, created_at").
		Where("user_id IN ? AND skill_type = ?", userIDs, models.SkillTypeOffered).
		Order("created_at ASC").
		Find(&skills).Error
	if err != nil {
		return nil, err
	}
	for _, s := range skills {
		if _, seen := out[s.UserID]; !seen && s.Category != "" {
			out[s.UserID] = s.Category
		}
	}
	return out, nil
}

// CountByCategory counts skills per category; an empty skillType counts
// every skill.
func (r *SkillRepositoryImpl) CountByCategory(db *gorm.DB, skillType models.SkillType) (map[string]int64, error) {
	var rows []struct {
		Category string
		Count    int64
	}
	q := db.Model(&models.Skill{}).Select("category, COUNT(*) AS count").Where("category <> ''")
	if skillType != "" {
		q = q.Where("skill_type = ?", skillType)
	}
	if err := q.Group("category").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

func (r *SkillRepositoryImpl) FindCategoryNames(db *gorm.DB) ([]string, error) {
	var names []string
	err := db.Model(&models.SkillCategory{}).Order("name").Pluck("name", &names).Error
	return names, err
}
