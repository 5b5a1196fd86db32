package services

import (
	"strings"

	"barterly/internal/models"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"

	"gorm.io/gorm"
)

type SkillService interface {
	CreateSkill(db *gorm.DB, userID string, req *dto.CreateSkillRequest) (*dto.SkillResponse, error)
	UpdateSkill(db *gorm.DB, userID, skillID string, req *dto.UpdateSkillRequest) (*dto.SkillResponse, error)
	DeleteSkill(db *gorm.DB, userID, skillID string) error
	GetUserSkills(db *gorm.DB, userID string) ([]*dto.SkillResponse, error)
}

type skillService struct {
	skillRepo    repositories.SkillRepository
	categoryRepo repositories.CategoryRepository
}

func NewSkillService(skillRepo repositories.SkillRepository, categoryRepo repositories.CategoryRepository) SkillService {
	return &skillService{
		skillRepo:    skillRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *skillService) CreateSkill(db *gorm.DB, userID string, req *dto.CreateSkillRequest) (*dto.SkillResponse, error) {
	category := strings.TrimSpace(req.Category)
	if err := checkCategory(db, s.categoryRepo, category); err != nil {
		return nil, err
	}

	skill := &models.Skill{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Category:    category,
		Description: req.Description,
		SkillType:   models.SkillType(req.SkillType),
		SkillLevel:  skillLevelOrDefault(req.SkillLevel),
	}
	skill.SetTags(req.Tags)

	if err := s.skillRepo.Create(db, skill); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return toSkillResponse(skill), nil
}

func (s *skillService) UpdateSkill(db *gorm.DB, userID, skillID string, req *dto.UpdateSkillRequest) (*dto.SkillResponse, error) {
	skill, err := s.skillRepo.FindByID(db, skillID)
	if err != nil {
		return nil, handleSkillError(err)
	}
	if skill.UserID != userID {
		return nil, apperrors.NewForbiddenError("Only the owner can edit this skill")
	}

	if req.Title != nil {
		skill.Title = strings.TrimSpace(*req.Title)
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if err := checkCategory(db, s.categoryRepo, category); err != nil {
			return nil, err
		}
		skill.Category = category
	}
	if req.Description != nil {
		skill.Description = *req.Description
	}
	if req.SkillType != nil {
		skill.SkillType = models.SkillType(*req.SkillType)
	}
	if req.SkillLevel != nil {
		skill.SkillLevel = skillLevelOrDefault(*req.SkillLevel)
	}
	if req.Tags != nil {
		skill.SetTags(req.Tags)
	}

	if err := s.skillRepo.Update(db, skill); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return toSkillResponse(skill), nil
}

func (s *skillService) DeleteSkill(db *gorm.DB, userID, skillID string) error {
	skill, err := s.skillRepo.FindByID(db, skillID)
	if err != nil {
		return handleSkillError(err)
	}
	if skill.UserID != userID {
		return apperrors.NewForbiddenError("Only the owner can delete this skill")
	}
	if err := s.skillRepo.Delete(db, skillID); err != nil {
		return handleSkillError(err)
	}
	return nil
}

func (s *skillService) GetUserSkills(db *gorm.DB, userID string) ([]*dto.SkillResponse, error) {
	skills, err := s.skillRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	out := make([]*dto.SkillResponse, 0, len(skills))
	for i := range skills {
		out = append(out, toSkillResponse(&skills[i]))
	}
	return out, nil
}

// checkCategory accepts an empty category, and any category while the
// catalogue table is empty.
func checkCategory(db *gorm.DB, repo repositories.CategoryRepository, name string) error {
	if name == "" {
		return nil
	}
	count, err := repo.Count(db)
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	if count == 0 {
		return nil
	}
	ok, err := repo.Exists(db, name)
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	if !ok {
		return apperrors.ValidationError(map[string]string{"category": "unknown category " + name})
	}
	return nil
}

func skillLevelOrDefault(level string) models.SkillLevel {
	if level == "" {
		return models.SkillLevelIntermediate
	}
	return models.SkillLevel(level)
}
