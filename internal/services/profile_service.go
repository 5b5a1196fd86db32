package services

import (
	"strings"

	"barterly/internal/models"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"

	"gorm.io/gorm"
)

type ProfileService interface {
	GetProfile(db *gorm.DB, userID string) (*dto.ProfileResponse, error)
	UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	CompleteOnboarding(db *gorm.DB, userID string, req *dto.OnboardingRequest) (*dto.ProfileResponse, error)
}

type ProfileServiceImpl struct {
	profileRepo  repositories.ProfileRepository
	skillRepo    repositories.SkillRepository
	categoryRepo repositories.CategoryRepository
	ratingRepo   repositories.RatingRepository
}

func NewProfileService(
	profileRepo repositories.ProfileRepository,
	skillRepo repositories.SkillRepository,
	categoryRepo repositories.CategoryRepository,
	ratingRepo repositories.RatingRepository,
) ProfileService {
	return &ProfileServiceImpl{
		profileRepo:  profileRepo,
		skillRepo:    skillRepo,
		categoryRepo: categoryRepo,
		ratingRepo:   ratingRepo,
	}
}

func (s *ProfileServiceImpl) GetProfile(db *gorm.DB, userID string) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, handleProfileError(err)
	}
	summary, err := s.ratingRepo.Summary(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return toProfileResponse(profile, summary), nil
}

func (s *ProfileServiceImpl) UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, handleProfileError(err)
	}

	if req.FullName != nil {
		profile.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Location != nil {
		profile.Location = strings.TrimSpace(*req.Location)
	}
	if req.SkillOffered != nil {
		profile.SkillOffered = strings.TrimSpace(*req.SkillOffered)
	}
	if req.SkillWanted != nil {
		profile.SkillWanted = strings.TrimSpace(*req.SkillWanted)
	}
	if req.Languages != nil {
		profile.SetLanguages(trimAll(req.Languages))
	}
	if req.ProofLinks != nil {
		links := make([]models.ProofLink, 0, len(*req.ProofLinks))
		for _, l := range *req.ProofLinks {
			links = append(links, models.ProofLink{Title: strings.TrimSpace(l.Title), URL: l.URL})
		}
		profile.SetProofLinks(links)
	}
	if req.EmailNotifications != nil {
		profile.EmailNotifications = *req.EmailNotifications
	}

	if err := s.profileRepo.Update(db, profile); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return s.GetProfile(db, userID)
}

// CompleteOnboarding stores the first skills and mirrors the first offered
// and wanted titles into the profile's free-text fields.
func (s *ProfileServiceImpl) CompleteOnboarding(db *gorm.DB, userID string, req *dto.OnboardingRequest) (*dto.ProfileResponse, error) {
	if len(req.OfferedSkills) == 0 {
		return nil, apperrors.ValidationError(map[string]string{"offered_skills": "at least one offered skill is required"})
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	profile, err := s.profileRepo.FindByUserID(tx, userID)
	if err != nil {
		return nil, handleProfileError(err)
	}

	create := func(in dto.OnboardingSkill, skillType models.SkillType) error {
		category := strings.TrimSpace(in.Category)
		if err := checkCategory(tx, s.categoryRepo, category); err != nil {
			return err
		}
		skill := &models.Skill{
			UserID:      userID,
			Title:       strings.TrimSpace(in.Title),
			Category:    category,
			Description: in.Description,
			SkillType:   skillType,
			SkillLevel:  skillLevelOrDefault(in.SkillLevel),
		}
		skill.SetTags(in.Tags)
		if err := s.skillRepo.Create(tx, skill); err != nil {
			return apperrors.DatabaseError(err)
		}
		return nil
	}

	for _, in := range req.OfferedSkills {
		if err := create(in, models.SkillTypeOffered); err != nil {
			return nil, err
		}
	}
	for _, in := range req.WantedSkills {
		if err := create(in, models.SkillTypeWanted); err != nil {
			return nil, err
		}
	}

	profile.FullName = strings.TrimSpace(req.FullName)
	profile.Bio = req.Bio
	profile.Location = strings.TrimSpace(req.Location)
	profile.SetLanguages(trimAll(req.Languages))
	profile.SkillOffered = strings.TrimSpace(req.OfferedSkills[0].Title)
	if len(req.WantedSkills) > 0 {
		profile.SkillWanted = strings.TrimSpace(req.WantedSkills[0].Title)
	}
	profile.OnboardingCompleted = true

	if err := s.profileRepo.Update(tx, profile); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return s.GetProfile(db, userID)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
