package services

import (
	"errors"
	"strings"

	"barterly/internal/models"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"

	"gorm.io/gorm"
)

const allCategories = "All"

// CatalogService builds the browse listings and the category pages.
type CatalogService interface {
	GetListings(db *gorm.DB, query *dto.ListingQuery) ([]dto.ListingResponse, error)
	// GetListingsFor returns listing rows for the given members, in order.
	GetListingsFor(db *gorm.DB, userIDs []string) ([]dto.ListingResponse, error)
	GetCategories(db *gorm.DB) ([]*dto.CategoryResponse, error)
	GetCategory(db *gorm.DB, name string) (*dto.CategoryDetailResponse, error)
}

type catalogService struct {
	profileRepo  repositories.ProfileRepository
	skillRepo    repositories.SkillRepository
	categoryRepo repositories.CategoryRepository
	ratingRepo   repositories.RatingRepository
}

func NewCatalogService(
	profileRepo repositories.ProfileRepository,
	skillRepo repositories.SkillRepository,
	categoryRepo repositories.CategoryRepository,
	ratingRepo repositories.RatingRepository,
) CatalogService {
	return &catalogService{
		profileRepo:  profileRepo,
		skillRepo:    skillRepo,
		categoryRepo: categoryRepo,
		ratingRepo:   ratingRepo,
	}
}

func (s *catalogService) GetListings(db *gorm.DB, query *dto.ListingQuery) ([]dto.ListingResponse, error) {
	profiles, err := s.profileRepo.FindWithOfferedSkill(db)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	rows, err := s.buildListings(db, profiles)
	if err != nil {
		return nil, err
	}
	if query == nil {
		return rows, nil
	}
	return FilterListings(rows, *query), nil
}

func (s *catalogService) GetListingsFor(db *gorm.DB, userIDs []string) ([]dto.ListingResponse, error) {
	byUser, err := s.profileRepo.FindByUserIDs(db, userIDs)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	profiles := make([]models.Profile, 0, len(userIDs))
	for _, id := range userIDs {
		p, ok := byUser[id]
		if !ok || p.IsBanned || p.SkillOffered == "" {
			continue
		}
		profiles = append(profiles, *p)
	}
	return s.buildListings(db, profiles)
}

func (s *catalogService) buildListings(db *gorm.DB, profiles []models.Profile) ([]dto.ListingResponse, error) {
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	summaries, err := s.ratingRepo.SummariesFor(db, ids)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	categories, err := s.skillRepo.FirstOfferedCategories(db, ids)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	rows := make([]dto.ListingResponse, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		category := categories[p.UserID]
		if category == "" {
			category = defaultCategory
		}
		summary := summaries[p.UserID]
		rows = append(rows, dto.ListingResponse{
			UserID:        p.UserID,
			FullName:      displayName(p),
			AvatarURL:     p.DisplayAvatar(),
			Bio:           p.Bio,
			Location:      p.Location,
			SkillOffered:  p.SkillOffered,
			SkillWanted:   p.SkillWanted,
			Languages:     p.GetLanguages(),
			Category:      category,
			AverageRating: summary.Average,
			RatingCount:   summary.Count,
		})
	}
	return rows, nil
}

// FilterListings applies every non-empty filter; a row must pass all of them.
func FilterListings(rows []dto.ListingResponse, q dto.ListingQuery) []dto.ListingResponse {
	needle := strings.ToLower(strings.TrimSpace(q.Q))
	out := make([]dto.ListingResponse, 0, len(rows))
	for _, row := range rows {
		if needle != "" && !matchesSearch(row, needle) {
			continue
		}
		if q.MinRating > 0 && row.AverageRating < q.MinRating {
			continue
		}
		if q.Location != "" && row.Location != q.Location {
			continue
		}
		if q.Language != "" && !containsFold(row.Languages, q.Language) {
			continue
		}
		if q.Category != "" && q.Category != allCategories && row.Category != q.Category {
			continue
		}
		out = append(out, row)
	}
	return out
}

func matchesSearch(row dto.ListingResponse, needle string) bool {
	for _, field := range []string{row.SkillOffered, row.SkillWanted, row.FullName, row.Location} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func containsFold(values []string, want string) bool {
	want = strings.TrimSpace(want)
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}

// ---------------- Categories ----------------

func (s *catalogService) GetCategories(db *gorm.DB) ([]*dto.CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	counts, err := s.skillRepo.CountByCategory(db, models.SkillTypeOffered)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	out := make([]*dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, toCategoryResponse(&categories[i], counts[categories[i].Name]))
	}
	return out, nil
}

func (s *catalogService) GetCategory(db *gorm.DB, name string) (*dto.CategoryDetailResponse, error) {
	category, err := s.categoryRepo.FindByName(db, name)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.NewNotFoundError("category", "Category not found")
		}
		return nil, apperrors.DatabaseError(err)
	}

	skills, err := s.skillRepo.FindOfferedByCategory(db, category.Name)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	var ownerIDs []string
	seen := make(map[string]bool)
	for _, sk := range skills {
		if !seen[sk.UserID] {
			seen[sk.UserID] = true
			ownerIDs = append(ownerIDs, sk.UserID)
		}
	}
	owners, err := s.profileRepo.FindByUserIDs(db, ownerIDs)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	summaries, err := s.ratingRepo.SummariesFor(db, ownerIDs)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	resp := &dto.CategoryDetailResponse{
		Category: toCategoryResponse(category, 0),
		Skills:   make([]*dto.SkillResponse, 0, len(skills)),
		Members:  make([]dto.CategoryMember, 0, len(ownerIDs)),
	}
	for i := range skills {
		owner := owners[skills[i].UserID]
		if owner != nil && owner.IsBanned {
			continue
		}
		sr := toSkillResponse(&skills[i])
		sr.Owner = toProfileSummary(skills[i].UserID, owner)
		resp.Skills = append(resp.Skills, sr)
	}
	for _, id := range ownerIDs {
		owner := owners[id]
		if owner != nil && owner.IsBanned {
			continue
		}
		summary := summaries[id]
		resp.Members = append(resp.Members, dto.CategoryMember{
			ProfileSummary: *toProfileSummary(id, owner),
			AverageRating:  summary.Average,
			RatingCount:    summary.Count,
		})
	}
	resp.Category.ListingCount = int64(len(resp.Skills))
	return resp, nil
}

func toCategoryResponse(c *models.SkillCategory, count int64) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		Icon:         c.Icon,
		Color:        c.Color,
		ListingCount: count,
	}
}
