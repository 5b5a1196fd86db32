package services

import (
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"

	"gorm.io/gorm"
)

// FavoriteService is the per-user set of favorited member ids.
type FavoriteService interface {
	// ToggleFavorite flips membership and returns the new state.
	ToggleFavorite(db *gorm.DB, userID, targetUserID string) (bool, error)
	GetFavoriteIDs(db *gorm.DB, userID string) ([]string, error)
	GetFavorites(db *gorm.DB, userID string) ([]dto.ListingResponse, error)
}

type favoriteService struct {
	favoriteRepo repositories.FavoriteRepository
	profileRepo  repositories.ProfileRepository
	catalog      CatalogService
}

func NewFavoriteService(
	favoriteRepo repositories.FavoriteRepository,
	profileRepo repositories.ProfileRepository,
	catalog CatalogService,
) FavoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		profileRepo:  profileRepo,
		catalog:      catalog,
	}
}

func (s *favoriteService) ToggleFavorite(db *gorm.DB, userID, targetUserID string) (bool, error) {
	if userID == targetUserID {
		return false, apperrors.ErrSelfFavorite
	}
	if _, err := s.profileRepo.FindByUserID(db, targetUserID); err != nil {
		return false, handleProfileError(err)
	}

	exists, err := s.favoriteRepo.Exists(db, userID, targetUserID)
	if err != nil {
		return false, apperrors.DatabaseError(err)
	}
	if exists {
		if err := s.favoriteRepo.Remove(db, userID, targetUserID); err != nil {
			return false, apperrors.DatabaseError(err)
		}
		return false, nil
	}
	if err := s.favoriteRepo.Add(db, userID, targetUserID); err != nil {
		return false, apperrors.DatabaseError(err)
	}
	return true, nil
}

func (s *favoriteService) GetFavoriteIDs(db *gorm.DB, userID string) ([]string, error) {
	ids, err := s.favoriteRepo.FindTargetIDs(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// GetFavorites renders favorited members as listing rows, skipping banned
// members and members without an offered skill.
func (s *favoriteService) GetFavorites(db *gorm.DB, userID string) ([]dto.ListingResponse, error) {
	ids, err := s.GetFavoriteIDs(db, userID)
	if err != nil {
		return nil, err
	}
	return s.catalog.GetListingsFor(db, ids)
}
