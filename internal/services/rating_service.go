package services

import (
	"errors"

	"barterly/internal/models"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"

	"gorm.io/gorm"
)

type RatingService interface {
	// CreateRating requires a completed barter between rater and rated.
	CreateRating(db *gorm.DB, userID string, req *dto.CreateRatingRequest) (*dto.RatingResponse, error)
	GetRatingFeed(db *gorm.DB, userID string) (*dto.RatingFeedResponse, error)
}

type ratingService struct {
	ratingRepo  repositories.RatingRepository
	barterRepo  repositories.BarterRepository
	profileRepo repositories.ProfileRepository
}

func NewRatingService(
	ratingRepo repositories.RatingRepository,
	barterRepo repositories.BarterRepository,
	profileRepo repositories.ProfileRepository,
) RatingService {
	return &ratingService{
		ratingRepo:  ratingRepo,
		barterRepo:  barterRepo,
		profileRepo: profileRepo,
	}
}

func (s *ratingService) CreateRating(db *gorm.DB, userID string, req *dto.CreateRatingRequest) (*dto.RatingResponse, error) {
	if req.RatedID == userID {
		return nil, apperrors.ErrSelfRating
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.ValidationError(map[string]string{"rating": "Value must be between 1 and 5"})
	}

	if _, err := s.barterRepo.FindByID(db, req.BarterID); err != nil {
		return nil, handleBarterError(err)
	}
	ok, err := s.barterRepo.HasCompletedBetween(db, req.BarterID, userID, req.RatedID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if !ok {
		return nil, apperrors.ErrRatingRequiresCompletedBarter
	}

	rating := &models.Rating{
		RaterID:  userID,
		RatedID:  req.RatedID,
		BarterID: req.BarterID,
		Rating:   req.Rating,
		Review:   req.Review,
	}
	if err := s.ratingRepo.Create(db, rating); err != nil {
		if errors.Is(err, repositories.ErrRatingAlreadyExists) {
			return nil, apperrors.ErrAlreadyRated
		}
		return nil, apperrors.DatabaseError(err)
	}

	raterName := anonymousName
	if p, err := s.profileRepo.FindByUserID(db, userID); err == nil {
		raterName = displayName(p)
	}
	return toRatingResponse(rating, raterName), nil
}

func (s *ratingService) GetRatingFeed(db *gorm.DB, userID string) (*dto.RatingFeedResponse, error) {
	summary, err := s.ratingRepo.Summary(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	ratings, err := s.ratingRepo.FindByRated(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	raterIDs := make([]string, 0, len(ratings))
	for _, r := range ratings {
		raterIDs = append(raterIDs, r.RaterID)
	}
	raters, err := s.profileRepo.FindByUserIDs(db, raterIDs)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	reviews := make([]*dto.RatingResponse, 0, len(ratings))
	for i := range ratings {
		reviews = append(reviews, toRatingResponse(&ratings[i], displayName(raters[ratings[i].RaterID])))
	}
	return &dto.RatingFeedResponse{
		Average: summary.Average,
		Count:   summary.Count,
		Reviews: reviews,
	}, nil
}
