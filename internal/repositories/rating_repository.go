package repositories

import (
	"errors"

	"barterly/internal/models"

	"gorm.io/gorm"
)

var ErrRatingAlreadyExists = errors.New("rating already exists for this barter")

// RatingSummary is the mean and count of ratings addressed to one user.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type RatingRepository interface {
	Create(db *gorm.DB, rating *models.Rating) error
	ExistsForRaterAndBarter(db *gorm.DB, raterID, barterID string) (bool, error)
	FindByRated(db *gorm.DB, ratedID string) ([]models.Rating, error)
	FindReceivedForBarters(db *gorm.DB, ratedID string, barterIDs []string) (map[string]*models.Rating, error)
	Summary(db *gorm.DB, ratedID string) (RatingSummary, error)
	SummariesFor(db *gorm.DB, ratedIDs []string) (map[string]RatingSummary, error)
	PlatformAverage(db *gorm.DB) (float64, error)
}

type RatingRepositoryImpl struct{}

func NewRatingRepository() RatingRepository {
	return &RatingRepositoryImpl{}
}

func (r *RatingRepositoryImpl) Create(db *gorm.DB, rating *models.Rating) error {
	exists, err := r.ExistsForRaterAndBarter(db, rating.RaterID, rating.BarterID)
	if err != nil {
		return err
	}
	if exists {
		return ErrRatingAlreadyExists
	}
	return db.Create(rating).Error
}

func (r *RatingRepositoryImpl) ExistsForRaterAndBarter(db *gorm.DB, raterID, barterID string) (bool, error) {
	var count int64
	err := db.Model(&models.Rating{}).
		Where("rater_id = ? AND barter_id = ?", raterID, barterID).
		Count(&count).Error
	return count > 0, err
}

func (r *RatingRepositoryImpl) FindByRated(db *gorm.DB, ratedID string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := db.Where("rated_id = ?", ratedID).Order("created_at DESC").Find(&ratings).Error
	return ratings, err
}

func (r *RatingRepositoryImpl) FindReceivedForBarters(db *gorm.DB, ratedID string, barterIDs []string) (map[string]*models.Rating, error) {
	out := make(map[string]*models.Rating, len(barterIDs))
	if len(barterIDs) == 0 {
		return out, nil
	}
	var ratings []models.Rating
	if err := db.Where("rated_id = ? AND barter_id IN ?", ratedID, barterIDs).Find(&ratings).Error; err != nil {
		return nil, err
	}
	for i := range ratings {
		out[ratings[i].BarterID] = &ratings[i]
	}
	return out, nil
}

func (r *RatingRepositoryImpl) Summary(db *gorm.DB, ratedID string) (RatingSummary, error) {
	summaries, err := r.SummariesFor(db, []string{ratedID})
	if err != nil {
		return RatingSummary{}, err
	}
	return summaries[ratedID], nil
}

// SummariesFor returns one summary per rated user; users without ratings
// are absent from the map and read as the zero summary.
func (r *RatingRepositoryImpl) SummariesFor(db *gorm.DB, ratedIDs []string) (map[string]RatingSummary, error) {
	out := make(map[string]RatingSummary, len(ratedIDs))
	if len(ratedIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		RatedID string
		Average float64
		Count   int64
	}
	err := db.Model(&models.Rating{}).
		Select("rated_id, AVG(rating) AS average, COUNT(*) AS count").
		Where("rated_id IN ?", ratedIDs).
		Group("rated_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.RatedID] = RatingSummary{Average: row.Average, Count: row.Count}
	}
	return out, nil
}

func (r *RatingRepositoryImpl) PlatformAverage(db *gorm.DB) (float64, error) {
	var avg *float64
	if err := db.Model(&models.Rating{}).Select("AVG(rating)").Scan(&avg).Error; err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
