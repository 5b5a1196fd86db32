package dto

import "time"

type CreateRatingRequest struct {
	BarterID string `json:"barter_id" validate:"required"`
	RatedID  string `json:"rated_id" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Review   string `json:"review" validate:"omitempty,max=2000"`
}

type RatingResponse struct {
	ID        string    `json:"id"`
	RaterID   string    `json:"rater_id"`
	RatedID   string    `json:"rated_id"`
	BarterID  string    `json:"barter_id"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review"`
	RaterName string    `json:"rater_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type RatingFeedResponse struct {
	Average float64           `json:"average"`
	Count   int64             `json:"count"`
	Reviews []*RatingResponse `json:"reviews"`
}

type CreateReportRequest struct {
	ReportedUserID string `json:"reported_user_id" validate:"required"`
	Reason         string `json:"reason" validate:"required,is-report-reason"`
	Description    string `json:"description" validate:"omitempty,max=2000"`
}
