package dto

import "time"

type CreateSkillRequest struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Category    string   `json:"category" validate:"omitempty,max=80"`
	Description string   `json:"description" validate:"omitempty,max=2000"`
	SkillType   string   `json:"skill_type" validate:"required,is-skill-type"`
	SkillLevel  string   `json:"skill_level" validate:"omitempty,is-skill-level"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
}

type UpdateSkillRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=120"`
	Category    *string  `json:"category" validate:"omitempty,max=80"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	SkillType   *string  `json:"skill_type" validate:"omitempty,is-skill-type"`
	SkillLevel  *string  `json:"skill_level" validate:"omitempty,is-skill-level"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
}

type SkillResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	SkillType   string          `json:"skill_type"`
	SkillLevel  string          `json:"skill_level"`
	Tags        []string        `json:"tags"`
	CreatedAt   time.Time       `json:"created_at"`
	Owner       *ProfileSummary `json:"owner,omitempty"`
}

type CategoryResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
	ListingCount int64  `json:"listing_count"`
}

type CategoryMember struct {
	ProfileSummary
	AverageRating float64 `json:"average_rating"`
	RatingCount   int64   `json:"rating_count"`
}

type CategoryDetailResponse struct {
	Category *CategoryResponse `json:"category"`
	Skills   []*SkillResponse  `json:"skills"`
	Members  []CategoryMember  `json:"members"`
}
