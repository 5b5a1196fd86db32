package dto

import "time"

type ProofLinkDTO struct {
	Title string `json:"title" validate:"required,max=120"`
	URL   string `json:"url" validate:"required,url"`
}

// UpdateProfileRequest is a partial update; nil fields are left unchanged.
type UpdateProfileRequest struct {
	FullName           *string         `json:"full_name" validate:"omitempty,max=120"`
	Bio                *string         `json:"bio" validate:"omitempty,max=2000"`
	Location           *string         `json:"location" validate:"omitempty,max=120"`
	SkillOffered       *string         `json:"skill_offered" validate:"omitempty,max=255"`
	SkillWanted        *string         `json:"skill_wanted" validate:"omitempty,max=255"`
	Languages          []string        `json:"languages" validate:"omitempty,max=20,dive,min=1,max=40"`
	ProofLinks         *[]ProofLinkDTO `json:"proof_links" validate:"omitempty,max=20,dive"`
	EmailNotifications *bool           `json:"email_notifications"`
}

type OnboardingSkill struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Category    string   `json:"category" validate:"omitempty,max=80"`
	Description string   `json:"description" validate:"omitempty,max=2000"`
	SkillLevel  string   `json:"skill_level" validate:"omitempty,is-skill-level"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
}

type OnboardingRequest struct {
	FullName      string            `json:"full_name" validate:"required,max=120"`
	Bio           string            `json:"bio" validate:"omitempty,max=2000"`
	Location      string            `json:"location" validate:"omitempty,max=120"`
	Languages     []string          `json:"languages" validate:"omitempty,max=20,dive,min=1,max=40"`
	OfferedSkills []OnboardingSkill `json:"offered_skills" validate:"required,min=1,dive"`
	WantedSkills  []OnboardingSkill `json:"wanted_skills" validate:"omitempty,dive"`
}

type ProfileResponse struct {
	ID                  string         `json:"id"`
	UserID              string         `json:"user_id"`
	FullName            string         `json:"full_name"`
	DisplayName         string         `json:"display_name"`
	AvatarURL           string         `json:"avatar_url"`
	Bio                 string         `json:"bio"`
	Location            string         `json:"location"`
	SkillOffered        string         `json:"skill_offered"`
	SkillWanted         string         `json:"skill_wanted"`
	Languages           []string       `json:"languages"`
	ProofLinks          []ProofLinkDTO `json:"proof_links"`
	IsBanned            bool           `json:"is_banned"`
	OnboardingCompleted bool           `json:"onboarding_completed"`
	EmailNotifications  bool           `json:"email_notifications"`
	AverageRating       float64        `json:"average_rating"`
	RatingCount         int64          `json:"rating_count"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// ProfileSummary is the compact form embedded in other responses.
type ProfileSummary struct {
	UserID    string `json:"user_id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	Location  string `json:"location,omitempty"`
}

type ProofResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	FileURL   string    `json:"file_url"`
	FileType  string    `json:"file_type"`
	CreatedAt time.Time `json:"created_at"`
}
