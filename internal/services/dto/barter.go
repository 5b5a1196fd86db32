package dto

import "time"

type CreateBarterRequest struct {
	RecipientID    string  `json:"recipient_id" validate:"required"`
	SkillOfferedID *string `json:"skill_offered_id"`
	SkillWantedID  *string `json:"skill_wanted_id"`
	Message        string  `json:"message" validate:"omitempty,max=2000"`
}

type BarterListQuery struct {
	Role   string `form:"role" validate:"omitempty,oneof=incoming outgoing"`
	Status string `form:"status" validate:"omitempty,is-barter-status"`
}

type BarterResponse struct {
	ID             string          `json:"id"`
	RequesterID    string          `json:"requester_id"`
	RecipientID    string          `json:"recipient_id"`
	SkillOfferedID *string         `json:"skill_offered_id,omitempty"`
	SkillWantedID  *string         `json:"skill_wanted_id,omitempty"`
	Message        string          `json:"message"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	Requester      *ProfileSummary `json:"requester,omitempty"`
	Recipient      *ProfileSummary `json:"recipient,omitempty"`
}

// PortfolioEntry is a completed barter seen from one participant. Rating
// is the score that participant received for it.
type PortfolioEntry struct {
	BarterID       string          `json:"barter_id"`
	CompletedAt    time.Time       `json:"completed_at"`
	SkillExchanged string          `json:"skill_exchanged"`
	Partner        *ProfileSummary `json:"partner"`
	Rating         *int            `json:"rating"`
}
