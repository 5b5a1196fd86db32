package models

import "time"

type BarterRequest struct {
	BaseModel
	RequesterID    string       `gorm:"type:varchar(36);index;not null" json:"requester_id"`
	RecipientID    string       `gorm:"type:varchar(36);index;not null" json:"recipient_id"`
	SkillOfferedID *string      `gorm:"type:varchar(36)" json:"skill_offered_id,omitempty"`
	SkillWantedID  *string      `gorm:"type:varchar(36)" json:"skill_wanted_id,omitempty"`
	Message        string       `gorm:"type:text" json:"message"`
	Status         BarterStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`

	Requester *Profile `gorm:"foreignKey:RequesterID;references:UserID" json:"requester,omitempty"`
	Recipient *Profile `gorm:"foreignKey:RecipientID;references:UserID" json:"recipient,omitempty"`
}

func (b *BarterRequest) Involves(userID string) bool {
	return b.RequesterID == userID || b.RecipientID == userID
}

// PartnerOf returns the other participant's id.
func (b *BarterRequest) PartnerOf(userID string) string {
	if b.RequesterID == userID {
		return b.RecipientID
	}
	return b.RequesterID
}
