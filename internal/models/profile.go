package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

const avatarFallbackURL = "https://api.dicebear.com/7.x/avataaars/svg?seed=%s"

type ProofLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Profile struct {
	BaseModel
	UserID              string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	FullName            string         `gorm:"size:120" json:"full_name"`
	AvatarURL           string         `json:"avatar_url"`
	Bio                 string         `gorm:"type:text" json:"bio"`
	Location            string         `gorm:"size:120;index" json:"location"`
	SkillOffered        string         `gorm:"size:255" json:"skill_offered"`
	SkillWanted         string         `gorm:"size:255" json:"skill_wanted"`
	Languages           datatypes.JSON `json:"languages"`
	ProofLinks          datatypes.JSON `json:"proof_links"`
	IsBanned            bool           `gorm:"default:false;index" json:"is_banned"`
	OnboardingCompleted bool           `gorm:"default:false" json:"onboarding_completed"`
	EmailNotifications  bool           `gorm:"default:true" json:"email_notifications"`
}

// GetLanguages returns the language list, empty when unset.
func (p *Profile) GetLanguages() []string {
	languages := []string{}
	if len(p.Languages) > 0 {
		_ = json.Unmarshal(p.Languages, &languages)
	}
	return languages
}

func (p *Profile) SetLanguages(languages []string) {
	if languages == nil {
		languages = []string{}
	}
	data, _ := json.Marshal(languages)
	p.Languages = datatypes.JSON(data)
}

func (p *Profile) GetProofLinks() []ProofLink {
	links := []ProofLink{}
	if len(p.ProofLinks) > 0 {
		_ = json.Unmarshal(p.ProofLinks, &links)
	}
	return links
}

func (p *Profile) SetProofLinks(links []ProofLink) {
	if links == nil {
		links = []ProofLink{}
	}
	data, _ := json.Marshal(links)
	p.ProofLinks = datatypes.JSON(data)
}

// SpeaksLanguage does a case-insensitive membership check.
func (p *Profile) SpeaksLanguage(language string) bool {
	for _, l := range p.GetLanguages() {
		if strings.EqualFold(strings.TrimSpace(l), strings.TrimSpace(language)) {
			return true
		}
	}
	return false
}

// DisplayAvatar falls back to a generated avatar seeded by the user id.
func (p *Profile) DisplayAvatar() string {
	if p.AvatarURL != "" {
		return p.AvatarURL
	}
	return fmt.Sprintf(avatarFallbackURL, p.UserID)
}

// HasSkillPair is true when both free-text skill fields are populated.
func (p *Profile) HasSkillPair() bool {
	return p.SkillOffered != "" && p.SkillWanted != ""
}
