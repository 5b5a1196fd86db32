package services

import (
	"errors"
	"strings"

	"barterly/internal/models"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"
	"barterly/ws"

	"gorm.io/gorm"
)

const (
	anonymousName   = "Anonymous"
	unknownName     = "Unknown"
	defaultCategory = "General"
	remoteLocation  = "Remote"

	// Greeting sent when a barter is requested from a listing, category,
	// favorite or map card.
	defaultBarterGreeting = "Hi! I'd like to exchange skills with you."
)

// RealtimePublisher pushes events to connected clients.
type RealtimePublisher interface {
	PublishToUser(userID string, event ws.Event)
	PublishToBarter(barterID, dedupeID string, event ws.Event)
}

type noopPublisher struct{}

func (noopPublisher) PublishToUser(string, ws.Event)            {}
func (noopPublisher) PublishToBarter(string, string, ws.Event) {}

func publisherOrNoop(p RealtimePublisher) RealtimePublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func displayName(p *models.Profile) string {
	if p == nil || strings.TrimSpace(p.FullName) == "" {
		return anonymousName
	}
	return p.FullName
}

func nameOrUnknown(p *models.Profile) string {
	if p == nil || strings.TrimSpace(p.FullName) == "" {
		return unknownName
	}
	return p.FullName
}

func toProfileSummary(userID string, p *models.Profile) *dto.ProfileSummary {
	if p == nil {
		p = &models.Profile{UserID: userID}
	}
	return &dto.ProfileSummary{
		UserID:    userID,
		FullName:  displayName(p),
		AvatarURL: p.DisplayAvatar(),
		Location:  p.Location,
	}
}

func toProfileResponse(p *models.Profile, summary repositories.RatingSummary) *dto.ProfileResponse {
	links := p.GetProofLinks()
	proofLinks := make([]dto.ProofLinkDTO, 0, len(links))
	for _, l := range links {
		proofLinks = append(proofLinks, dto.ProofLinkDTO{Title: l.Title, URL: l.URL})
	}
	return &dto.ProfileResponse{
		ID:                  p.ID,
		UserID:              p.UserID,
		FullName:            p.FullName,
		DisplayName:         displayName(p),
		AvatarURL:           p.DisplayAvatar(),
		Bio:                 p.Bio,
		Location:            p.Location,
		SkillOffered:        p.SkillOffered,
		SkillWanted:         p.SkillWanted,
		Languages:           p.GetLanguages(),
		ProofLinks:          proofLinks,
		IsBanned:            p.IsBanned,
		OnboardingCompleted: p.OnboardingCompleted,
		EmailNotifications:  p.EmailNotifications,
		AverageRating:       summary.Average,
		RatingCount:         summary.Count,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func toSkillResponse(s *models.Skill) *dto.SkillResponse {
	return &dto.SkillResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		Title:       s.Title,
		Category:    s.Category,
		Description: s.Description,
		SkillType:   string(s.SkillType),
		SkillLevel:  string(s.SkillLevel),
		Tags:        s.GetTags(),
		CreatedAt:   s.CreatedAt,
	}
}

func toBarterResponse(b *models.BarterRequest) *dto.BarterResponse {
	resp := &dto.BarterResponse{
		ID:             b.ID,
		RequesterID:    b.RequesterID,
		RecipientID:    b.RecipientID,
		SkillOfferedID: b.SkillOfferedID,
		SkillWantedID:  b.SkillWantedID,
		Message:        b.Message,
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
		CompletedAt:    b.CompletedAt,
	}
	if b.Requester != nil {
		resp.Requester = toProfileSummary(b.RequesterID, b.Requester)
	}
	if b.Recipient != nil {
		resp.Recipient = toProfileSummary(b.RecipientID, b.Recipient)
	}
	return resp
}

func toMessageResponse(m *models.Message) *dto.MessageResponse {
	resp := &dto.MessageResponse{
		ID:          m.ID,
		BarterID:    m.BarterID,
		SenderID:    m.SenderID,
		Content:     m.Content,
		MessageType: string(m.MessageType),
		CreatedAt:   m.CreatedAt,
	}
	if meeting := m.GetMeeting(); meeting != nil {
		resp.ScheduledMeeting = &dto.MeetingDTO{Title: meeting.Title, Date: meeting.Date, Time: meeting.Time, Link: meeting.Link}
	}
	if media := m.GetMedia(); media != nil {
		resp.Media = &dto.MediaDTO{URL: media.URL, Type: media.Type, Name: media.Name}
	}
	return resp
}

func toRatingResponse(r *models.Rating, raterName string) *dto.RatingResponse {
	return &dto.RatingResponse{
		ID:        r.ID,
		RaterID:   r.RaterID,
		RatedID:   r.RatedID,
		BarterID:  r.BarterID,
		Rating:    r.Rating,
		Review:    r.Review,
		RaterName: raterName,
		CreatedAt: r.CreatedAt,
	}
}

func handleProfileError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, repositories.ErrProfileNotFound) ||
		errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.ErrProfileNotFound.WithError(err)
	}
	return apperrors.DatabaseError(err)
}

func handleBarterError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, repositories.ErrBarterNotFound) {
		return apperrors.NewNotFoundError("barter", "Barter request not found")
	}
	return apperrors.DatabaseError(err)
}

func handleSkillError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, repositories.ErrSkillNotFound) {
		return apperrors.NewNotFoundError("skill", "Skill not found")
	}
	return apperrors.DatabaseError(err)
}
