package services

import (
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"

	"gorm.io/gorm"
)

const portfolioSkillFallback = "Skills"

// PortfolioService lists a member's completed barters.
type PortfolioService interface {
	GetPortfolio(db *gorm.DB, userID string) ([]*dto.PortfolioEntry, error)
}

type portfolioService struct {
	barterRepo repositories.BarterRepository
	ratingRepo repositories.RatingRepository
}

func NewPortfolioService(barterRepo repositories.BarterRepository, ratingRepo repositories.RatingRepository) PortfolioService {
	return &portfolioService{
		barterRepo: barterRepo,
		ratingRepo: ratingRepo,
	}
}

func (s *portfolioService) GetPortfolio(db *gorm.DB, userID string) ([]*dto.PortfolioEntry, error) {
	barters, err := s.barterRepo.FindCompletedForUser(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	ids := make([]string, 0, len(barters))
	for _, b := range barters {
		ids = append(ids, b.ID)
	}
	received, err := s.ratingRepo.FindReceivedForBarters(db, userID, ids)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	out := make([]*dto.PortfolioEntry, 0, len(barters))
	for i := range barters {
		b := &barters[i]
		partnerID := b.PartnerOf(userID)
		partner := b.Requester
		if partnerID == b.RecipientID {
			partner = b.Recipient
		}

		summary := toProfileSummary(partnerID, partner)
		summary.FullName = nameOrUnknown(partner)

		skill := portfolioSkillFallback
		if partner != nil && partner.SkillOffered != "" {
			skill = partner.SkillOffered
		}

		entry := &dto.PortfolioEntry{
			BarterID:       b.ID,
			CompletedAt:    b.UpdatedAt,
			SkillExchanged: skill,
			Partner:        summary,
		}
		if b.CompletedAt != nil {
			entry.CompletedAt = *b.CompletedAt
		}
		if r, ok := received[b.ID]; ok {
			score := r.Rating
			entry.Rating = &score
		}
		out = append(out, entry)
	}
	return out, nil
}
