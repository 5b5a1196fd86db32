package services

import (
	"fmt"

	"barterly/internal/algorithms"
	"barterly/internal/logger"
	"barterly/internal/models"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"

	"gorm.io/gorm"
)

// Match list states.
const (
	MatchStateOK                = "ok"
	MatchStateIncompleteProfile = "incomplete_profile"
)

const matchGreetingFormat = "Hi! We're a perfect match - you want to learn %s and I can teach it. I'd love to learn %s from you!"

type MatchingService interface {
	// GetMatches ranks other members against the caller. It never fails:
	// an incomplete own profile or a fetch failure yield an empty list.
	GetMatches(db *gorm.DB, userID string) *dto.MatchListResponse
	RequestMatch(db *gorm.DB, userID, targetUserID string) (*dto.BarterResponse, error)
}

type matchingService struct {
	profileRepo repositories.ProfileRepository
	ratingRepo  repositories.RatingRepository
	barters     BarterService
}

func NewMatchingService(
	profileRepo repositories.ProfileRepository,
	ratingRepo repositories.RatingRepository,
	barters BarterService,
) MatchingService {
	return &matchingService{
		profileRepo: profileRepo,
		ratingRepo:  ratingRepo,
		barters:     barters,
	}
}

func (s *matchingService) GetMatches(db *gorm.DB, userID string) *dto.MatchListResponse {
	empty := func(state string) *dto.MatchListResponse {
		return &dto.MatchListResponse{State: state, Matches: []dto.MatchResponse{}}
	}

	me, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		logger.Warn("Match lookup without profile", "user_id", userID, "error", err)
		return empty(MatchStateIncompleteProfile)
	}
	mine := algorithms.SkillPair{Offered: me.SkillOffered, Wanted: me.SkillWanted}
	if !mine.Complete() {
		return empty(MatchStateIncompleteProfile)
	}

	profiles, err := s.profileRepo.FindMatchCandidates(db, userID)
	if err != nil {
		logger.Error("Failed to fetch match candidates", "user_id", userID, "error", err)
		return empty(MatchStateOK)
	}

	candidates := make([]algorithms.Candidate[*models.Profile], 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		candidates = append(candidates, algorithms.Candidate[*models.Profile]{
			Key:    p,
			Skills: algorithms.SkillPair{Offered: p.SkillOffered, Wanted: p.SkillWanted},
		})
	}
	ranked := algorithms.RankMatches(mine, candidates)

	ids := make([]string, 0, len(ranked))
	for _, m := range ranked {
		ids = append(ids, m.Key.UserID)
	}
	summaries, err := s.ratingRepo.SummariesFor(db, ids)
	if err != nil {
		// Ratings degrade to 0 rather than failing the list.
		logger.Warn("Failed to load match ratings", "user_id", userID, "error", err)
		summaries = map[string]repositories.RatingSummary{}
	}

	out := make([]dto.MatchResponse, 0, len(ranked))
	for _, m := range ranked {
		p := m.Key
		location := p.Location
		if location == "" {
			location = remoteLocation
		}
		out = append(out, dto.MatchResponse{
			UserID:        p.UserID,
			FullName:      displayName(p),
			AvatarURL:     p.DisplayAvatar(),
			Location:      location,
			SkillOffered:  p.SkillOffered,
			SkillWanted:   p.SkillWanted,
			Score:         m.Score,
			Reasons:       m.Reasons,
			AverageRating: summaries[p.UserID].Average,
		})
	}
	return &dto.MatchListResponse{State: MatchStateOK, Matches: out}
}

// RequestMatch sends a barter request carrying the match greeting.
func (s *matchingService) RequestMatch(db *gorm.DB, userID, targetUserID string) (*dto.BarterResponse, error) {
	target, err := s.profileRepo.FindByUserID(db, targetUserID)
	if err != nil {
		return nil, handleProfileError(err)
	}
	return s.barters.CreateBarter(db, userID, &dto.CreateBarterRequest{
		RecipientID: targetUserID,
		Message:     fmt.Sprintf(matchGreetingFormat, target.SkillWanted, target.SkillOffered),
	})
}
