package services

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"barterly/internal/models"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	topSkillTrends   = 10
	topCategories    = 5
	mapDefaultOffer  = "Various Skills"
	mapDefaultWanted = "Open to offers"
)

// InsightsService computes the public market overview and the member map.
type InsightsService interface {
	GetInsights(db *gorm.DB) (*dto.InsightsResponse, error)
	GetMap(db *gorm.DB) ([]dto.MapLocation, error)
}

type insightsService struct {
	profileRepo repositories.ProfileRepository
	skillRepo   repositories.SkillRepository
	barterRepo  repositories.BarterRepository
	ratingRepo  repositories.RatingRepository
}

func NewInsightsService(
	profileRepo repositories.ProfileRepository,
	skillRepo repositories.SkillRepository,
	barterRepo repositories.BarterRepository,
	ratingRepo repositories.RatingRepository,
) InsightsService {
	return &insightsService{
		profileRepo: profileRepo,
		skillRepo:   skillRepo,
		barterRepo:  barterRepo,
		ratingRepo:  ratingRepo,
	}
}

func (s *insightsService) GetInsights(db *gorm.DB) (*dto.InsightsResponse, error) {
	profiles, err := s.profileRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	categoryCounts, err := s.skillRepo.CountByCategory(db, "")
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	totalBarters, err := s.barterRepo.CountAll(db)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	avgRating, err := s.ratingRepo.PlatformAverage(db)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	return &dto.InsightsResponse{
		Skills:     SkillTrends(profiles, topSkillTrends),
		Categories: TopCategories(categoryCounts, topCategories),
		Stats: dto.PlatformStats{
			TotalUsers:   int64(len(profiles)),
			TotalBarters: totalBarters,
			AvgRating:    avgRating,
		},
	}, nil
}

// SkillTrends counts demand (skill_wanted) and supply (skill_offered) per
// lower-cased skill, ordered by demand. Ties keep first-seen order.
func SkillTrends(profiles []models.Profile, limit int) []dto.SkillTrend {
	index := make(map[string]int)
	var trends []dto.SkillTrend

	bump := func(raw string, demand bool) {
		key := strings.ToLower(strings.TrimSpace(raw))
		if key == "" {
			return
		}
		i, ok := index[key]
		if !ok {
			i = len(trends)
			index[key] = i
			trends = append(trends, dto.SkillTrend{Skill: key})
		}
		if demand {
			trends[i].Demand++
		} else {
			trends[i].Supply++
		}
	}
	for _, p := range profiles {
		bump(p.SkillWanted, true)
		bump(p.SkillOffered, false)
	}

	for i := range trends {
		t := &trends[i]
		t.Skill = capitalize(t.Skill)
		if t.Supply > 0 {
			t.Ratio = float64(t.Demand) / float64(t.Supply)
		} else {
			t.Ratio = float64(t.Demand)
		}
	}
	sort.SliceStable(trends, func(a, b int) bool { return trends[a].Demand > trends[b].Demand })

	if len(trends) > limit {
		trends = trends[:limit]
	}
	if trends == nil {
		trends = []dto.SkillTrend{}
	}
	return trends
}

// TopCategories orders by count, then name.
func TopCategories(counts map[string]int64, limit int) []dto.CategoryCount {
	out := make([]dto.CategoryCount, 0, len(counts))
	for name, count := range counts {
		if name == "" {
			continue
		}
		out = append(out, dto.CategoryCount{Name: name, Count: count})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Name < out[b].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// ---------------- Map ----------------

func (s *insightsService) GetMap(db *gorm.DB) ([]dto.MapLocation, error) {
	profiles, err := s.profileRepo.FindWithLocation(db)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return GroupByLocation(profiles), nil
}

// GroupByLocation buckets members by their location string, largest
// group first.
func GroupByLocation(profiles []models.Profile) []dto.MapLocation {
	index := make(map[string]int)
	groups := []dto.MapLocation{}

	for i := range profiles {
		p := &profiles[i]
		location := strings.TrimSpace(p.Location)
		if location == "" {
			continue
		}
		g, ok := index[location]
		if !ok {
			g = len(groups)
			index[location] = g
			groups = append(groups, dto.MapLocation{Location: location})
		}

		member := dto.MapMember{
			UserID:       p.UserID,
			FullName:     displayName(p),
			AvatarURL:    p.DisplayAvatar(),
			SkillOffered: p.SkillOffered,
			SkillWanted:  p.SkillWanted,
		}
		if member.SkillOffered == "" {
			member.SkillOffered = mapDefaultOffer
		}
		if member.SkillWanted == "" {
			member.SkillWanted = mapDefaultWanted
		}
		groups[g].Members = append(groups[g].Members, member)
		groups[g].Count++
	}

	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Count > groups[b].Count })
	return groups
}
