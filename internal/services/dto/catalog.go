package dto

// ListingQuery filters combine with AND. Empty fields pass everything.
type ListingQuery struct {
	Q         string  `form:"q" validate:"omitempty,max=120"`
	MinRating float64 `form:"min_rating" validate:"omitempty,min=0,max=5"`
	Location  string  `form:"location" validate:"omitempty,max=120"`
	Language  string  `form:"language" validate:"omitempty,max=40"`
	Category  string  `form:"category" validate:"omitempty,max=80"`
}

type ListingResponse struct {
	UserID        string   `json:"user_id"`
	FullName      string   `json:"full_name"`
	AvatarURL     string   `json:"avatar_url"`
	Bio           string   `json:"bio"`
	Location      string   `json:"location"`
	SkillOffered  string   `json:"skill_offered"`
	SkillWanted   string   `json:"skill_wanted"`
	Languages     []string `json:"languages"`
	Category      string   `json:"category"`
	AverageRating float64  `json:"average_rating"`
	RatingCount   int64    `json:"rating_count"`
}

type MatchResponse struct {
	UserID        string   `json:"user_id"`
	FullName      string   `json:"full_name"`
	AvatarURL     string   `json:"avatar_url"`
	Location      string   `json:"location"`
	SkillOffered  string   `json:"skill_offered"`
	SkillWanted   string   `json:"skill_wanted"`
	Score         int      `json:"score"`
	Reasons       []string `json:"reasons"`
	AverageRating float64  `json:"average_rating"`
}

// MatchListResponse carries an empty state instead of an error when the
// caller's own profile is incomplete.
type MatchListResponse struct {
	State   string          `json:"state"`
	Matches []MatchResponse `json:"matches"`
}

type MapMember struct {
	UserID       string `json:"user_id"`
	FullName     string `json:"full_name"`
	AvatarURL    string `json:"avatar_url"`
	SkillOffered string `json:"skill_offered"`
	SkillWanted  string `json:"skill_wanted"`
}

type MapLocation struct {
	Location string      `json:"location"`
	Count    int         `json:"count"`
	Members  []MapMember `json:"members"`
}

type SkillTrend struct {
	Skill  string  `json:"skill"`
	Demand int     `json:"demand"`
	Supply int     `json:"supply"`
	Ratio  float64 `json:"ratio"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type PlatformStats struct {
	TotalUsers   int64   `json:"totalUsers"`
	TotalBarters int64   `json:"totalBarters"`
	AvgRating    float64 `json:"avgRating"`
}

type InsightsResponse struct {
	Skills     []SkillTrend    `json:"skills"`
	Categories []CategoryCount `json:"categories"`
	Stats      PlatformStats   `json:"stats"`
}
