package models

type Favorite struct {
	BaseModel
	UserID             string `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_pair" json:"user_id"`
	FavoritedProfileID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_pair" json:"favorited_profile_id"`
}

func (Favorite) TableName() string {
	return "favorites"
}
