package models

type Rating struct {
	BaseModel
	RaterID  string `gorm:"type:varchar(36);not null;uniqueIndex:idx_ratings_rater_barter" json:"rater_id"`
	RatedID  string `gorm:"type:varchar(36);not null;index" json:"rated_id"`
	BarterID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_ratings_rater_barter" json:"barter_id"`
	Rating   int    `gorm:"not null" json:"rating"`
	Review   string `gorm:"type:text" json:"review"`
}
