package models

type Notification struct {
	BaseModel
	UserID      string           `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Type        NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	ReferenceID string           `gorm:"type:varchar(36);index" json:"reference_id"`
	Title       string           `json:"title"`
	Message     string           `gorm:"type:text" json:"message"`
	IsRead      bool             `gorm:"default:false;index" json:"is_read"`
}

type PushSubscription struct {
	BaseModel
	UserID   string `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Endpoint string `gorm:"size:512;uniqueIndex;not null" json:"endpoint"`
	P256dh   string `gorm:"not null" json:"-"`
	Auth     string `gorm:"not null" json:"-"`
}
