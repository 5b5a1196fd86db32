package models

import "time"

type UserReport struct {
	BaseModel
	ReporterID     string       `gorm:"type:varchar(36);not null;index" json:"reporter_id"`
	ReportedUserID string       `gorm:"type:varchar(36);not null;index" json:"reported_user_id"`
	Reason         ReportReason `gorm:"type:varchar(20);not null" json:"reason"`
	Description    string       `gorm:"type:text" json:"description"`
	Status         ReportStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedBy     *string      `gorm:"type:varchar(36)" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time   `json:"reviewed_at,omitempty"`
}
