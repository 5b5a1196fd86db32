package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel generates its own UUID so that every dialect (postgres, mysql,
// sqlite) can share the same schema.
type BaseModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// All returns every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&SkillCategory{},
		&Skill{},
		&BarterRequest{},
		&Message{},
		&Rating{},
		&Favorite{},
		&UserReport{},
		&Proof{},
		&Notification{},
		&PushSubscription{},
	}
}
