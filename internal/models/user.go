package models

import "time"

type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
