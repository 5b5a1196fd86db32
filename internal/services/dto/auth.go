package dto

import "time"

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *UserResponse `json:"user"`
}

type UserResponse struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	Role         string           `json:"role"`
	CreatedAt    time.Time        `json:"created_at"`
	LastSignInAt *time.Time       `json:"last_sign_in_at,omitempty"`
	Profile      *ProfileResponse `json:"profile,omitempty"`
}
