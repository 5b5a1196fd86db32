package dto

import "time"

type AdminStats struct {
	TotalUsers       int64 `json:"totalUsers"`
	TotalBarters     int64 `json:"totalBarters"`
	CompletedBarters int64 `json:"completedBarters"`
	PendingReports   int64 `json:"pendingReports"`
	BannedUsers      int64 `json:"bannedUsers"`
}

type AdminReportResponse struct {
	ID               string     `json:"id"`
	ReporterID       string     `json:"reporter_id"`
	ReporterName     string     `json:"reporter_name"`
	ReportedUserID   string     `json:"reported_user_id"`
	ReportedUserName string     `json:"reported_user_name"`
	Reason           string     `json:"reason"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	ReviewedBy       *string    `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type UpdateReportRequest struct {
	Status string `json:"status" validate:"required,is-report-status"`
}

type AdminReportQuery struct {
	Status string `form:"status" validate:"omitempty,is-report-status"`
}

type AdminUserResponse struct {
	UserID       string     `json:"user_id"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	FullName     string     `json:"full_name"`
	AvatarURL    string     `json:"avatar_url"`
	IsBanned     bool       `json:"is_banned"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
}

type BanResponse struct {
	UserID   string `json:"user_id"`
	IsBanned bool   `json:"is_banned"`
}
