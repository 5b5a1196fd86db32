package services

import (
	"errors"
	"time"

	"barterly/internal/logger"
	"barterly/internal/models"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"

	"gorm.io/gorm"
)

type AdminService interface {
	GetStats(db *gorm.DB) (*dto.AdminStats, error)
	GetReports(db *gorm.DB, status string) ([]*dto.AdminReportResponse, error)
	UpdateReportStatus(db *gorm.DB, adminID, reportID string, req *dto.UpdateReportRequest) (*dto.AdminReportResponse, error)
	GetUsers(db *gorm.DB) ([]*dto.AdminUserResponse, error)
	// ToggleBan flips the ban flag and returns the new state.
	ToggleBan(db *gorm.DB, adminID, userID string) (*dto.BanResponse, error)
}

type adminService struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	barterRepo  repositories.BarterRepository
	reportRepo  repositories.ReportRepository
}

func NewAdminService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	barterRepo repositories.BarterRepository,
	reportRepo repositories.ReportRepository,
) AdminService {
	return &adminService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		barterRepo:  barterRepo,
		reportRepo:  reportRepo,
	}
}

func (s *adminService) GetStats(db *gorm.DB) (*dto.AdminStats, error) {
	var stats dto.AdminStats
	var err error

	if stats.TotalUsers, err = s.profileRepo.CountAll(db); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if stats.TotalBarters, err = s.barterRepo.CountAll(db); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if stats.CompletedBarters, err = s.barterRepo.CountByStatus(db, models.BarterStatusCompleted); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if stats.PendingReports, err = s.reportRepo.CountByStatus(db, models.ReportStatusPending); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if stats.BannedUsers, err = s.profileRepo.CountBanned(db); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return &stats, nil
}

func (s *adminService) GetReports(db *gorm.DB, status string) ([]*dto.AdminReportResponse, error) {
	reports, err := s.reportRepo.FindAll(db, models.ReportStatus(status))
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	ids := make([]string, 0, len(reports)*2)
	for _, r := range reports {
		ids = append(ids, r.ReporterID, r.ReportedUserID)
	}
	profiles, err := s.profileRepo.FindByUserIDs(db, ids)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	out := make([]*dto.AdminReportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, toAdminReport(&reports[i], profiles))
	}
	return out, nil
}

func (s *adminService) UpdateReportStatus(db *gorm.DB, adminID, reportID string, req *dto.UpdateReportRequest) (*dto.AdminReportResponse, error) {
	report, err := s.reportRepo.FindByID(db, reportID)
	if err != nil {
		if errors.Is(err, repositories.ErrReportNotFound) {
			return nil, apperrors.NewNotFoundError("report", "Report not found")
		}
		return nil, apperrors.DatabaseError(err)
	}

	next := models.ReportStatus(req.Status)
	if !report.Status.CanTransitionTo(next) {
		return nil, apperrors.ErrInvalidReportTransition.WithDetails(map[string]string{
			"from": string(report.Status),
			"to":   string(next),
		})
	}
	if report.Status != next {
		now := time.Now()
		if err := s.reportRepo.UpdateStatus(db, reportID, next, adminID, now); err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		report.Status = next
		report.ReviewedBy = &adminID
		report.ReviewedAt = &now
		logger.Info("Report reviewed", "report_id", reportID, "status", next, "admin_id", adminID)
	}

	profiles, err := s.profileRepo.FindByUserIDs(db, []string{report.ReporterID, report.ReportedUserID})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return toAdminReport(report, profiles), nil
}

func (s *adminService) GetUsers(db *gorm.DB) ([]*dto.AdminUserResponse, error) {
	users, err := s.userRepo.FindAllWithProfiles(db)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	out := make([]*dto.AdminUserResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		resp := &dto.AdminUserResponse{
			UserID:       u.ID,
			Email:        u.Email,
			Role:         string(u.Role),
			FullName:     nameOrUnknown(u.Profile),
			CreatedAt:    u.CreatedAt,
			LastSignInAt: u.LastSignInAt,
		}
		if u.Profile != nil {
			resp.AvatarURL = u.Profile.DisplayAvatar()
			resp.IsBanned = u.Profile.IsBanned
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *adminService) ToggleBan(db *gorm.DB, adminID, userID string) (*dto.BanResponse, error) {
	if adminID == userID {
		return nil, apperrors.ErrCannotModifySelf
	}
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, handleProfileError(err)
	}

	banned := !profile.IsBanned
	if err := s.profileRepo.SetBanned(db, userID, banned); err != nil {
		return nil, handleProfileError(err)
	}
	logger.Info("Ban toggled", "user_id", userID, "banned", banned, "admin_id", adminID)
	return &dto.BanResponse{UserID: userID, IsBanned: banned}, nil
}

func toAdminReport(r *models.UserReport, profiles map[string]*models.Profile) *dto.AdminReportResponse {
	return &dto.AdminReportResponse{
		ID:               r.ID,
		ReporterID:       r.ReporterID,
		ReporterName:     nameOrUnknown(profiles[r.ReporterID]),
		ReportedUserID:   r.ReportedUserID,
		ReportedUserName: nameOrUnknown(profiles[r.ReportedUserID]),
		Reason:           string(r.Reason),
		Description:      r.Description,
		Status:           string(r.Status),
		ReviewedBy:       r.ReviewedBy,
		ReviewedAt:       r.ReviewedAt,
		CreatedAt:        r.CreatedAt,
	}
}
