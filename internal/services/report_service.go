package services

import (
	"barterly/internal/models"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"

	"gorm.io/gorm"
)

type ReportService interface {
	CreateReport(db *gorm.DB, userID string, req *dto.CreateReportRequest) error
}

type reportService struct {
	reportRepo  repositories.ReportRepository
	profileRepo repositories.ProfileRepository
}

func NewReportService(reportRepo repositories.ReportRepository, profileRepo repositories.ProfileRepository) ReportService {
	return &reportService{
		reportRepo:  reportRepo,
		profileRepo: profileRepo,
	}
}

func (s *reportService) CreateReport(db *gorm.DB, userID string, req *dto.CreateReportRequest) error {
	if req.ReportedUserID == userID {
		return apperrors.ErrSelfReport
	}
	reason := models.ReportReason(req.Reason)
	if !reason.IsValid() {
		return apperrors.ValidationError(map[string]string{"reason": "unknown report reason"})
	}
	if _, err := s.profileRepo.FindByUserID(db, req.ReportedUserID); err != nil {
		return handleProfileError(err)
	}

	report := &models.UserReport{
		ReporterID:     userID,
		ReportedUserID: req.ReportedUserID,
		Reason:         reason,
		Description:    req.Description,
		Status:         models.ReportStatusPending,
	}
	if err := s.reportRepo.Create(db, report); err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}
