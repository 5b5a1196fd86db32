package repositories

import (
	"errors"
	"time"

	"barterly/internal/models"

	"gorm.io/gorm"
)

var ErrReportNotFound = errors.New("report not found")

type ReportRepository interface {
	Create(db *gorm.DB, report *models.UserReport) error
	FindByID(db *gorm.DB, id string) (*models.UserReport, error)
	FindAll(db *gorm.DB, status models.ReportStatus) ([]models.UserReport, error)
	UpdateStatus(db *gorm.DB, id string, status models.ReportStatus, reviewerID string, at time.Time) error
	CountByStatus(db *gorm.DB, status models.ReportStatus) (int64, error)
}

type ReportRepositoryImpl struct{}

func NewReportRepository() ReportRepository {
	return &ReportRepositoryImpl{}
}

func (r *ReportRepositoryImpl) Create(db *gorm.DB, report *models.UserReport) error {
	if report.Status == "" {
		report.Status = models.ReportStatusPending
	}
	return db.Create(report).Error
}

func (r *ReportRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.UserReport, error) {
	var report models.UserReport
	if err := db.First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepositoryImpl) FindAll(db *gorm.DB, status models.ReportStatus) ([]models.UserReport, error) {
	q := db.Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var reports []models.UserReport
	err := q.Find(&reports).Error
	return reports, err
}

func (r *ReportRepositoryImpl) UpdateStatus(db *gorm.DB, id string, status models.ReportStatus, reviewerID string, at time.Time) error {
	result := db.Model(&models.UserReport{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      status,
		"reviewed_by": reviewerID,
		"reviewed_at": at,
		"updated_at":  at,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}

func (r *ReportRepositoryImpl) CountByStatus(db *gorm.DB, status models.ReportStatus) (int64, error) {
	var count int64
	err := db.Model(&models.UserReport{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
