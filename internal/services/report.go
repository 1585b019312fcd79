package services

import (
	"context"
	"errors"

	"github.com/campusswap/backend/internal/models"
	"github.com/campusswap/backend/internal/utils"
	"github.com/campusswap/backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReportNotFound  = errors.New("report not found")
	ErrReportModerated = errors.New("report already moderated")
)

type ReportService struct {
	db           *gorm.DB
	emailService *EmailService
}

func NewReportService(db *gorm.DB, emailService *EmailService) *ReportService {
	return &ReportService{db: db, emailService: emailService}
}

func (s *ReportService) Create(ctx context.Context, reporterID uint, req models.CreateReportRequest) (*models.Report, error) {
	var listing models.Listing
	err := s.db.WithContext(ctx).First(&listing, req.ListingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	report := models.Report{
		ReporterID: reporterID,
		ListingID:  req.ListingID,
		Reason:     utils.SanitizeString(req.Reason),
		Status:     models.ReportPending,
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns all reports for moderators, pending first.
func (s *ReportService) List(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	err := s.db.WithContext(ctx).
		Preload("Reporter").
		Preload("Listing").
		Order("CASE status WHEN 'pending' THEN 0 ELSE 1 END, created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// Moderate resolves a pending report. Approving also deactivates the
// reported listing. The reporter is mailed the outcome, best-effort.
func (s *ReportService) Moderate(ctx context.Context, reportID, moderatorID uint, action string) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).
		Preload("Reporter").
		Preload("Listing").
		First(&report, reportID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	if report.Status != models.ReportPending {
		return nil, ErrReportModerated
	}

	var status string
	switch action {
	case "approve":
		status = models.ReportApproved
	case "reject":
		status = models.ReportRejected
	default:
		return nil, errors.New("invalid action, use 'approve' or 'reject'")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&report).Updates(map[string]interface{}{
			"status":       status,
			"moderator_id": moderatorID,
		}).Error; err != nil {
			return err
		}
		if status == models.ReportApproved {
			return tx.Model(&models.Listing{}).
				Where("id = ?", report.ListingID).
				Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	report.Status = status
	report.ModeratorID = &moderatorID

	if s.emailService != nil && report.Reporter.Email != "" {
		go func(email, title, outcome string) {
			if err := s.emailService.SendReportOutcomeEmail(email, title, outcome); err != nil {
				logger.Warn("failed to send report outcome email: ", err)
			}
		}(report.Reporter.Email, report.Listing.Title, status)
	}

	return &report, nil
}
