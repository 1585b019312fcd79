package models

import (
	"time"
)

// Report statuses.
const (
	ReportPending  = "pending"
	ReportApproved = "approved"
	ReportRejected = "rejected"
)

type Report struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ReporterID  uint      `json:"reporter_id" gorm:"not null;index"`
	ListingID   uint      `json:"listing_id" gorm:"not null;index"`
	Reason      string    `json:"reason" gorm:"not null"`
	Status      string    `json:"status" gorm:"default:pending"`
	ModeratorID *uint     `json:"moderator_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Reporter User    `json:"reporter,omitempty" gorm:"foreignKey:ReporterID"`
	Listing  Listing `json:"listing,omitempty"`
}

type CreateReportRequest struct {
	ListingID uint   `json:"listing_id" binding:"required"`
	Reason    string `json:"reason" binding:"required,min=1,max=2000"`
}

type ModerateReportRequest struct {
	Action string `json:"action" binding:"required"` // "approve" or "reject"
}
