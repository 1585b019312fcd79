// models/listing.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Listing struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	SkillTag    string    `json:"skill_tag" gorm:"index"`
	OwnerID     uint      `json:"owner_id" gorm:"not null;index"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Owner  User           `json:"owner,omitempty"`
	Images []ListingImage `json:"images" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

type ListingImage struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ListingID   uint      `gorm:"not null;index" json:"listing_id"`
	FileName    string    `gorm:"not null" json:"file_name"`
	S3Key       string    `gorm:"not null;unique" json:"s3_key"`
	S3URL       string    `gorm:"not null" json:"s3_url"`
	ContentType string    `gorm:"not null" json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

func (i *ListingImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Request structs for API
type CreateListingRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"required,min=1,max=2000"`
	SkillTag    string `json:"skill_tag" binding:"required,min=1,max=100"`
}

type UpdateListingRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	SkillTag    *string `json:"skill_tag,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
