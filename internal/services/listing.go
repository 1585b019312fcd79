package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/campusswap/backend/internal/models"
	"github.com/campusswap/backend/internal/utils"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	QueryTimeout    = 30 * time.Second
)

var (
	ErrNotListingOwner = errors.New("listing belongs to another user")
	ErrInvalidFilter   = errors.New("invalid filter parameters")
	ErrDatabaseQuery   = errors.New("database query failed")
)

type ListingService struct {
	db *gorm.DB
	s3 *S3Service
}

func NewListingService(db *gorm.DB, s3 *S3Service) *ListingService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &ListingService{db: db, s3: s3}
}

type ListingFilter struct {
	SkillTag string `form:"skill"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type ListingPage struct {
	Listings []models.Listing `json:"listings"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Pages    int              `json:"pages"`
}

// ValidateAndNormalize validates and normalizes filter parameters
func (f *ListingFilter) ValidateAndNormalize() error {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}

	f.Search = strings.TrimSpace(f.Search)
	f.SkillTag = strings.TrimSpace(f.SkillTag)

	if len(f.Search) > 255 {
		return fmt.Errorf("%w: search term too long", ErrInvalidFilter)
	}
	return nil
}

func (s *ListingService) Create(ctx context.Context, ownerID uint, req models.CreateListingRequest) (*models.Listing, error) {
	listing := models.Listing{
		Title:       utils.SanitizeString(req.Title),
		Description: utils.SanitizeString(req.Description),
		SkillTag:    utils.SanitizeString(req.SkillTag),
		OwnerID:     ownerID,
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(&listing).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to create listing: %v", ErrDatabaseQuery, err)
	}
	return &listing, nil
}

// GetListings retrieves active listings with filtering and pagination.
func (s *ListingService) GetListings(ctx context.Context, filter ListingFilter) (*ListingPage, error) {
	if err := filter.ValidateAndNormalize(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var listings []models.Listing
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Listing{}).Where("is_active = ?", true)
	query = s.applyFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to count listings: %v", ErrDatabaseQuery, err)
	}

	if total == 0 {
		return &ListingPage{
			Listings: []models.Listing{},
			Page:     filter.Page,
			Limit:    filter.Limit,
		}, nil
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.
		Preload("Owner").
		Preload("Images").
		Offset(offset).
		Limit(filter.Limit).
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to fetch listings: %v", ErrDatabaseQuery, err)
	}

	pages := int(total) / filter.Limit
	if int(total)%filter.Limit > 0 {
		pages++
	}

	return &ListingPage{
		Listings: listings,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
		Pages:    pages,
	}, nil
}

// GetListingByID retrieves a single active listing.
func (s *ListingService) GetListingByID(ctx context.Context, id uint) (*models.Listing, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: invalid listing ID", ErrInvalidFilter)
	}

	var listing models.Listing
	err := s.db.WithContext(ctx).
		Preload("Owner").
		Preload("Images").
		Where("id = ? AND is_active = ?", id, true).
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch listing: %v", ErrDatabaseQuery, err)
	}
	return &listing, nil
}

// Mine lists the user's own listings, inactive ones included.
func (s *ListingService) Mine(ctx context.Context, ownerID uint) ([]models.Listing, error) {
	var listings []models.Listing
	err := s.db.WithContext(ctx).
		Preload("Images").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch listings: %v", ErrDatabaseQuery, err)
	}
	return listings, nil
}

// Update applies partial changes. Owner only.
func (s *ListingService) Update(ctx context.Context, id, requesterID uint, req models.UpdateListingRequest) (*models.Listing, error) {
	listing, err := s.ownedListing(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = utils.SanitizeString(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = utils.SanitizeString(*req.Description)
	}
	if req.SkillTag != nil {
		updates["skill_tag"] = utils.SanitizeString(*req.SkillTag)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(listing).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("%w: failed to update listing: %v", ErrDatabaseQuery, err)
		}
	}
	return listing, nil
}

// Deactivate soft-deletes the listing; chats on it stay readable but no
// new chats can be opened. Owner only.
func (s *ListingService) Deactivate(ctx context.Context, id, requesterID uint) error {
	listing, err := s.ownedListing(ctx, id, requesterID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(listing).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("%w: failed to deactivate listing: %v", ErrDatabaseQuery, err)
	}
	return nil
}

// UploadImage stores the file on S3 and records it against the listing.
// Owner only.
func (s *ListingService) UploadImage(ctx context.Context, id, requesterID uint, file multipart.File, header *multipart.FileHeader) (*models.ListingImage, error) {
	listing, err := s.ownedListing(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	result, err := s.s3.UploadImage(file, header)
	if err != nil {
		return nil, err
	}

	image := models.ListingImage{
		ListingID:   listing.ID,
		FileName:    result.FileName,
		S3Key:       result.Key,
		S3URL:       result.URL,
		ContentType: result.ContentType,
		Size:        result.Size,
	}
	if err := s.db.WithContext(ctx).Create(&image).Error; err != nil {
		// keep the bucket consistent with the DB
		s.s3.DeleteImage(result.Key)
		return nil, fmt.Errorf("%w: failed to record image: %v", ErrDatabaseQuery, err)
	}
	return &image, nil
}

func (s *ListingService) ownedListing(ctx context.Context, id, requesterID uint) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.WithContext(ctx).First(&listing, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch listing: %v", ErrDatabaseQuery, err)
	}
	if listing.OwnerID != requesterID {
		return nil, ErrNotListingOwner
	}
	return &listing, nil
}

func (s *ListingService) applyFilters(query *gorm.DB, filter ListingFilter) *gorm.DB {
	if filter.SkillTag != "" {
		query = query.Where("LOWER(skill_tag) = ?", strings.ToLower(filter.SkillTag))
	}
	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ?",
			searchTerm, searchTerm,
		)
	}
	return query
}
