package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusswap/backend/internal/models"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService both generates notification rows from domain
// events and serves the user-facing notification endpoints.
//
// The generator methods take the caller's open transaction: a chat,
// message or rating write and its derived notifications commit or roll
// back together, so partial application is never observable. Each call
// appends a new row — this is an event log, not a dedup cache.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) ChatStarted(tx *gorm.DB, recipientID, chatID uint, listing *models.Listing) error {
	n := models.Notification{
		RecipientID: recipientID,
		Kind:        models.NotificationNewChat,
		Text:        fmt.Sprintf("New chat about your listing '%s'", listing.Title),
		ChatID:      &chatID,
		ListingID:   &listing.ID,
	}
	return tx.Create(&n).Error
}

func (s *NotificationService) MessagePosted(tx *gorm.DB, recipientID, chatID uint) error {
	n := models.Notification{
		RecipientID: recipientID,
		Kind:        models.NotificationNewMessage,
		Text:        fmt.Sprintf("New message in chat %d", chatID),
		ChatID:      &chatID,
	}
	return tx.Create(&n).Error
}

func (s *NotificationService) ExchangeCompleted(tx *gorm.DB, recipientID, chatID uint) error {
	n := models.Notification{
		RecipientID: recipientID,
		Kind:        models.NotificationExchangeCompleted,
		Text:        fmt.Sprintf("The exchange for chat %d was marked complete", chatID),
		ChatID:      &chatID,
	}
	return tx.Create(&n).Error
}

func (s *NotificationService) RatingReceived(tx *gorm.DB, recipientID, chatID, ratingID uint, evaluatorAlias string) error {
	n := models.Notification{
		RecipientID: recipientID,
		Kind:        models.NotificationRatingReceived,
		Text:        fmt.Sprintf("%s rated chat %d", evaluatorAlias, chatID),
		ChatID:      &chatID,
		RatingID:    &ratingID,
	}
	return tx.Create(&n).Error
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Where("recipient_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flips the read flag. The transition is one-way; marking an
// already read notification is a no-op success.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uint) (*models.Notification, error) {
	var notification models.Notification
	err := s.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", notificationID, userID).
		First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	if !notification.Read {
		if err := s.db.WithContext(ctx).Model(&notification).Update("read", true).Error; err != nil {
			return nil, err
		}
		notification.Read = true
	}
	return &notification, nil
}

// MarkAllRead marks every unread notification of the user and reports
// how many rows were updated.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", userID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}
