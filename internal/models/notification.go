package models

import (
	"time"
)

// Notification kinds.
const (
	NotificationNewChat           = "new_chat"
	NotificationNewMessage        = "new_message"
	NotificationExchangeCompleted = "exchange_completed"
	NotificationRatingReceived    = "rating_received"
)

// Notification is a write-once fact; only the Read flag ever changes,
// and only from false to true.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RecipientID uint      `json:"recipient_id" gorm:"not null;index"`
	Kind        string    `json:"kind" gorm:"not null;default:new_message"`
	Text        string    `json:"text" gorm:"not null"`
	ChatID      *uint     `json:"chat_id,omitempty"`
	ListingID   *uint     `json:"listing_id,omitempty"`
	RatingID    *uint     `json:"rating_id,omitempty"`
	Read        bool      `json:"read" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
}
