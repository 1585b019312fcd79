package models

import (
	"time"
)

// Participant roles inside a chat.
const (
	RoleAuthor    = "author"    // listing owner
	RoleRecipient = "recipient" // user who opened the chat
)

type Chat struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	ListingID         uint      `json:"listing_id" gorm:"not null;index"`
	ExchangeCompleted bool      `json:"exchange_completed" gorm:"default:false"`
	CreatedAt         time.Time `json:"created_at"`

	// Relations
	Listing      Listing           `json:"listing,omitempty"`
	Participants []ChatParticipant `json:"participants,omitempty" gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Messages     []Message         `json:"messages,omitempty" gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
}

// ChatParticipant is a user's membership in a chat. A user appears at
// most once per chat.
type ChatParticipant struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	ChatID uint   `json:"chat_id" gorm:"not null;uniqueIndex:idx_chat_user"`
	UserID uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_chat_user"`
	Role   string `json:"role" gorm:"default:recipient"`
	Rated  bool   `json:"rated" gorm:"default:false"`

	// Relations
	User User `json:"user,omitempty"`
}

// Message is append-only; there is no edit or delete flow.
type Message struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ChatID    uint      `json:"chat_id" gorm:"not null;index"`
	AuthorID  uint      `json:"author_id" gorm:"not null"`
	Text      string    `json:"text" gorm:"not null"`
	Read      bool      `json:"read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Author User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

type StartChatRequest struct {
	ListingID uint `json:"listing_id" binding:"required"`
}

type PostMessageRequest struct {
	ChatID uint   `json:"chat" binding:"required"`
	Text   string `json:"text"`
}
