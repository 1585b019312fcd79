package services

import (
	"context"
	"errors"
	"time"

	"github.com/campusswap/backend/internal/database"
	"github.com/campusswap/backend/internal/events"
	"github.com/campusswap/backend/internal/models"
	"github.com/campusswap/backend/internal/utils"
	"gorm.io/gorm"
)

var ErrEmptyMessage = errors.New("message text is required")

type MessageService struct {
	db            *gorm.DB
	notifications *NotificationService
	bus           *events.Bus
}

func NewMessageService(db *gorm.DB, notifications *NotificationService, bus *events.Bus) *MessageService {
	return &MessageService{db: db, notifications: notifications, bus: bus}
}

type MessageResponse struct {
	ID          uint   `json:"id"`
	ChatID      uint   `json:"chat_id"`
	AuthorID    uint   `json:"author_id"`
	AuthorAlias string `json:"author_alias"`
	Text        string `json:"text"`
	Read        bool   `json:"read"`
	CreatedAt   string `json:"created_at"`
}

// PostMessage appends a message to the chat and fans out a new_message
// notification to every other participant. The chat row is locked for
// the duration of the insert, which keeps messages in one chat strictly
// ordered under concurrent writers. The realtime push happens after the
// durable write commits and is best-effort only.
func (s *MessageService) PostMessage(ctx context.Context, chatID, authorID uint, text string) (*models.Message, error) {
	text = utils.SanitizeString(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	var (
		message models.Message
		author  models.User
	)

	err := database.Transact(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var chat models.Chat
		err := database.LockForUpdate(tx).First(&chat, chatID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChatNotFound
			}
			return err
		}

		participants, err := chatParticipants(tx, chatID)
		if err != nil {
			return err
		}
		if !isParticipant(participants, authorID) {
			return ErrNotParticipant
		}

		if err := tx.First(&author, authorID).Error; err != nil {
			return err
		}

		message = models.Message{ChatID: chatID, AuthorID: authorID, Text: text}
		if err := tx.Create(&message).Error; err != nil {
			return err
		}

		for _, p := range participants {
			if p.UserID == authorID {
				continue
			}
			if err := s.notifications.MessagePosted(tx, p.UserID, chatID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(events.MessagePosted{
		MessageID:   message.ID,
		ChatID:      chatID,
		AuthorID:    authorID,
		AuthorAlias: author.DisplayName(),
		Text:        message.Text,
		CreatedAt:   message.CreatedAt,
	})
	return &message, nil
}

// ListMessages returns the chat's messages in nondecreasing creation
// order. Participants only.
func (s *MessageService) ListMessages(ctx context.Context, chatID, requesterID uint) ([]MessageResponse, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("id = ?", chatID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrChatNotFound
	}

	err = s.db.WithContext(ctx).
		Model(&models.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatID, requesterID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotParticipant
	}

	var messages []models.Message
	err = s.db.WithContext(ctx).
		Preload("Author").
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, MessageResponse{
			ID:          m.ID,
			ChatID:      m.ChatID,
			AuthorID:    m.AuthorID,
			AuthorAlias: m.Author.DisplayName(),
			Text:        m.Text,
			Read:        m.Read,
			CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return response, nil
}
