package services

import (
	"context"
	"errors"

	"github.com/campusswap/backend/internal/database"
	"github.com/campusswap/backend/internal/events"
	"github.com/campusswap/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrChatNotFound    = errors.New("chat not found")
	ErrSelfChat        = errors.New("cannot start a chat on your own listing")
	ErrNotParticipant  = errors.New("not a participant of this chat")
)

type ChatService struct {
	db            *gorm.DB
	notifications *NotificationService
	bus           *events.Bus
}

func NewChatService(db *gorm.DB, notifications *NotificationService, bus *events.Bus) *ChatService {
	return &ChatService{db: db, notifications: notifications, bus: bus}
}

// StartOrGetChat opens the chat between the requester and the owner of
// an active listing, or returns the existing one. Safe to call
// repeatedly: there is exactly one chat per (listing, pair), enforced by
// locking the listing row so racing requests serialize on the creation
// path. The new_chat notification for the owner commits atomically with
// the chat itself.
func (s *ChatService) StartOrGetChat(ctx context.Context, listingID, requesterID uint) (*models.Chat, error) {
	var (
		chatID  uint
		created bool
		ownerID uint
	)

	err := database.Transact(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		created = false

		var listing models.Listing
		err := database.LockForUpdate(tx).
			Where("id = ? AND is_active = ?", listingID, true).
			First(&listing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return err
		}

		if listing.OwnerID == requesterID {
			return ErrSelfChat
		}
		ownerID = listing.OwnerID

		// The owner is a participant of every chat on their listing, so
		// the (listing, pair) chat is the one where the requester appears.
		var existing models.Chat
		err = tx.Joins("JOIN chat_participants cp ON cp.chat_id = chats.id").
			Where("chats.listing_id = ? AND cp.user_id = ?", listingID, requesterID).
			First(&existing).Error
		if err == nil {
			chatID = existing.ID
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		chat := models.Chat{ListingID: listingID}
		if err := tx.Create(&chat).Error; err != nil {
			return err
		}

		participants := []models.ChatParticipant{
			{ChatID: chat.ID, UserID: listing.OwnerID, Role: models.RoleAuthor},
			{ChatID: chat.ID, UserID: requesterID, Role: models.RoleRecipient},
		}
		if err := tx.Create(&participants).Error; err != nil {
			return err
		}

		if err := s.notifications.ChatStarted(tx, listing.OwnerID, chat.ID, &listing); err != nil {
			return err
		}

		chatID = chat.ID
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	chat, err := s.loadChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if created {
		s.bus.Publish(events.ChatStarted{
			ChatID:    chat.ID,
			ListingID: listingID,
			AuthorID:  ownerID,
			StarterID: requesterID,
		})
	}
	return chat, nil
}

// CompleteExchange marks the chat's exchange as finished. Any
// participant may complete; the flag is monotonic, so repeating the call
// succeeds without emitting another round of notifications.
func (s *ChatService) CompleteExchange(ctx context.Context, chatID, requesterID uint) (*models.Chat, error) {
	transitioned := false

	err := database.Transact(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		transitioned = false

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
		if !isParticipant(participants, requesterID) {
			return ErrNotParticipant
		}

		if chat.ExchangeCompleted {
			return nil
		}

		if err := tx.Model(&chat).Update("exchange_completed", true).Error; err != nil {
			return err
		}

		for _, p := range participants {
			if p.UserID == requesterID {
				continue
			}
			if err := s.notifications.ExchangeCompleted(tx, p.UserID, chatID); err != nil {
				return err
			}
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.bus.Publish(events.ExchangeCompleted{ChatID: chatID, CompletedBy: requesterID})
	}
	return s.loadChat(ctx, chatID)
}

// GetChat returns the chat with participants and messages. Participants
// only.
func (s *ChatService) GetChat(ctx context.Context, chatID, requesterID uint) (*models.Chat, error) {
	if err := s.requireParticipant(ctx, chatID, requesterID); err != nil {
		return nil, err
	}

	var chat models.Chat
	err := s.db.WithContext(ctx).
		Preload("Listing").
		Preload("Participants.User").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&chat, chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return &chat, nil
}

// MyChats lists the chats the user participates in, newest first.
func (s *ChatService) MyChats(ctx context.Context, userID uint) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.db.WithContext(ctx).
		Joins("JOIN chat_participants cp ON cp.chat_id = chats.id").
		Where("cp.user_id = ?", userID).
		Order("chats.created_at DESC").
		Preload("Listing").
		Preload("Participants.User").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

// IsParticipant reports whether the user belongs to the chat, with
// ErrChatNotFound / ErrNotParticipant as the failure modes.
func (s *ChatService) IsParticipant(ctx context.Context, chatID, userID uint) error {
	return s.requireParticipant(ctx, chatID, userID)
}

func (s *ChatService) loadChat(ctx context.Context, chatID uint) (*models.Chat, error) {
	var chat models.Chat
	err := s.db.WithContext(ctx).
		Preload("Listing").
		Preload("Participants.User").
		First(&chat, chatID).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *ChatService) requireParticipant(ctx context.Context, chatID, userID uint) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("id = ?", chatID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrChatNotFound
	}

	err = s.db.WithContext(ctx).
		Model(&models.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotParticipant
	}
	return nil
}

func chatParticipants(tx *gorm.DB, chatID uint) ([]models.ChatParticipant, error) {
	var participants []models.ChatParticipant
	err := tx.Where("chat_id = ?", chatID).Find(&participants).Error
	return participants, err
}

func isParticipant(participants []models.ChatParticipant, userID uint) bool {
	for _, p := range participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
