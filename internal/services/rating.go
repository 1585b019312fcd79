package services

import (
	"context"
	"errors"

	"github.com/campusswap/backend/internal/database"
	"github.com/campusswap/backend/internal/events"
	"github.com/campusswap/backend/internal/models"
	"github.com/campusswap/backend/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidScore = errors.New("score must be between 1 and 5")
	ErrAlreadyRated = errors.New("chat already rated by this user")
)

type RatingService struct {
	db            *gorm.DB
	notifications *NotificationService
	bus           *events.Bus
}

func NewRatingService(db *gorm.DB, notifications *NotificationService, bus *events.Bus) *RatingService {
	return &RatingService{db: db, notifications: notifications, bus: bus}
}

type RatingSummary struct {
	Ratings []models.Rating `json:"ratings"`
	Count   int             `json:"count"`
	Average float64         `json:"average"`
}

// RateChat records one rating per (chat, evaluator). The existence
// pre-check is advisory; the unique index on (chat_id, evaluator_id)
// rejects concurrent duplicates, surfaced as ErrAlreadyRated. The
// rating, the participant's rated flag and the rating_received fan-out
// commit as one unit.
func (s *RatingService) RateChat(ctx context.Context, chatID, evaluatorID uint, score int, comment string) (*models.Rating, error) {
	if !utils.IsValidScore(score) {
		return nil, ErrInvalidScore
	}

	var rating models.Rating

	err := database.Transact(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var chat models.Chat
		err := tx.First(&chat, chatID).Error
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
		if !isParticipant(participants, evaluatorID) {
			return ErrNotParticipant
		}

		var count int64
		err = tx.Model(&models.Rating{}).
			Where("chat_id = ? AND evaluator_id = ?", chatID, evaluatorID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyRated
		}

		rating = models.Rating{
			ChatID:      chatID,
			EvaluatorID: evaluatorID,
			Score:       score,
			Comment:     utils.SanitizeString(comment),
		}
		if err := tx.Create(&rating).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRated
			}
			return err
		}

		err = tx.Model(&models.ChatParticipant{}).
			Where("chat_id = ? AND user_id = ?", chatID, evaluatorID).
			Update("rated", true).Error
		if err != nil {
			return err
		}

		var evaluator models.User
		if err := tx.First(&evaluator, evaluatorID).Error; err != nil {
			return err
		}

		for _, p := range participants {
			if p.UserID == evaluatorID {
				continue
			}
			if err := s.notifications.RatingReceived(tx, p.UserID, chatID, rating.ID, evaluator.DisplayName()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(events.RatingSubmitted{
		RatingID:    rating.ID,
		ChatID:      chatID,
		EvaluatorID: evaluatorID,
		Score:       score,
	})
	return &rating, nil
}

// ReceivedRatings lists the ratings given to a user by their chat
// counterparts, newest first, with the running average.
func (s *RatingService) ReceivedRatings(ctx context.Context, userID uint) (*RatingSummary, error) {
	var ratings []models.Rating
	err := s.db.WithContext(ctx).
		Preload("Evaluator").
		Joins("JOIN chat_participants cp ON cp.chat_id = ratings.chat_id AND cp.user_id = ?", userID).
		Where("ratings.evaluator_id != ?", userID).
		Order("ratings.created_at DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}

	summary := &RatingSummary{Ratings: ratings, Count: len(ratings)}
	if len(ratings) > 0 {
		total := 0
		for _, r := range ratings {
			total += r.Score
		}
		summary.Average = float64(total) / float64(len(ratings))
	}
	return summary, nil
}
