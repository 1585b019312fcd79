package models

import (
	"time"
)

// Rating is one participant's score for a finished exchange. The unique
// index on (chat_id, evaluator_id) is the source of truth for the
// one-rating-per-evaluator rule; service pre-checks are advisory.
type Rating struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ChatID      uint      `json:"chat_id" gorm:"not null;uniqueIndex:idx_chat_evaluator"`
	EvaluatorID uint      `json:"evaluator_id" gorm:"not null;uniqueIndex:idx_chat_evaluator"`
	Score       int       `json:"score" gorm:"check:score >= 1 AND score <= 5"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Evaluator User `json:"evaluator,omitempty" gorm:"foreignKey:EvaluatorID"`
	Chat      Chat `json:"chat,omitempty"`
}

type CreateRatingRequest struct {
	ChatID  uint   `json:"chat" binding:"required"`
	Score   int    `json:"score" binding:"required"`
	Comment string `json:"comment"`
}
