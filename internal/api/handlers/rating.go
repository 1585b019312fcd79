package handlers

import (
	"errors"
	"strconv"

	"github.com/campusswap/backend/internal/models"
	"github.com/campusswap/backend/internal/services"
	"github.com/campusswap/backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	ratingService *services.RatingService
}

func NewRatingHandler(ratingService *services.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

func (h *RatingHandler) RateChat(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "chat and score are required")
		return
	}

	rating, err := h.ratingService.RateChat(c.Request.Context(), req.ChatID, userID, req.Score, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidScore):
			utils.SendValidationError(c, "Score must be between 1 and 5")
		case errors.Is(err, services.ErrChatNotFound):
			utils.SendNotFound(c, "Chat not found")
		case errors.Is(err, services.ErrNotParticipant):
			utils.SendForbidden(c, "Not a participant of this chat")
		case errors.Is(err, services.ErrAlreadyRated):
			utils.SendConflict(c, "You already rated this chat", err)
		default:
			utils.SendInternalError(c, "Failed to rate chat", err)
		}
		return
	}

	utils.SendCreated(c, "Rating recorded successfully", rating)
}

func (h *RatingHandler) ReceivedRatings(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid user ID")
		return
	}

	summary, err := h.ratingService.ReceivedRatings(c.Request.Context(), uint(targetID))
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch ratings", err)
		return
	}

	utils.SendSuccess(c, "Ratings retrieved successfully", summary)
}
