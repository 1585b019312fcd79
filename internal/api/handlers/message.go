package handlers

import (
	"errors"
	"strconv"

	"github.com/campusswap/backend/internal/models"
	"github.com/campusswap/backend/internal/services"
	"github.com/campusswap/backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) PostMessage(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "chat is required")
		return
	}

	message, err := h.messageService.PostMessage(c.Request.Context(), req.ChatID, userID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			utils.SendValidationError(c, "Message text is required")
		case errors.Is(err, services.ErrChatNotFound):
			utils.SendNotFound(c, "Chat not found")
		case errors.Is(err, services.ErrNotParticipant):
			utils.SendForbidden(c, "Not a participant of this chat")
		default:
			utils.SendInternalError(c, "Failed to post message", err)
		}
		return
	}

	utils.SendCreated(c, "Message posted successfully", message)
}

func (h *MessageHandler) ListMessages(c *gin.Context) {
	userID := c.GetUint("user_id")

	chatID, err := strconv.ParseUint(c.Query("chat"), 10, 32)
	if err != nil || chatID == 0 {
		utils.SendValidationError(c, "chat query parameter is required")
		return
	}

	messages, err := h.messageService.ListMessages(c.Request.Context(), uint(chatID), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChatNotFound):
			utils.SendNotFound(c, "Chat not found")
		case errors.Is(err, services.ErrNotParticipant):
			utils.SendForbidden(c, "Not a participant of this chat")
		default:
			utils.SendInternalError(c, "Failed to fetch messages", err)
		}
		return
	}

	utils.SendSuccess(c, "Messages retrieved successfully", messages)
}
