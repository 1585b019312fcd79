package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/campusswap/backend/internal/models"
	"github.com/campusswap/backend/internal/services"
	"github.com/campusswap/backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// StartChat opens (or returns) the requester's chat on a listing.
func (h *ChatHandler) StartChat(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.StartChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "listing_id is required")
		return
	}

	chat, err := h.chatService.StartOrGetChat(c.Request.Context(), req.ListingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			utils.SendNotFound(c, "Listing not found")
		case errors.Is(err, services.ErrSelfChat):
			utils.SendError(c, http.StatusBadRequest, "Cannot start a chat on your own listing", err)
		default:
			utils.SendInternalError(c, "Failed to start chat", err)
		}
		return
	}

	utils.SendCreated(c, "Chat ready", chat)
}

func (h *ChatHandler) GetChat(c *gin.Context) {
	userID := c.GetUint("user_id")

	chatID, err := strconv.ParseUint(c.Param("chat_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid chat ID")
		return
	}

	chat, err := h.chatService.GetChat(c.Request.Context(), uint(chatID), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChatNotFound):
			utils.SendNotFound(c, "Chat not found")
		case errors.Is(err, services.ErrNotParticipant):
			utils.SendForbidden(c, "Not a participant of this chat")
		default:
			utils.SendInternalError(c, "Failed to fetch chat", err)
		}
		return
	}

	utils.SendSuccess(c, "Chat retrieved successfully", chat)
}

func (h *ChatHandler) MyChats(c *gin.Context) {
	userID := c.GetUint("user_id")

	chats, err := h.chatService.MyChats(c.Request.Context(), userID)
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch chats", err)
		return
	}

	utils.SendSuccess(c, "Chats retrieved successfully", chats)
}

func (h *ChatHandler) CompleteExchange(c *gin.Context) {
	userID := c.GetUint("user_id")

	chatID, err := strconv.ParseUint(c.Param("chat_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid chat ID")
		return
	}

	chat, err := h.chatService.CompleteExchange(c.Request.Context(), uint(chatID), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChatNotFound):
			utils.SendNotFound(c, "Chat not found")
		case errors.Is(err, services.ErrNotParticipant):
			utils.SendForbidden(c, "Not a participant of this chat")
		default:
			utils.SendInternalError(c, "Failed to complete exchange", err)
		}
		return
	}

	utils.SendSuccess(c, "Exchange marked complete", chat)
}
