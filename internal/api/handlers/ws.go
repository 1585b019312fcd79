package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/campusswap/backend/internal/realtime"
	"github.com/campusswap/backend/internal/services"
	"github.com/campusswap/backend/internal/utils"
	"github.com/campusswap/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced on the HTTP surface; the socket is
		// gated by the token check below.
		return true
	},
}

type WSHandler struct {
	hub         *realtime.Hub
	chatService *services.ChatService
	jwtSecret   string
}

func NewWSHandler(hub *realtime.Hub, chatService *services.ChatService, jwtSecret string) *WSHandler {
	return &WSHandler{hub: hub, chatService: chatService, jwtSecret: jwtSecret}
}

// Subscribe upgrades the connection and joins the chat's broadcast
// group. Browsers cannot set headers on websocket dials, so the token
// rides in the query string.
func (h *WSHandler) Subscribe(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Param("chat_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid chat ID")
		return
	}

	token := c.Query("token")
	if token == "" {
		utils.SendUnauthorized(c, "token query parameter required")
		return
	}

	claims, err := utils.ValidateToken(token, h.jwtSecret)
	if err != nil {
		utils.SendUnauthorized(c, "Invalid token")
		return
	}

	if err := h.chatService.IsParticipant(c.Request.Context(), uint(chatID), claims.UserID); err != nil {
		switch {
		case errors.Is(err, services.ErrChatNotFound):
			utils.SendNotFound(c, "Chat not found")
		case errors.Is(err, services.ErrNotParticipant):
			utils.SendForbidden(c, "Not a participant of this chat")
		default:
			utils.SendInternalError(c, "Failed to join chat", err)
		}
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("ws upgrade error: ", err)
		return
	}

	h.hub.Serve(conn, uint(chatID), claims.UserID)
}
