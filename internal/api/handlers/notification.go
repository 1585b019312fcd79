package handlers

import (
	"errors"
	"strconv"

	"github.com/campusswap/backend/internal/services"
	"github.com/campusswap/backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetUint("user_id")

	notifications, err := h.notificationService.List(c.Request.Context(), userID)
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch notifications", err)
		return
	}

	utils.SendSuccess(c, "Notifications retrieved successfully", notifications)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetUint("user_id")

	notificationID, err := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid notification ID")
		return
	}

	notification, err := h.notificationService.MarkRead(c.Request.Context(), uint(notificationID), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			utils.SendNotFound(c, "Notification not found")
			return
		}
		utils.SendInternalError(c, "Failed to mark notification read", err)
		return
	}

	utils.SendSuccess(c, "Notification marked read", notification)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetUint("user_id")

	count, err := h.notificationService.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		utils.SendInternalError(c, "Failed to mark notifications read", err)
		return
	}

	utils.SendSuccess(c, "All notifications marked read", gin.H{"count": count})
}
