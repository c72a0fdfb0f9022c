package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/stayx/backend/internal/logger"
	"github.com/stayx/backend/internal/models"
	"github.com/stayx/backend/internal/storage"
)

// MessageHandler handles HTTP requests related to direct messages
type MessageHandler struct {
	store storage.Storage
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(store storage.Storage) *MessageHandler {
	return &MessageHandler{store: store}
}

// RegisterMessageRoutes registers message-related routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.GET("/messages/:userId", h.GetConversation)
	g.POST("/messages", h.SendMessage)
}

// GetConversation returns the conversation with another user, oldest first,
// and marks the other side's unread messages as read.
func (h *MessageHandler) GetConversation(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	otherID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	messages, err := h.store.GetConversation(userID, uint(otherID), 0)
	if err != nil {
		return httpError(err)
	}

	for i, msg := range messages {
		if msg.SenderID == uint(otherID) && !msg.Read {
			updated, err := h.store.MarkMessageAsRead(msg.ID)
			if err != nil {
				logger.Log.Warnw("marking message read failed", "message_id", msg.ID, "error", err)
				continue
			}
			messages[i] = *updated
		}
	}

	return c.JSON(http.StatusOK, messages)
}

// SendMessage sends a direct message. The storage layer rejects the send if
// the two users have no accepted connection.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	msg, err := h.store.CreateMessage(&models.Message{
		SenderID:   userID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	})
	if err != nil {
		return httpError(err)
	}

	if _, err := h.store.CreateActivity(&models.Activity{
		UserID: req.ReceiverID,
		Type:   models.ActivityMessageReceived,
		Data:   models.ActivityData{"message_id": msg.ID, "sender_id": userID},
	}); err != nil {
		logger.Log.Warnw("message activity failed", "message_id", msg.ID, "error", err)
	}

	return c.JSON(http.StatusCreated, msg)
}
