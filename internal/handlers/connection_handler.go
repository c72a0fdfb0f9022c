package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/stayx/backend/internal/logger"
	"github.com/stayx/backend/internal/models"
	"github.com/stayx/backend/internal/storage"
)

// ConnectionHandler handles HTTP requests related to connections
type ConnectionHandler struct {
	store storage.Storage
}

// NewConnectionHandler creates a new ConnectionHandler
func NewConnectionHandler(store storage.Storage) *ConnectionHandler {
	return &ConnectionHandler{store: store}
}

// RegisterConnectionRoutes registers connection-related routes
func (h *ConnectionHandler) RegisterConnectionRoutes(g *echo.Group) {
	g.GET("/connections", h.GetConnections)
	g.POST("/connections", h.CreateConnection)
	g.PATCH("/connections/:id", h.UpdateConnection)
}

// connectionView is a connection enriched with the other party's profile.
type connectionView struct {
	models.Connection
	User *models.User `json:"user,omitempty"`
}

// GetConnections lists the authenticated user's connections, optionally
// filtered by status, each enriched with the other user's profile.
func (h *ConnectionHandler) GetConnections(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	conns, err := h.store.GetUserConnections(userID, c.QueryParam("status"))
	if err != nil {
		return httpError(err)
	}

	views := make([]connectionView, 0, len(conns))
	for _, conn := range conns {
		otherID := conn.SenderID
		if conn.SenderID == userID {
			otherID = conn.ReceiverID
		}
		other, err := h.store.GetUser(otherID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return httpError(err)
		}
		views = append(views, connectionView{Connection: conn, User: other})
	}
	return c.JSON(http.StatusOK, views)
}

// CreateConnection sends a connection request. The match score is computed
// once here and stored immutably on the connection.
func (h *ConnectionHandler) CreateConnection(c echo.Context) error {
	sender, err := currentUser(c, h.store)
	if err != nil {
		return err
	}

	var req models.CreateConnectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.ReceiverID == sender.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot send a connection request to yourself")
	}

	if _, err := h.store.GetUser(req.ReceiverID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Receiver user not found")
		}
		return httpError(err)
	}

	if _, err := h.store.GetConnectionByUsers(sender.ID, req.ReceiverID); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Connection already exists")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return httpError(err)
	}

	matchScore, err := h.store.CalculateMatchScore(sender.ID, req.ReceiverID)
	if err != nil {
		return httpError(err)
	}

	conn, err := h.store.CreateConnection(&models.Connection{
		SenderID:     sender.ID,
		ReceiverID:   req.ReceiverID,
		Status:       models.ConnectionPending,
		AIMatchScore: matchScore,
	})
	if err != nil {
		return httpError(err)
	}

	if _, err := h.store.CreateActivity(&models.Activity{
		UserID: req.ReceiverID,
		Type:   models.ActivityConnectionRequest,
		Data:   models.ActivityData{"connection_id": conn.ID, "sender_id": sender.ID},
	}); err != nil {
		logger.Log.Warnw("connection request activity failed", "connection_id", conn.ID, "error", err)
	}

	// First connection earns the Network Starter badge.
	senderConns, err := h.store.GetUserConnections(sender.ID, "")
	if err == nil && len(senderConns) == 1 {
		grantAchievement(h.store, sender.ID, "Network Starter")
	}

	return c.JSON(http.StatusCreated, conn)
}

// UpdateConnection accepts or rejects a pending connection request. Only the
// receiver may do this; accepted and rejected are terminal.
func (h *ConnectionHandler) UpdateConnection(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	connectionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid connection ID")
	}

	var req models.UpdateConnectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	conn, err := h.store.GetConnection(uint(connectionID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Connection not found")
		}
		return httpError(err)
	}
	if conn.ReceiverID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the receiver can update this connection")
	}

	updated, err := h.store.UpdateConnection(uint(connectionID), req.Status)
	if err != nil {
		return httpError(err)
	}

	if updated.Status == models.ConnectionAccepted {
		if _, err := h.store.CreateActivity(&models.Activity{
			UserID: updated.SenderID,
			Type:   models.ActivityConnectionAccepted,
			Data:   models.ActivityData{"connection_id": updated.ID, "receiver_id": userID},
		}); err != nil {
			logger.Log.Warnw("connection accepted activity failed", "connection_id", updated.ID, "error", err)
		}
	}

	return c.JSON(http.StatusOK, updated)
}
