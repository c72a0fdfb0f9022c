package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stayx/backend/internal/models"
	"github.com/stayx/backend/internal/storage"
)

// ActivityHandler handles HTTP requests related to the activity feed
type ActivityHandler struct {
	store storage.Storage
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(store storage.Storage) *ActivityHandler {
	return &ActivityHandler{store: store}
}

// RegisterActivityRoutes registers activity-related routes
func (h *ActivityHandler) RegisterActivityRoutes(g *echo.Group) {
	g.GET("/activities", h.GetActivities)
}

// activityView is an activity enriched with the records its payload refers to.
type activityView struct {
	models.Activity
	Sender      *models.User        `json:"sender,omitempty"`
	Receiver    *models.User        `json:"receiver,omitempty"`
	Achievement *models.Achievement `json:"achievement,omitempty"`
}

// GetActivities returns the authenticated user's most recent activities,
// each enriched with the related user or achievement.
func (h *ActivityHandler) GetActivities(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	activities, err := h.store.GetUserActivities(userID, 0)
	if err != nil {
		return httpError(err)
	}

	views := make([]activityView, 0, len(activities))
	for _, activity := range activities {
		view := activityView{Activity: activity}
		switch activity.Type {
		case models.ActivityConnectionRequest, models.ActivityMessageReceived:
			if id, ok := payloadID(activity.Data, "sender_id"); ok {
				view.Sender, _ = h.store.GetUser(id)
			}
		case models.ActivityConnectionAccepted:
			if id, ok := payloadID(activity.Data, "receiver_id"); ok {
				view.Receiver, _ = h.store.GetUser(id)
			}
		case models.ActivityAchievementEarned:
			if id, ok := payloadID(activity.Data, "achievement_id"); ok {
				view.Achievement, _ = h.store.GetAchievement(id)
			}
		}
		views = append(views, view)
	}

	return c.JSON(http.StatusOK, views)
}

// payloadID reads a numeric id out of an activity payload. JSON round-trips
// store numbers as float64, direct writes keep uint.
func payloadID(data models.ActivityData, key string) (uint, bool) {
	switch v := data[key].(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}
