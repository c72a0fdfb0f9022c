package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stayx/backend/internal/models"
	"github.com/stayx/backend/internal/storage"
)

// AchievementHandler handles HTTP requests related to achievements
type AchievementHandler struct {
	store storage.Storage
}

// NewAchievementHandler creates a new AchievementHandler
func NewAchievementHandler(store storage.Storage) *AchievementHandler {
	return &AchievementHandler{store: store}
}

// RegisterAchievementRoutes registers achievement-related routes
func (h *AchievementHandler) RegisterAchievementRoutes(g *echo.Group) {
	g.GET("/achievements", h.GetAchievements)
	g.GET("/achievements/mine", h.GetUserAchievements)
}

// GetAchievements lists the full achievement catalog
func (h *AchievementHandler) GetAchievements(c echo.Context) error {
	achievements, err := h.store.GetAllAchievements()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, achievements)
}

// userAchievementView is a grant enriched with the catalog entry.
type userAchievementView struct {
	models.UserAchievement
	Achievement *models.Achievement `json:"achievement,omitempty"`
}

// GetUserAchievements lists the authenticated user's earned achievements
func (h *AchievementHandler) GetUserAchievements(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	grants, err := h.store.GetUserAchievements(userID)
	if err != nil {
		return httpError(err)
	}

	views := make([]userAchievementView, 0, len(grants))
	for _, grant := range grants {
		achievement, _ := h.store.GetAchievement(grant.AchievementID)
		views = append(views, userAchievementView{UserAchievement: grant, Achievement: achievement})
	}
	return c.JSON(http.StatusOK, views)
}
