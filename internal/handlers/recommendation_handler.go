package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/stayx/backend/internal/storage"
)

// RecommendationHandler handles HTTP requests for connection recommendations
type RecommendationHandler struct {
	store storage.Storage
}

// NewRecommendationHandler creates a new RecommendationHandler
func NewRecommendationHandler(store storage.Storage) *RecommendationHandler {
	return &RecommendationHandler{store: store}
}

// RegisterRecommendationRoutes registers recommendation-related routes
func (h *RecommendationHandler) RegisterRecommendationRoutes(g *echo.Group) {
	g.GET("/recommendations", h.GetRecommendations)
}

// GetRecommendations returns unconnected users ranked by match score
func (h *RecommendationHandler) GetRecommendations(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit")
		}
		limit = parsed
	}

	recommendations, err := h.store.GetRecommendedConnections(userID, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, recommendations)
}
