package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/stayx/backend/internal/logger"
	"github.com/stayx/backend/internal/models"
	"github.com/stayx/backend/internal/storage"
)

// AuthHandler handles registration and session issuance. Identity lives in
// Firebase; this layer only correlates verified Firebase UIDs with profile
// rows and issues local session JWTs.
type AuthHandler struct {
	store        storage.Storage
	firebaseAuth *auth.Client
	jwtSecret    string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(store storage.Storage, firebaseAuthClient *auth.Client, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		store:        store,
		firebaseAuth: firebaseAuthClient,
		jwtSecret:    jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// Register creates a StayX profile for an already-authenticated Firebase
// identity. Username and email are pre-checked here; the storage layer
// rejects duplicates again as a last-resort guard.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.store.GetUserByUsername(req.Username); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Username already taken")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return httpError(err)
	}
	if _, err := h.store.GetUserByEmail(req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Email already registered")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return httpError(err)
	}

	user, err := h.store.CreateUser(&models.User{
		FirebaseID:  req.FirebaseID,
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Bio:         req.Bio,
		Interests:   req.Interests,
	})
	if err != nil {
		return httpError(err)
	}

	h.grantAchievement(user.ID, "Early Adopter")

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after registration")
	}

	return c.JSON(http.StatusCreated, echo.Map{"user": user, "token": token})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT for the
// matching profile. An identity without a profile gets 404 so the client
// can route to registration.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase login is not configured")
	}

	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.firebaseAuth.VerifyIDToken(context.Background(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	user, err := h.store.GetUserByFirebaseID(token.UID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No profile for this identity, register first")
		}
		return httpError(err)
	}

	localJWT, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user, "token": localJWT})
}

// grantAchievement awards a catalog achievement by name and records the
// matching activity. Grant failures are logged, never surfaced: a missing
// badge must not fail the request that triggered it.
func (h *AuthHandler) grantAchievement(userID uint, name string) {
	grantAchievement(h.store, userID, name)
}

// generateJWT generates a session JWT for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}

// grantAchievement is shared by the handlers that auto-award catalog
// achievements (registration, first connection).
func grantAchievement(store storage.Storage, userID uint, name string) {
	achievement, err := store.GetAchievementByName(name)
	if err != nil {
		logger.Log.Warnw("achievement lookup failed", "name", name, "error", err)
		return
	}
	if _, err := store.CreateUserAchievement(&models.UserAchievement{
		UserID:        userID,
		AchievementID: achievement.ID,
	}); err != nil {
		logger.Log.Warnw("achievement grant failed", "name", name, "user_id", userID, "error", err)
		return
	}
	if _, err := store.CreateActivity(&models.Activity{
		UserID: userID,
		Type:   models.ActivityAchievementEarned,
		Data:   models.ActivityData{"achievement_id": achievement.ID},
	}); err != nil {
		logger.Log.Warnw("achievement activity failed", "name", name, "user_id", userID, "error", err)
	}
}
