package storage

import (
	"errors"

	"github.com/stayx/backend/internal/models"
)

// Sentinel errors shared by every Storage implementation. Callers branch on
// these with errors.Is; backend-specific errors (GORM, driver) are translated
// before they leave the package so both implementations are indistinguishable.
var (
	// ErrNotFound is returned by singular lookups when no record matches.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a create would violate a uniqueness
	// invariant (duplicate username/email, duplicate connection pair).
	ErrConflict = errors.New("record conflict")
	// ErrNotConnected is returned when a message is sent between users
	// without an accepted connection.
	ErrNotConnected = errors.New("users are not connected")
	// ErrTerminalState is returned when transitioning a connection that is
	// already accepted or rejected. Terminal states reject further
	// transitions.
	ErrTerminalState = errors.New("connection already resolved")
	// ErrInvalid is returned for malformed input the storage layer guards
	// against itself (self-connection, empty message content).
	ErrInvalid = errors.New("invalid input")
)

// Default result-count limits applied when a caller passes limit <= 0.
const (
	DefaultSearchLimit         = 10
	DefaultConversationLimit   = 50
	DefaultMessagesLimit       = 50
	DefaultActivitiesLimit     = 20
	DefaultRecommendationLimit = 10
)

// Recommendation pairs a candidate user with their match score.
type Recommendation struct {
	User       *models.User `json:"user"`
	MatchScore int          `json:"match_score"`
}

// Storage is the capability contract every persistence backend must satisfy.
// The in-memory and Postgres implementations are behaviorally equivalent for
// every operation; callers pick one at startup via constructor injection.
type Storage interface {
	// User operations
	GetUser(id uint) (*models.User, error)
	GetUserByFirebaseID(firebaseID string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(user *models.User) (*models.User, error)
	UpdateUser(id uint, update *models.UpdateUserRequest) (*models.User, error)
	SearchUsers(query string, limit int) ([]models.User, error)

	// Connection operations
	GetConnection(id uint) (*models.Connection, error)
	GetConnectionByUsers(userAID, userBID uint) (*models.Connection, error)
	GetUserConnections(userID uint, status string) ([]models.Connection, error)
	CreateConnection(conn *models.Connection) (*models.Connection, error)
	UpdateConnection(id uint, status string) (*models.Connection, error)

	// Message operations
	GetMessage(id uint) (*models.Message, error)
	GetConversation(userAID, userBID uint, limit int) ([]models.Message, error)
	GetUserMessages(userID uint, limit int) ([]models.Message, error)
	CreateMessage(msg *models.Message) (*models.Message, error)
	MarkMessageAsRead(id uint) (*models.Message, error)

	// Activity operations
	GetActivity(id uint) (*models.Activity, error)
	GetUserActivities(userID uint, limit int) ([]models.Activity, error)
	CreateActivity(activity *models.Activity) (*models.Activity, error)

	// Achievement operations
	GetAchievement(id uint) (*models.Achievement, error)
	GetAchievementByName(name string) (*models.Achievement, error)
	GetAllAchievements() ([]models.Achievement, error)
	CreateAchievement(a *models.Achievement) (*models.Achievement, error)

	// User achievement operations
	GetUserAchievement(userID, achievementID uint) (*models.UserAchievement, error)
	GetUserAchievements(userID uint) ([]models.UserAchievement, error)
	CreateUserAchievement(ua *models.UserAchievement) (*models.UserAchievement, error)

	// Recommendation operations
	GetRecommendedConnections(userID uint, limit int) ([]Recommendation, error)
	CalculateMatchScore(userAID, userBID uint) (int, error)
}
