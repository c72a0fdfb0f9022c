package storage

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/stayx/backend/internal/models"
)

// GormStorage is the Postgres-backed Storage implementation. Filtering,
// sorting, and limiting are delegated to the query engine; uniqueness is
// enforced by the unique indexes declared on the models and translated back
// into the package's sentinel errors, so callers cannot tell this apart from
// MemoryStorage except by persistence.
type GormStorage struct {
	db *gorm.DB

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewGormStorage wraps an open GORM connection. The connection must be
// opened with TranslateError enabled so duplicate-key violations surface as
// gorm.ErrDuplicatedKey.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Migrate creates or updates the schema for all StayX entities.
func (s *GormStorage) Migrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Connection{},
		&models.Message{},
		&models.Activity{},
		&models.Achievement{},
		&models.UserAchievement{},
	)
}

// SeedAchievements inserts the static achievement catalog, skipping entries
// that already exist. Safe to run on every startup.
func (s *GormStorage) SeedAchievements() error {
	for _, a := range defaultAchievements {
		achievement := a
		err := s.db.Where("name = ?", achievement.Name).FirstOrCreate(&achievement).Error
		if err != nil {
			return fmt.Errorf("seeding achievement %q: %w", a.Name, err)
		}
	}
	return nil
}

// translateErr maps GORM errors onto the package sentinels.
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}

// User operations

func (s *GormStorage) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("user %d: %w", id, translateErr(err))
	}
	return &user, nil
}

func (s *GormStorage) GetUserByFirebaseID(firebaseID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("firebase_id = ?", firebaseID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("firebase id %q: %w", firebaseID, translateErr(err))
	}
	return &user, nil
}

func (s *GormStorage) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, fmt.Errorf("username %q: %w", username, translateErr(err))
	}
	return &user, nil
}

func (s *GormStorage) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("email %q: %w", email, translateErr(err))
	}
	return &user, nil
}

func (s *GormStorage) CreateUser(user *models.User) (*models.User, error) {
	record := *user
	record.ID = 0
	now := time.Now()
	record.CreatedAt = now
	record.LastActive = now
	if record.Level < 1 {
		record.Level = 1
	}
	if record.Interests == nil {
		record.Interests = []string{}
	}

	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("creating user %q: %w", record.Username, translateErr(err))
	}
	return &record, nil
}

func (s *GormStorage) UpdateUser(id uint, update *models.UpdateUserRequest) (*models.User, error) {
	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return translateErr(err)
		}

		if update.DisplayName != nil {
			user.DisplayName = *update.DisplayName
		}
		if update.PhotoURL != nil {
			user.PhotoURL = *update.PhotoURL
		}
		if update.Bio != nil {
			user.Bio = *update.Bio
		}
		if update.Interests != nil {
			user.Interests = append([]string(nil), (*update.Interests)...)
		}
		if update.Level != nil {
			user.Level = *update.Level
		}
		user.LastActive = time.Now()

		return translateErr(tx.Save(&user).Error)
	})
	if err != nil {
		return nil, fmt.Errorf("updating user %d: %w", id, err)
	}
	return &user, nil
}

func (s *GormStorage) SearchUsers(query string, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	pattern := "%" + strings.ToLower(query) + "%"

	var users []models.User
	err := s.db.
		Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ? OR LOWER(bio) LIKE ?",
			pattern, pattern, pattern).
		Order("id").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", translateErr(err))
	}
	return users, nil
}

// Connection operations

func (s *GormStorage) GetConnection(id uint) (*models.Connection, error) {
	var conn models.Connection
	if err := s.db.First(&conn, id).Error; err != nil {
		return nil, fmt.Errorf("connection %d: %w", id, translateErr(err))
	}
	return &conn, nil
}

func (s *GormStorage) GetConnectionByUsers(userAID, userBID uint) (*models.Connection, error) {
	var conn models.Connection
	err := s.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userAID, userBID, userBID, userAID).
		First(&conn).Error
	if err != nil {
		return nil, fmt.Errorf("connection between %d and %d: %w", userAID, userBID, translateErr(err))
	}
	return &conn, nil
}

func (s *GormStorage) GetUserConnections(userID uint, status string) ([]models.Connection, error) {
	q := s.db.Where("sender_id = ? OR receiver_id = ?", userID, userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var conns []models.Connection
	if err := q.Order("id").Find(&conns).Error; err != nil {
		return nil, fmt.Errorf("connections for user %d: %w", userID, translateErr(err))
	}
	return conns, nil
}

func (s *GormStorage) CreateConnection(conn *models.Connection) (*models.Connection, error) {
	if conn.SenderID == conn.ReceiverID {
		return nil, fmt.Errorf("cannot connect a user to themselves: %w", ErrInvalid)
	}

	record := *conn
	record.ID = 0
	if record.Status == "" {
		record.Status = models.ConnectionPending
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Connection
		err := tx.
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				record.SenderID, record.ReceiverID, record.ReceiverID, record.SenderID).
			First(&existing).Error
		if err == nil {
			return fmt.Errorf("connection between %d and %d already exists: %w",
				record.SenderID, record.ReceiverID, ErrConflict)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return translateErr(err)
		}
		return translateErr(tx.Create(&record).Error)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *GormStorage) UpdateConnection(id uint, status string) (*models.Connection, error) {
	if status != models.ConnectionAccepted && status != models.ConnectionRejected {
		return nil, fmt.Errorf("status %q: %w", status, ErrInvalid)
	}

	var conn models.Connection
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&conn, id).Error; err != nil {
			return fmt.Errorf("connection %d: %w", id, translateErr(err))
		}
		if conn.Status != models.ConnectionPending {
			return fmt.Errorf("connection %d is %s: %w", id, conn.Status, ErrTerminalState)
		}

		conn.Status = status
		conn.UpdatedAt = time.Now()
		return translateErr(tx.Save(&conn).Error)
	})
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// Message operations

func (s *GormStorage) GetMessage(id uint) (*models.Message, error) {
	var msg models.Message
	if err := s.db.First(&msg, id).Error; err != nil {
		return nil, fmt.Errorf("message %d: %w", id, translateErr(err))
	}
	return &msg, nil
}

func (s *GormStorage) GetConversation(userAID, userBID uint, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultConversationLimit
	}

	// Fetch the most recent limit messages, then flip to ascending order.
	var msgs []models.Message
	err := s.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userAID, userBID, userBID, userAID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("conversation between %d and %d: %w", userAID, userBID, translateErr(err))
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *GormStorage) GetUserMessages(userID uint, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultMessagesLimit
	}

	var msgs []models.Message
	err := s.db.
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("messages for user %d: %w", userID, translateErr(err))
	}
	return msgs, nil
}

func (s *GormStorage) CreateMessage(msg *models.Message) (*models.Message, error) {
	if strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("message content is empty: %w", ErrInvalid)
	}

	record := *msg
	record.ID = 0
	record.Read = false
	record.CreatedAt = time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var conn models.Connection
		err := tx.
			Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
				record.SenderID, record.ReceiverID, record.ReceiverID, record.SenderID,
				models.ConnectionAccepted).
			First(&conn).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("no accepted connection between %d and %d: %w",
					record.SenderID, record.ReceiverID, ErrNotConnected)
			}
			return translateErr(err)
		}
		return translateErr(tx.Create(&record).Error)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *GormStorage) MarkMessageAsRead(id uint) (*models.Message, error) {
	var msg models.Message
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&msg, id).Error; err != nil {
			return translateErr(err)
		}
		msg.Read = true
		return translateErr(tx.Model(&msg).Update("read", true).Error)
	})
	if err != nil {
		return nil, fmt.Errorf("marking message %d as read: %w", id, err)
	}
	return &msg, nil
}

// Activity operations

func (s *GormStorage) GetActivity(id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := s.db.First(&activity, id).Error; err != nil {
		return nil, fmt.Errorf("activity %d: %w", id, translateErr(err))
	}
	return &activity, nil
}

func (s *GormStorage) GetUserActivities(userID uint, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = DefaultActivitiesLimit
	}

	var activities []models.Activity
	err := s.db.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("activities for user %d: %w", userID, translateErr(err))
	}
	return activities, nil
}

func (s *GormStorage) CreateActivity(activity *models.Activity) (*models.Activity, error) {
	record := *activity
	record.ID = 0
	record.CreatedAt = time.Now()

	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("creating activity: %w", translateErr(err))
	}
	return &record, nil
}

// Achievement operations

func (s *GormStorage) GetAchievement(id uint) (*models.Achievement, error) {
	var achievement models.Achievement
	if err := s.db.First(&achievement, id).Error; err != nil {
		return nil, fmt.Errorf("achievement %d: %w", id, translateErr(err))
	}
	return &achievement, nil
}

func (s *GormStorage) GetAchievementByName(name string) (*models.Achievement, error) {
	var achievement models.Achievement
	if err := s.db.Where("name = ?", name).First(&achievement).Error; err != nil {
		return nil, fmt.Errorf("achievement %q: %w", name, translateErr(err))
	}
	return &achievement, nil
}

func (s *GormStorage) GetAllAchievements() ([]models.Achievement, error) {
	var achievements []models.Achievement
	if err := s.db.Order("id").Find(&achievements).Error; err != nil {
		return nil, fmt.Errorf("listing achievements: %w", translateErr(err))
	}
	return achievements, nil
}

func (s *GormStorage) CreateAchievement(a *models.Achievement) (*models.Achievement, error) {
	record := *a
	record.ID = 0
	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("creating achievement %q: %w", a.Name, translateErr(err))
	}
	return &record, nil
}

// User achievement operations

func (s *GormStorage) GetUserAchievement(userID, achievementID uint) (*models.UserAchievement, error) {
	var ua models.UserAchievement
	err := s.db.
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&ua).Error
	if err != nil {
		return nil, fmt.Errorf("user %d achievement %d: %w", userID, achievementID, translateErr(err))
	}
	return &ua, nil
}

func (s *GormStorage) GetUserAchievements(userID uint) ([]models.UserAchievement, error) {
	var uas []models.UserAchievement
	err := s.db.Where("user_id = ?", userID).Order("id").Find(&uas).Error
	if err != nil {
		return nil, fmt.Errorf("achievements for user %d: %w", userID, translateErr(err))
	}
	return uas, nil
}

// CreateUserAchievement grants an achievement idempotently. The grant and
// the point increment run in one transaction so a failure between them can
// never leave the user's total inconsistent with their earned achievements.
func (s *GormStorage) CreateUserAchievement(ua *models.UserAchievement) (*models.UserAchievement, error) {
	record := *ua
	record.ID = 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.UserAchievement
		err := tx.
			Where("user_id = ? AND achievement_id = ?", record.UserID, record.AchievementID).
			First(&existing).Error
		if err == nil {
			record = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return translateErr(err)
		}

		var achievement models.Achievement
		if err := tx.First(&achievement, record.AchievementID).Error; err != nil {
			return fmt.Errorf("achievement %d: %w", record.AchievementID, translateErr(err))
		}
		var user models.User
		if err := tx.First(&user, record.UserID).Error; err != nil {
			return fmt.Errorf("user %d: %w", record.UserID, translateErr(err))
		}

		record.EarnedAt = time.Now()
		if err := tx.Create(&record).Error; err != nil {
			return translateErr(err)
		}

		return translateErr(tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{
				"achievement_points": gorm.Expr("achievement_points + ?", achievement.Points),
				"last_active":        time.Now(),
			}).Error)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Recommendation operations

func (s *GormStorage) GetRecommendedConnections(userID uint, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	current, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	conns, err := s.GetUserConnections(userID, "")
	if err != nil {
		return nil, err
	}
	connectedIDs := make([]uint, 0, len(conns)+1)
	connectedIDs = append(connectedIDs, userID)
	for _, conn := range conns {
		if conn.SenderID == userID {
			connectedIDs = append(connectedIDs, conn.ReceiverID)
		} else {
			connectedIDs = append(connectedIDs, conn.SenderID)
		}
	}

	var candidates []models.User
	if err := s.db.Where("id NOT IN ?", connectedIDs).Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("recommendation candidates for user %d: %w", userID, translateErr(err))
	}

	recs := make([]Recommendation, 0, len(candidates))
	for i := range candidates {
		candidate := candidates[i]
		recs = append(recs, Recommendation{
			User:       &candidate,
			MatchScore: s.score(current, &candidate),
		})
	}
	return rankRecommendations(recs, limit), nil
}

func (s *GormStorage) CalculateMatchScore(userAID, userBID uint) (int, error) {
	userA, err := s.GetUser(userAID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	userB, err := s.GetUser(userBID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return s.score(userA, userB), nil
}

// score serializes access to the shared random source.
func (s *GormStorage) score(a, b *models.User) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return matchScore(a, b, s.rng)
}
