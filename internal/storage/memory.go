package storage

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stayx/backend/internal/models"
)

// MemoryStorage is the map-backed Storage implementation used for
// development and tests. Every multi-record query is a full scan-and-filter
// over the entity's values; id assignment is serialized by the mutex so
// concurrent creates never receive the same id.
type MemoryStorage struct {
	mu sync.Mutex

	users            map[uint]models.User
	connections      map[uint]models.Connection
	messages         map[uint]models.Message
	activities       map[uint]models.Activity
	achievements     map[uint]models.Achievement
	userAchievements map[uint]models.UserAchievement

	userID            uint
	connectionID      uint
	messageID         uint
	activityID        uint
	achievementID     uint
	userAchievementID uint

	rng *rand.Rand
}

// NewMemoryStorage creates an empty in-memory store with the achievement
// catalog pre-seeded.
func NewMemoryStorage() *MemoryStorage {
	s := &MemoryStorage{
		users:            make(map[uint]models.User),
		connections:      make(map[uint]models.Connection),
		messages:         make(map[uint]models.Message),
		activities:       make(map[uint]models.Activity),
		achievements:     make(map[uint]models.Achievement),
		userAchievements: make(map[uint]models.UserAchievement),
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, a := range defaultAchievements {
		if _, err := s.CreateAchievement(&a); err != nil {
			// The static catalog has unique names; this cannot conflict.
			panic(err)
		}
	}
	return s
}

// User operations

func (s *MemoryStorage) GetUser(id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getUser(id)
}

// getUser must be called with s.mu held.
func (s *MemoryStorage) getUser(id uint) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return cloneUser(user), nil
}

func (s *MemoryStorage) GetUserByFirebaseID(firebaseID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.FirebaseID == firebaseID {
			return cloneUser(user), nil
		}
	}
	return nil, fmt.Errorf("firebase id %q: %w", firebaseID, ErrNotFound)
}

func (s *MemoryStorage) GetUserByUsername(username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return nil, fmt.Errorf("username %q: %w", username, ErrNotFound)
}

func (s *MemoryStorage) GetUserByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, fmt.Errorf("email %q: %w", email, ErrNotFound)
}

func (s *MemoryStorage) CreateUser(user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return nil, fmt.Errorf("username %q already taken: %w", user.Username, ErrConflict)
		}
		if existing.Email == user.Email {
			return nil, fmt.Errorf("email %q already registered: %w", user.Email, ErrConflict)
		}
		if user.FirebaseID != "" && existing.FirebaseID == user.FirebaseID {
			return nil, fmt.Errorf("firebase id already registered: %w", ErrConflict)
		}
	}

	s.userID++
	now := time.Now()

	record := *cloneUser(*user)
	record.ID = s.userID
	record.CreatedAt = now
	record.LastActive = now
	if record.Level < 1 {
		record.Level = 1
	}
	if record.Interests == nil {
		record.Interests = []string{}
	}

	s.users[record.ID] = record
	return cloneUser(record), nil
}

func (s *MemoryStorage) UpdateUser(id uint, update *models.UpdateUserRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
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

	s.users[id] = user
	return cloneUser(user), nil
}

func (s *MemoryStorage) SearchUsers(query string, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	q := strings.ToLower(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	var results []models.User
	for _, user := range s.users {
		if strings.Contains(strings.ToLower(user.Username), q) ||
			strings.Contains(strings.ToLower(user.DisplayName), q) ||
			(user.Bio != "" && strings.Contains(strings.ToLower(user.Bio), q)) {
			results = append(results, *cloneUser(user))
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Connection operations

func (s *MemoryStorage) GetConnection(id uint) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.connections[id]
	if !ok {
		return nil, fmt.Errorf("connection %d: %w", id, ErrNotFound)
	}
	c := conn
	return &c, nil
}

func (s *MemoryStorage) GetConnectionByUsers(userAID, userBID uint) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conn, ok := s.connectionByPair(userAID, userBID); ok {
		c := conn
		return &c, nil
	}
	return nil, fmt.Errorf("connection between %d and %d: %w", userAID, userBID, ErrNotFound)
}

// connectionByPair must be called with s.mu held. The pair is symmetric.
func (s *MemoryStorage) connectionByPair(userAID, userBID uint) (models.Connection, bool) {
	for _, conn := range s.connections {
		if (conn.SenderID == userAID && conn.ReceiverID == userBID) ||
			(conn.SenderID == userBID && conn.ReceiverID == userAID) {
			return conn, true
		}
	}
	return models.Connection{}, false
}

func (s *MemoryStorage) GetUserConnections(userID uint, status string) ([]models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []models.Connection
	for _, conn := range s.connections {
		if conn.SenderID != userID && conn.ReceiverID != userID {
			continue
		}
		if status != "" && conn.Status != status {
			continue
		}
		results = append(results, conn)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (s *MemoryStorage) CreateConnection(conn *models.Connection) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conn.SenderID == conn.ReceiverID {
		return nil, fmt.Errorf("cannot connect a user to themselves: %w", ErrInvalid)
	}
	if _, ok := s.connectionByPair(conn.SenderID, conn.ReceiverID); ok {
		return nil, fmt.Errorf("connection between %d and %d already exists: %w",
			conn.SenderID, conn.ReceiverID, ErrConflict)
	}

	s.connectionID++
	now := time.Now()

	record := *conn
	record.ID = s.connectionID
	if record.Status == "" {
		record.Status = models.ConnectionPending
	}
	record.CreatedAt = now
	record.UpdatedAt = now

	s.connections[record.ID] = record
	c := record
	return &c, nil
}

func (s *MemoryStorage) UpdateConnection(id uint, status string) (*models.Connection, error) {
	if status != models.ConnectionAccepted && status != models.ConnectionRejected {
		return nil, fmt.Errorf("status %q: %w", status, ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.connections[id]
	if !ok {
		return nil, fmt.Errorf("connection %d: %w", id, ErrNotFound)
	}
	if conn.Status != models.ConnectionPending {
		return nil, fmt.Errorf("connection %d is %s: %w", id, conn.Status, ErrTerminalState)
	}

	conn.Status = status
	conn.UpdatedAt = time.Now()
	s.connections[id] = conn
	c := conn
	return &c, nil
}

// Message operations

func (s *MemoryStorage) GetMessage(id uint) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %d: %w", id, ErrNotFound)
	}
	m := msg
	return &m, nil
}

func (s *MemoryStorage) GetConversation(userAID, userBID uint, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultConversationLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var results []models.Message
	for _, msg := range s.messages {
		if (msg.SenderID == userAID && msg.ReceiverID == userBID) ||
			(msg.SenderID == userBID && msg.ReceiverID == userAID) {
			results = append(results, msg)
		}
	}
	sortMessagesAscending(results)
	// Keep only the most recent limit messages, still ascending.
	if len(results) > limit {
		results = results[len(results)-limit:]
	}
	return results, nil
}

func (s *MemoryStorage) GetUserMessages(userID uint, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultMessagesLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var results []models.Message
	for _, msg := range s.messages {
		if msg.SenderID == userID || msg.ReceiverID == userID {
			results = append(results, msg)
		}
	}
	sortMessagesAscending(results)
	// Most recent first.
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func sortMessagesAscending(msgs []models.Message) {
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
}

func (s *MemoryStorage) CreateMessage(msg *models.Message) (*models.Message, error) {
	if strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("message content is empty: %w", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.connectionByPair(msg.SenderID, msg.ReceiverID)
	if !ok || conn.Status != models.ConnectionAccepted {
		return nil, fmt.Errorf("no accepted connection between %d and %d: %w",
			msg.SenderID, msg.ReceiverID, ErrNotConnected)
	}

	s.messageID++
	record := *msg
	record.ID = s.messageID
	record.Read = false
	record.CreatedAt = time.Now()

	s.messages[record.ID] = record
	m := record
	return &m, nil
}

func (s *MemoryStorage) MarkMessageAsRead(id uint) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %d: %w", id, ErrNotFound)
	}
	msg.Read = true
	s.messages[id] = msg
	m := msg
	return &m, nil
}

// Activity operations

func (s *MemoryStorage) GetActivity(id uint) (*models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	activity, ok := s.activities[id]
	if !ok {
		return nil, fmt.Errorf("activity %d: %w", id, ErrNotFound)
	}
	a := activity
	return &a, nil
}

func (s *MemoryStorage) GetUserActivities(userID uint, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = DefaultActivitiesLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var results []models.Activity
	for _, activity := range s.activities {
		if activity.UserID == userID {
			results = append(results, activity)
		}
	}
	// Most recent first.
	sort.Slice(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID > results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryStorage) CreateActivity(activity *models.Activity) (*models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activityID++
	record := *activity
	record.ID = s.activityID
	record.CreatedAt = time.Now()

	s.activities[record.ID] = record
	a := record
	return &a, nil
}

// Achievement operations

func (s *MemoryStorage) GetAchievement(id uint) (*models.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	achievement, ok := s.achievements[id]
	if !ok {
		return nil, fmt.Errorf("achievement %d: %w", id, ErrNotFound)
	}
	a := achievement
	return &a, nil
}

func (s *MemoryStorage) GetAchievementByName(name string) (*models.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, achievement := range s.achievements {
		if achievement.Name == name {
			a := achievement
			return &a, nil
		}
	}
	return nil, fmt.Errorf("achievement %q: %w", name, ErrNotFound)
}

func (s *MemoryStorage) GetAllAchievements() ([]models.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]models.Achievement, 0, len(s.achievements))
	for _, achievement := range s.achievements {
		results = append(results, achievement)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (s *MemoryStorage) CreateAchievement(a *models.Achievement) (*models.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.achievements {
		if existing.Name == a.Name {
			return nil, fmt.Errorf("achievement %q already exists: %w", a.Name, ErrConflict)
		}
	}

	s.achievementID++
	record := *a
	record.ID = s.achievementID

	s.achievements[record.ID] = record
	result := record
	return &result, nil
}

// User achievement operations

func (s *MemoryStorage) GetUserAchievement(userID, achievementID uint) (*models.UserAchievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ua, ok := s.userAchievementByPair(userID, achievementID); ok {
		result := ua
		return &result, nil
	}
	return nil, fmt.Errorf("user %d achievement %d: %w", userID, achievementID, ErrNotFound)
}

// userAchievementByPair must be called with s.mu held.
func (s *MemoryStorage) userAchievementByPair(userID, achievementID uint) (models.UserAchievement, bool) {
	for _, ua := range s.userAchievements {
		if ua.UserID == userID && ua.AchievementID == achievementID {
			return ua, true
		}
	}
	return models.UserAchievement{}, false
}

func (s *MemoryStorage) GetUserAchievements(userID uint) ([]models.UserAchievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []models.UserAchievement
	for _, ua := range s.userAchievements {
		if ua.UserID == userID {
			results = append(results, ua)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

// CreateUserAchievement grants an achievement to a user. Grants are
// idempotent: a pair that already exists is returned as-is without touching
// the user's points. The grant and the point increment happen under the same
// lock so they are a single logical unit.
func (s *MemoryStorage) CreateUserAchievement(ua *models.UserAchievement) (*models.UserAchievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.userAchievementByPair(ua.UserID, ua.AchievementID); ok {
		result := existing
		return &result, nil
	}

	achievement, ok := s.achievements[ua.AchievementID]
	if !ok {
		return nil, fmt.Errorf("achievement %d: %w", ua.AchievementID, ErrNotFound)
	}
	user, ok := s.users[ua.UserID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", ua.UserID, ErrNotFound)
	}

	s.userAchievementID++
	record := *ua
	record.ID = s.userAchievementID
	record.EarnedAt = time.Now()
	s.userAchievements[record.ID] = record

	user.AchievementPoints += achievement.Points
	user.LastActive = time.Now()
	s.users[user.ID] = user

	result := record
	return &result, nil
}

// Recommendation operations

func (s *MemoryStorage) GetRecommendedConnections(userID uint, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	connected := make(map[uint]struct{})
	for _, conn := range s.connections {
		switch userID {
		case conn.SenderID:
			connected[conn.ReceiverID] = struct{}{}
		case conn.ReceiverID:
			connected[conn.SenderID] = struct{}{}
		}
	}

	var recs []Recommendation
	for _, candidate := range s.users {
		if candidate.ID == userID {
			continue
		}
		if _, ok := connected[candidate.ID]; ok {
			continue
		}
		recs = append(recs, Recommendation{
			User:       cloneUser(candidate),
			MatchScore: matchScore(&current, &candidate, s.rng),
		})
	}
	return rankRecommendations(recs, limit), nil
}

func (s *MemoryStorage) CalculateMatchScore(userAID, userBID uint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userA, okA := s.users[userAID]
	userB, okB := s.users[userBID]
	if !okA || !okB {
		return 0, nil
	}
	return matchScore(&userA, &userB, s.rng), nil
}

// cloneUser copies a user record, including its interests slice, so callers
// can never mutate the store's internal state through a returned pointer.
func cloneUser(user models.User) *models.User {
	clone := user
	clone.Interests = append([]string(nil), user.Interests...)
	return &clone
}
