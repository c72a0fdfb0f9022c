package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayx/backend/internal/models"
)

func newTestUser(t *testing.T, s Storage, username string, interests []string) *models.User {
	t.Helper()
	user, err := s.CreateUser(&models.User{
		FirebaseID:  "fb-" + username,
		Username:    username,
		Email:       username + "@example.com",
		DisplayName: username,
		Interests:   interests,
	})
	require.NoError(t, err)
	return user
}

func acceptConnection(t *testing.T, s Storage, senderID, receiverID uint) *models.Connection {
	t.Helper()
	conn, err := s.CreateConnection(&models.Connection{SenderID: senderID, ReceiverID: receiverID})
	require.NoError(t, err)
	accepted, err := s.UpdateConnection(conn.ID, models.ConnectionAccepted)
	require.NoError(t, err)
	return accepted
}

func TestCreateUserAssignsSequentialIDs(t *testing.T) {
	s := NewMemoryStorage()

	alice := newTestUser(t, s, "alice", nil)
	bob := newTestUser(t, s, "bob", nil)

	assert.Equal(t, uint(1), alice.ID)
	assert.Equal(t, uint(2), bob.ID)
	assert.False(t, alice.CreatedAt.IsZero())
	assert.False(t, alice.LastActive.IsZero())
	assert.Equal(t, 1, alice.Level)
	assert.Equal(t, 0, alice.AchievementPoints)
}

func TestCreateUserDuplicateFails(t *testing.T) {
	s := NewMemoryStorage()
	newTestUser(t, s, "alice", nil)

	_, err := s.CreateUser(&models.User{
		Username: "alice", Email: "other@example.com", DisplayName: "Other",
	})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = s.CreateUser(&models.User{
		Username: "someone", Email: "alice@example.com", DisplayName: "Other",
	})
	assert.ErrorIs(t, err, ErrConflict)

	// The failed creates left nothing behind.
	_, err = s.GetUserByUsername("someone")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetUserByEmail("other@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUserByNaturalKeys(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", nil)

	byUsername, err := s.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byUsername.ID)

	byEmail, err := s.GetUserByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	byFirebase, err := s.GetUserByFirebaseID("fb-alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byFirebase.ID)

	_, err = s.GetUser(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserMergesAndRefreshesLastActive(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", []string{"bitcoin"})
	before := alice.LastActive

	time.Sleep(5 * time.Millisecond)

	bio := "on-chain since 2013"
	updated, err := s.UpdateUser(alice.ID, &models.UpdateUserRequest{Bio: &bio})
	require.NoError(t, err)

	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, "alice", updated.DisplayName, "unsupplied fields stay untouched")
	assert.Equal(t, []string{"bitcoin"}, []string(updated.Interests))
	assert.True(t, updated.LastActive.After(before))

	_, err = s.UpdateUser(999, &models.UpdateUserRequest{Bio: &bio})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchUsers(t *testing.T) {
	s := NewMemoryStorage()
	newTestUser(t, s, "alice", nil)
	newTestUser(t, s, "bob", nil)
	carol, err := s.CreateUser(&models.User{
		Username: "carol", Email: "carol@example.com",
		DisplayName: "Carol", Bio: "Alice's biggest fan",
	})
	require.NoError(t, err)

	results, err := s.SearchUsers("ALICE", 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "alice", results[0].Username)
	assert.Equal(t, carol.ID, results[1].ID, "bio matches too")

	results, err = s.SearchUsers("alice", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestGetConnectionByUsersIsSymmetric(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", nil)
	bob := newTestUser(t, s, "bob", nil)

	created, err := s.CreateConnection(&models.Connection{SenderID: alice.ID, ReceiverID: bob.ID})
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, created.Status)

	forward, err := s.GetConnectionByUsers(alice.ID, bob.ID)
	require.NoError(t, err)
	backward, err := s.GetConnectionByUsers(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, forward.ID, backward.ID)
}

func TestCreateConnectionDuplicatePairFails(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", nil)
	bob := newTestUser(t, s, "bob", nil)

	created, err := s.CreateConnection(&models.Connection{SenderID: alice.ID, ReceiverID: bob.ID})
	require.NoError(t, err)

	_, err = s.CreateConnection(&models.Connection{SenderID: alice.ID, ReceiverID: bob.ID})
	assert.ErrorIs(t, err, ErrConflict)

	// The reversed direction is the same unordered pair.
	_, err = s.CreateConnection(&models.Connection{SenderID: bob.ID, ReceiverID: alice.ID})
	assert.ErrorIs(t, err, ErrConflict)

	existing, err := s.GetConnection(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, existing.Status)
}

func TestCreateConnectionToSelfFails(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", nil)

	_, err := s.CreateConnection(&models.Connection{SenderID: alice.ID, ReceiverID: alice.ID})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdateConnectionTerminalStatesRejectTransitions(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", nil)
	bob := newTestUser(t, s, "bob", nil)

	conn, err := s.CreateConnection(&models.Connection{SenderID: alice.ID, ReceiverID: bob.ID})
	require.NoError(t, err)

	accepted, err := s.UpdateConnection(conn.ID, models.ConnectionAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, accepted.Status)

	_, err = s.UpdateConnection(conn.ID, models.ConnectionRejected)
	assert.ErrorIs(t, err, ErrTerminalState)

	unchanged, err := s.GetConnection(conn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, unchanged.Status)

	_, err = s.UpdateConnection(conn.ID, "blocked")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.UpdateConnection(999, models.ConnectionAccepted)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUserConnectionsFiltersByStatus(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", nil)
	bob := newTestUser(t, s, "bob", nil)
	carol := newTestUser(t, s, "carol", nil)

	acceptConnection(t, s, alice.ID, bob.ID)
	_, err := s.CreateConnection(&models.Connection{SenderID: carol.ID, ReceiverID: alice.ID})
	require.NoError(t, err)

	all, err := s.GetUserConnections(alice.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	accepted, err := s.GetUserConnections(alice.ID, models.ConnectionAccepted)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, bob.ID, accepted[0].ReceiverID)
}

func TestCreateMessageRequiresAcceptedConnection(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", nil)
	bob := newTestUser(t, s, "bob", nil)

	_, err := s.CreateMessage(&models.Message{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi"})
	assert.ErrorIs(t, err, ErrNotConnected)

	conn, err := s.CreateConnection(&models.Connection{SenderID: alice.ID, ReceiverID: bob.ID})
	require.NoError(t, err)

	// Pending is not enough.
	_, err = s.CreateMessage(&models.Message{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi"})
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = s.UpdateConnection(conn.ID, models.ConnectionAccepted)
	require.NoError(t, err)

	msg, err := s.CreateMessage(&models.Message{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi"})
	require.NoError(t, err)
	assert.False(t, msg.Read)

	_, err = s.CreateMessage(&models.Message{SenderID: alice.ID, ReceiverID: bob.ID, Content: "   "})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestGetConversationOrderingAndLimit(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", nil)
	bob := newTestUser(t, s, "bob", nil)
	carol := newTestUser(t, s, "carol", nil)
	acceptConnection(t, s, alice.ID, bob.ID)
	acceptConnection(t, s, alice.ID, carol.ID)

	for i := 0; i < 5; i++ {
		sender, receiver := alice.ID, bob.ID
		if i%2 == 1 {
			sender, receiver = bob.ID, alice.ID
		}
		_, err := s.CreateMessage(&models.Message{SenderID: sender, ReceiverID: receiver, Content: fmt.Sprintf("msg-%d", i)})
		require.NoError(t, err)
	}
	// Noise from an unrelated conversation.
	_, err := s.CreateMessage(&models.Message{SenderID: alice.ID, ReceiverID: carol.ID, Content: "other"})
	require.NoError(t, err)

	conversation, err := s.GetConversation(alice.ID, bob.ID, 0)
	require.NoError(t, err)
	require.Len(t, conversation, 5)
	for i, msg := range conversation {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), msg.Content, "ascending by creation")
	}

	// The most recent N survive trimming, still oldest-first.
	trimmed, err := s.GetConversation(bob.ID, alice.ID, 3)
	require.NoError(t, err)
	require.Len(t, trimmed, 3)
	assert.Equal(t, "msg-2", trimmed[0].Content)
	assert.Equal(t, "msg-4", trimmed[2].Content)
}

func TestGetUserMessagesMostRecentFirst(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", nil)
	bob := newTestUser(t, s, "bob", nil)
	acceptConnection(t, s, alice.ID, bob.ID)

	for i := 0; i < 3; i++ {
		_, err := s.CreateMessage(&models.Message{SenderID: alice.ID, ReceiverID: bob.ID, Content: fmt.Sprintf("msg-%d", i)})
		require.NoError(t, err)
	}

	messages, err := s.GetUserMessages(bob.ID, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "msg-2", messages[0].Content)
	assert.Equal(t, "msg-1", messages[1].Content)
}

func TestMarkMessageAsRead(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", nil)
	bob := newTestUser(t, s, "bob", nil)
	acceptConnection(t, s, alice.ID, bob.ID)

	msg, err := s.CreateMessage(&models.Message{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi"})
	require.NoError(t, err)

	read, err := s.MarkMessageAsRead(msg.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)

	_, err = s.MarkMessageAsRead(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserActivitiesMostRecentFirst(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", nil)

	for i := 0; i < 3; i++ {
		_, err := s.CreateActivity(&models.Activity{
			UserID: alice.ID,
			Type:   models.ActivityConnectionRequest,
			Data:   models.ActivityData{"sender_id": uint(i + 10)},
		})
		require.NoError(t, err)
	}

	activities, err := s.GetUserActivities(alice.ID, 2)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, uint(3), activities[0].ID)
	assert.Equal(t, uint(2), activities[1].ID)
}

func TestAchievementCatalogSeeded(t *testing.T) {
	s := NewMemoryStorage()

	achievements, err := s.GetAllAchievements()
	require.NoError(t, err)
	require.Len(t, achievements, 3)

	earlyAdopter, err := s.GetAchievementByName("Early Adopter")
	require.NoError(t, err)
	assert.Equal(t, 150, earlyAdopter.Points)

	_, err = s.CreateAchievement(&models.Achievement{Name: "Early Adopter", Points: 1})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserAchievementGrantIsIdempotent(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", nil)

	achievement, err := s.GetAchievementByName("Network Starter")
	require.NoError(t, err)

	first, err := s.CreateUserAchievement(&models.UserAchievement{
		UserID: alice.ID, AchievementID: achievement.ID,
	})
	require.NoError(t, err)
	assert.False(t, first.EarnedAt.IsZero())

	second, err := s.CreateUserAchievement(&models.UserAchievement{
		UserID: alice.ID, AchievementID: achievement.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	grants, err := s.GetUserAchievements(alice.ID)
	require.NoError(t, err)
	assert.Len(t, grants, 1)

	user, err := s.GetUser(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, achievement.Points, user.AchievementPoints, "points incremented exactly once")
}

func TestUserAchievementGrantUnknownTargets(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", nil)

	_, err := s.CreateUserAchievement(&models.UserAchievement{UserID: alice.ID, AchievementID: 999})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.CreateUserAchievement(&models.UserAchievement{UserID: 999, AchievementID: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCalculateMatchScoreBounds(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", []string{"bitcoin", "defi"})
	bob := newTestUser(t, s, "bob", []string{"bitcoin", "nft"})

	for i := 0; i < 50; i++ {
		score, err := s.CalculateMatchScore(alice.ID, bob.ID)
		require.NoError(t, err)
		// One shared interest out of max(2,2) gives a 35 base plus [0,30).
		assert.GreaterOrEqual(t, score, 35)
		assert.LessOrEqual(t, score, 64)
	}

	score, err := s.CalculateMatchScore(alice.ID, 999)
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	score, err = s.CalculateMatchScore(999, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestGetRecommendedConnectionsExcludesSelfAndConnected(t *testing.T) {
	s := NewMemoryStorage()
	alice := newTestUser(t, s, "alice", []string{"bitcoin"})
	bob := newTestUser(t, s, "bob", []string{"bitcoin"})
	carol := newTestUser(t, s, "carol", []string{"nft"})
	dave := newTestUser(t, s, "dave", nil)

	// Any status counts as connected, including rejected.
	conn, err := s.CreateConnection(&models.Connection{SenderID: alice.ID, ReceiverID: bob.ID})
	require.NoError(t, err)
	_, err = s.UpdateConnection(conn.ID, models.ConnectionRejected)
	require.NoError(t, err)

	recs, err := s.GetRecommendedConnections(alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	ids := []uint{recs[0].User.ID, recs[1].User.ID}
	assert.ElementsMatch(t, []uint{carol.ID, dave.ID}, ids)
	for _, rec := range recs {
		assert.GreaterOrEqual(t, rec.MatchScore, 0)
		assert.LessOrEqual(t, rec.MatchScore, 100)
	}
	assert.GreaterOrEqual(t, recs[0].MatchScore, recs[1].MatchScore, "ranked by score descending")

	limited, err := s.GetRecommendedConnections(alice.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = s.GetRecommendedConnections(999, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}
