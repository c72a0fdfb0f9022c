package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayx/backend/internal/models"
	"github.com/stayx/backend/internal/storage"
)

func TestGetProfile(t *testing.T) {
	e := newTestEcho()
	store := storage.NewMemoryStorage()
	h := NewUserHandler(store)

	alice := seedUser(t, store, "alice", []string{"bitcoin"})

	rec := httptest.NewRecorder()
	c := authedContext(e, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), rec, alice.ID)
	require.NoError(t, h.GetProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "alice", user.Username)
}

func TestGetProfileUnauthenticated(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(storage.NewMemoryStorage())

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), httptest.NewRecorder())
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, h.GetProfile(c)))
}

func TestUpdateProfilePartial(t *testing.T) {
	e := newTestEcho()
	store := storage.NewMemoryStorage()
	h := NewUserHandler(store)

	alice := seedUser(t, store, "alice", []string{"bitcoin"})

	rec := httptest.NewRecorder()
	c := authedContext(e, jsonRequest(http.MethodPatch, "/api/v1/users/me", `{"bio":"hodling"}`), rec, alice.ID)
	require.NoError(t, h.UpdateProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "hodling", user.Bio)
	assert.Equal(t, "alice", user.DisplayName, "unsupplied fields untouched")
	assert.Equal(t, []string{"bitcoin"}, []string(user.Interests))
}

func TestGetUser(t *testing.T) {
	e := newTestEcho()
	store := storage.NewMemoryStorage()
	h := NewUserHandler(store)

	alice := seedUser(t, store, "alice", nil)
	bob := seedUser(t, store, "bob", nil)

	rec := httptest.NewRecorder()
	c := authedContext(e, httptest.NewRequest(http.MethodGet, "/api/v1/users/"+strconv.Itoa(int(bob.ID)), nil), rec, alice.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(bob.ID)))
	require.NoError(t, h.GetUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c = authedContext(e, httptest.NewRequest(http.MethodGet, "/api/v1/users/999", nil), httptest.NewRecorder(), alice.ID)
	c.SetParamNames("id")
	c.SetParamValues("999")
	assert.Equal(t, http.StatusNotFound, httpStatus(t, h.GetUser(c)))

	c = authedContext(e, httptest.NewRequest(http.MethodGet, "/api/v1/users/abc", nil), httptest.NewRecorder(), alice.ID)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.GetUser(c)))
}

func TestSearchUsers(t *testing.T) {
	e := newTestEcho()
	store := storage.NewMemoryStorage()
	h := NewUserHandler(store)

	alice := seedUser(t, store, "alice", nil)
	seedUser(t, store, "bob", nil)

	rec := httptest.NewRecorder()
	c := authedContext(e, httptest.NewRequest(http.MethodGet, "/api/v1/users/search?q=bob", nil), rec, alice.ID)
	require.NoError(t, h.SearchUsers(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var users []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	// A one-character query is rejected.
	c = authedContext(e, httptest.NewRequest(http.MethodGet, "/api/v1/users/search?q=b", nil), httptest.NewRecorder(), alice.ID)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.SearchUsers(c)))

	c = authedContext(e, httptest.NewRequest(http.MethodGet, "/api/v1/users/search?q=bob&limit=zero", nil), httptest.NewRecorder(), alice.ID)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.SearchUsers(c)))
}
