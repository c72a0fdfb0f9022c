package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/stayx/backend/internal/middleware"
	"github.com/stayx/backend/internal/models"
	"github.com/stayx/backend/internal/storage"
	"github.com/stayx/backend/validators"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// authedContext builds a context the way the JWT middleware would have left it.
func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID uint) echo.Context {
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextUserID, userID)
	return c
}

func seedUser(t *testing.T, store storage.Storage, username string, interests []string) *models.User {
	t.Helper()
	user, err := store.CreateUser(&models.User{
		FirebaseID:  "fb-" + username,
		Username:    username,
		Email:       username + "@example.com",
		DisplayName: username,
		Interests:   interests,
	})
	require.NoError(t, err)
	return user
}

func seedAcceptedConnection(t *testing.T, store storage.Storage, senderID, receiverID uint) *models.Connection {
	t.Helper()
	conn, err := store.CreateConnection(&models.Connection{SenderID: senderID, ReceiverID: receiverID})
	require.NoError(t, err)
	accepted, err := store.UpdateConnection(conn.ID, models.ConnectionAccepted)
	require.NoError(t, err)
	return accepted
}

// httpStatus unwraps the status an echo handler would answer with.
func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}
