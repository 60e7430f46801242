package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-backend-go/config"
	"support-backend-go/routes"
	"support-backend-go/services"
)

// setupRouter wires a fresh store, history and router for one test.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	config.SessionSecret = "test-secret"

	services.Users = services.NewUserStore(nil)
	services.History = services.NewHistoryService()

	r := gin.New()
	routes.SetupRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// login performs a login and returns the issued token.
func login(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func TestLoginAndCurrentUser(t *testing.T) {
	r := setupRouter(t)
	require.NoError(t, services.Users.Add("alice", "s3cret"))

	token := login(t, r, "alice", "s3cret")

	// Token travels in the query parameter
	w := doJSON(t, r, http.MethodGet, "/auth/current?token="+token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp["username"])
	assert.NotEmpty(t, resp["session_id"])
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	r := setupRouter(t)
	require.NoError(t, services.Users.Add("alice", "s3cret"))

	wrongPassword := doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
		"username": "alice", "password": "wrong",
	})
	unknownUser := doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
		"username": "nobody", "password": "s3cret",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestMissingTokenRejected(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/auth/current", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerHeaderAccepted(t *testing.T) {
	r := setupRouter(t)
	require.NoError(t, services.Users.Add("alice", "s3cret"))
	token := login(t, r, "alice", "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/auth/current", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

// A removed user's outstanding token must stop working immediately.
func TestRemovedUserTokenRejected(t *testing.T) {
	r := setupRouter(t)
	require.NoError(t, services.Users.Add("alice", "s3cret"))
	token := login(t, r, "alice", "s3cret")

	require.NoError(t, services.Users.Remove("alice"))

	w := doJSON(t, r, http.MethodGet, "/auth/current?token="+token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutClearsHistory(t *testing.T) {
	r := setupRouter(t)
	require.NoError(t, services.Users.Add("alice", "s3cret"))
	token := login(t, r, "alice", "s3cret")

	w := doJSON(t, r, http.MethodGet, "/auth/current?token="+token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var current map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &current))
	sessionID := current["session_id"].(string)

	services.History.AppendTurn(sessionID, "user", "draft")
	services.History.AppendTurn(sessionID, "assistant", "polished")

	w = doJSON(t, r, http.MethodPost, "/auth/logout?token="+token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, services.History.Turns(sessionID))
}
