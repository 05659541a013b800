package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Suraj757/learning-profile-api/internal/models"
	"github.com/Suraj757/learning-profile-api/internal/repository"
	"github.com/Suraj757/learning-profile-api/internal/service"
	"github.com/Suraj757/learning-profile-api/pkg/config"
)

func sessionTestConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:        "test_secret",
		Expiry:        time.Hour,
		RefreshWindow: 24 * time.Hour,
		CookieName:    "blp_session",
		SecureCookie:  "__blp_session",
	}
}

func newSessionHandler() *SessionHandler {
	store := repository.NewMemoryStore()
	svc := service.NewSessionService(store.Users(), validator.New(), zap.NewNop(), sessionTestConfig())
	return NewSessionHandler(svc, sessionTestConfig())
}

func loginPayload(password string) []byte {
	payload, _ := json.Marshal(models.LoginRequest{Email: "demo@beginlearning.test", Password: password})
	return payload
}

func sessionCookie(t *testing.T, headers http.Header) *http.Cookie {
	t.Helper()
	res := http.Response{Header: headers}
	for _, cookie := range res.Cookies() {
		if cookie.Name == "blp_session" {
			return cookie
		}
	}
	return nil
}

func TestSessionHandlerLoginSetsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newSessionHandler()

	c, w := newGinContext(http.MethodPost, "/api/auth/login", loginPayload("demo-password"))
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)

	cookie := sessionCookie(t, w.Header())
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Greater(t, cookie.MaxAge, 0)
}

func TestSessionHandlerLoginRejectsBadPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newSessionHandler()

	c, w := newGinContext(http.MethodPost, "/api/auth/login", loginPayload("wrong"))
	h.Login(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sessionCookie(t, w.Header()))
}

func TestSessionHandlerSessionFromCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newSessionHandler()

	login, loginRec := newGinContext(http.MethodPost, "/api/auth/login", loginPayload("demo-password"))
	h.Login(login)
	require.Equal(t, http.StatusOK, loginRec.Code)
	cookie := sessionCookie(t, loginRec.Header())
	require.NotNil(t, cookie)

	c, w := newGinContext(http.MethodGet, "/api/auth/session", nil)
	c.Request.AddCookie(cookie)
	h.Session(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
	assert.Contains(t, w.Body.String(), `"source":"session_cookie"`)
}

func TestSessionHandlerSessionWithoutCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newSessionHandler()

	c, w := newGinContext(http.MethodGet, "/api/auth/session", nil)
	h.Session(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestSessionHandlerRefreshReissuesCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newSessionHandler()

	login, loginRec := newGinContext(http.MethodPost, "/api/auth/login", loginPayload("demo-password"))
	h.Login(login)
	cookie := sessionCookie(t, loginRec.Header())
	require.NotNil(t, cookie)

	payload, _ := json.Marshal(models.SessionActionRequest{Action: "refresh"})
	c, w := newGinContext(http.MethodPost, "/api/auth/session", payload)
	c.Request.AddCookie(cookie)
	h.SessionAction(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, sessionCookie(t, w.Header()))
}

func TestSessionHandlerRejectsUnknownAction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newSessionHandler()

	payload, _ := json.Marshal(models.SessionActionRequest{Action: "revoke"})
	c, w := newGinContext(http.MethodPost, "/api/auth/session", payload)
	h.SessionAction(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerLogoutClearsCookies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newSessionHandler()

	c, w := newGinContext(http.MethodPost, "/api/auth/logout", nil)
	h.Logout(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	cookie := sessionCookie(t, w.Header())
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}
