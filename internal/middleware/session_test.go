package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
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

func middlewareTestConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:        "test_secret",
		Expiry:        time.Hour,
		RefreshWindow: 24 * time.Hour,
		CookieName:    "blp_session",
		SecureCookie:  "__blp_session",
	}
}

func middlewareSessionService(t *testing.T) (*service.SessionService, string) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := service.NewSessionService(store.Users(), validator.New(), zap.NewNop(), middlewareTestConfig())
	token, _, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "demo@beginlearning.test",
		Password: "demo-password",
	})
	require.NoError(t, err)
	return svc, token
}

func claimsRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/whoami", mw, func(c *gin.Context) {
		_, authenticated := c.Get(ContextUserKey)
		c.JSON(http.StatusOK, gin.H{"authenticated": authenticated})
	})
	return r
}

func TestOptionalSessionAttachesClaimsFromCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, token := middlewareSessionService(t)

	r := claimsRouter(OptionalSession(svc, middlewareTestConfig()))
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "blp_session", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
}

func TestOptionalSessionContinuesWithoutCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := middlewareSessionService(t)

	r := claimsRouter(OptionalSession(svc, middlewareTestConfig()))
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestOptionalSessionIgnoresInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := middlewareSessionService(t)

	r := claimsRouter(OptionalSession(svc, middlewareTestConfig()))
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "blp_session", Value: "not-a-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestSessionRejectsMissingCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := middlewareSessionService(t)

	r := claimsRouter(Session(svc, middlewareTestConfig()))
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
