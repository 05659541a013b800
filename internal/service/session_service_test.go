package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Suraj757/learning-profile-api/internal/models"
	"github.com/Suraj757/learning-profile-api/pkg/config"
)

type fakeUserStore struct {
	users            map[string]*models.User
	lastLoginUpdated bool
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserStore) UpdateLastLogin(ctx context.Context, id string) error {
	f.lastLoginUpdated = true
	return nil
}

func sessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:        "test_secret",
		Expiry:        time.Hour,
		RefreshWindow: 24 * time.Hour,
		CookieName:    "blp_session",
		SecureCookie:  "__blp_session",
	}
}

func newSessionFixture(t *testing.T) (*SessionService, *fakeUserStore) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	store := &fakeUserStore{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "teacher@example.com", PasswordHash: string(hash), FullName: "Pat Teacher", Role: models.RoleTeacher, Active: true},
	}}
	return NewSessionService(store, validator.New(), zap.NewNop(), sessionConfig()), store
}

func TestSessionLoginSuccess(t *testing.T) {
	svc, store := newSessionFixture(t)

	token, state, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "password"})
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.True(t, state.Authenticated)
	assert.Equal(t, "u1", state.User.ID)
	assert.True(t, store.lastLoginUpdated)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestSessionLoginWrongPassword(t *testing.T) {
	svc, _ := newSessionFixture(t)

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestSessionLoginUnknownEmail(t *testing.T) {
	svc, _ := newSessionFixture(t)

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "password"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestSessionLoginInactiveAccount(t *testing.T) {
	svc, store := newSessionFixture(t)
	store.users["u1"].Active = false

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "password"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactive")
}

func TestResolvePrefersBearerOverCookies(t *testing.T) {
	svc, _ := newSessionFixture(t)

	token, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "password"})
	require.NoError(t, err)

	state := svc.Resolve(context.Background(), []SessionToken{
		{Source: SourceBearer, Value: token},
		{Source: SourceCookie, Value: token},
	})
	assert.True(t, state.Authenticated)
	assert.Equal(t, SourceBearer, state.Source)
}

func TestResolveFallsThroughInvalidCandidates(t *testing.T) {
	svc, _ := newSessionFixture(t)

	token, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "password"})
	require.NoError(t, err)

	state := svc.Resolve(context.Background(), []SessionToken{
		{Source: SourceBearer, Value: "garbage"},
		{Source: SourceCookie, Value: token},
	})
	assert.True(t, state.Authenticated)
	assert.Equal(t, SourceCookie, state.Source)
}

func TestResolveUnauthenticatedWithoutCandidates(t *testing.T) {
	svc, _ := newSessionFixture(t)

	state := svc.Resolve(context.Background(), nil)
	assert.False(t, state.Authenticated)
	assert.Nil(t, state.User)
}

func TestRefreshReissuesToken(t *testing.T) {
	svc, _ := newSessionFixture(t)

	token, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "password"})
	require.NoError(t, err)

	newToken, state, err := svc.Refresh(context.Background(), []SessionToken{{Source: SourceCookie, Value: token}})
	require.NoError(t, err)
	assert.NotEmpty(t, newToken)
	assert.True(t, state.Authenticated)

	claims, err := svc.Validate(newToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestRefreshAcceptsRecentlyExpiredToken(t *testing.T) {
	svc, _ := newSessionFixture(t)

	expired := signTestToken(t, "test_secret", "u1", time.Now().Add(-time.Hour))

	newToken, _, err := svc.Refresh(context.Background(), []SessionToken{{Source: SourceCookie, Value: expired}})
	require.NoError(t, err)
	assert.NotEmpty(t, newToken)
}

func TestRefreshRejectsTokenPastWindow(t *testing.T) {
	svc, _ := newSessionFixture(t)

	longGone := signTestToken(t, "test_secret", "u1", time.Now().Add(-48*time.Hour))

	_, _, err := svc.Refresh(context.Background(), []SessionToken{{Source: SourceCookie, Value: longGone}})
	require.Error(t, err)
}

func TestRefreshRejectsWithoutCandidates(t *testing.T) {
	svc, _ := newSessionFixture(t)

	_, _, err := svc.Refresh(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no refreshable session")
}

func signTestToken(t *testing.T, secret, userID string, expiresAt time.Time) string {
	t.Helper()
	claims := &models.SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}
