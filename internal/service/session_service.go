package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Suraj757/learning-profile-api/internal/models"
	"github.com/Suraj757/learning-profile-api/internal/repository"
	"github.com/Suraj757/learning-profile-api/pkg/config"
	appErrors "github.com/Suraj757/learning-profile-api/pkg/errors"
)

// Token source identifiers, in resolution order.
const (
	SourceBearer       = "bearer"
	SourceCookie       = "session_cookie"
	SourceSecureCookie = "secure_cookie"
)

// SessionToken is one candidate credential found on a request.
type SessionToken struct {
	Source string
	Value  string
}

// SessionService issues and validates cookie sessions backed by signed JWTs.
type SessionService struct {
	users     repository.UserStore
	validator *validator.Validate
	logger    *zap.Logger
	config    config.SessionConfig
}

// NewSessionService constructs a SessionService.
func NewSessionService(users repository.UserStore, validate *validator.Validate, logger *zap.Logger, cfg config.SessionConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SessionService{users: users, validator: validate, logger: logger, config: cfg}
}

// Login authenticates credentials and returns a freshly signed session token
// alongside its state. Credential failures never reveal which part failed.
func (s *SessionService) Login(ctx context.Context, req models.LoginRequest) (string, *models.SessionState, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if !user.Active {
		return "", nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	token, expiresAt, err := s.signToken(user)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	return token, &models.SessionState{
		Authenticated: true,
		User:          userInfo(user),
		ExpiresAt:     expiresAt,
		Source:        SourceBearer,
	}, nil
}

// Resolve walks the candidate tokens in order and returns the state of the
// first one that validates. An empty or fully invalid candidate list yields an
// unauthenticated state, not an error: GET /auth/session reports rather than
// rejects.
func (s *SessionService) Resolve(ctx context.Context, candidates []SessionToken) *models.SessionState {
	for _, candidate := range candidates {
		if candidate.Value == "" {
			continue
		}
		claims, err := s.Validate(candidate.Value)
		if err != nil {
			continue
		}
		user, err := s.users.FindByID(ctx, claims.UserID)
		if err != nil || !user.Active {
			continue
		}
		return &models.SessionState{
			Authenticated: true,
			User:          userInfo(user),
			ExpiresAt:     claims.ExpiresAt.Time,
			Source:        candidate.Source,
		}
	}
	return &models.SessionState{Authenticated: false}
}

// Refresh re-signs the session carried by the first valid candidate. Tokens
// past their expiry are still refreshable within the configured window.
func (s *SessionService) Refresh(ctx context.Context, candidates []SessionToken) (string, *models.SessionState, error) {
	for _, candidate := range candidates {
		if candidate.Value == "" {
			continue
		}
		claims, err := s.parseForRefresh(candidate.Value)
		if err != nil {
			continue
		}
		user, err := s.users.FindByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
		}
		if !user.Active {
			continue
		}
		token, expiresAt, err := s.signToken(user)
		if err != nil {
			return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to refresh session token")
		}
		return token, &models.SessionState{
			Authenticated: true,
			User:          userInfo(user),
			ExpiresAt:     expiresAt,
			Source:        candidate.Source,
		}, nil
	}
	return "", nil, appErrors.Clone(appErrors.ErrUnauthorized, "no refreshable session")
}

// Validate parses and validates a session token, returning its claims.
func (s *SessionService) Validate(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, s.keyFunc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}
	return claims, nil
}

// parseForRefresh accepts expired tokens so long as the signature holds and
// the expiry falls within the refresh window.
func (s *SessionService) parseForRefresh(tokenString string) (*models.SessionClaims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(tokenString, &models.SessionClaims{}, s.keyFunc)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok {
		return nil, errors.New("invalid session claims")
	}
	if claims.ExpiresAt == nil {
		return nil, errors.New("session token has no expiry")
	}
	if time.Now().UTC().After(claims.ExpiresAt.Time.Add(s.config.RefreshWindow)) {
		return nil, errors.New("session token past refresh window")
	}
	return claims, nil
}

func (s *SessionService) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return []byte(s.config.Secret), nil
}

func (s *SessionService) signToken(user *models.User) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiry)
	claims := &models.SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func userInfo(user *models.User) *models.UserInfo {
	return &models.UserInfo{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	}
}
