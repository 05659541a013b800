package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Suraj757/learning-profile-api/internal/service"
	"github.com/Suraj757/learning-profile-api/pkg/config"
	appErrors "github.com/Suraj757/learning-profile-api/pkg/errors"
	"github.com/Suraj757/learning-profile-api/pkg/response"
)

// ContextUserKey is the gin context key storing session claims.
const ContextUserKey = "currentUser"

// TokenCandidates collects every session credential present on the request,
// in resolution order: Authorization bearer first, then the session cookie,
// then the host-prefixed secure cookie.
func TokenCandidates(c *gin.Context, cfg config.SessionConfig) []service.SessionToken {
	candidates := make([]service.SessionToken, 0, 3)

	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			candidates = append(candidates, service.SessionToken{Source: service.SourceBearer, Value: parts[1]})
		}
	}
	if value, err := c.Cookie(cfg.CookieName); err == nil && value != "" {
		candidates = append(candidates, service.SessionToken{Source: service.SourceCookie, Value: value})
	}
	if value, err := c.Cookie(cfg.SecureCookie); err == nil && value != "" {
		candidates = append(candidates, service.SessionToken{Source: service.SourceSecureCookie, Value: value})
	}
	return candidates
}

// Session protects routes by requiring a valid session via any source.
func Session(sessions *service.SessionService, cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, candidate := range TokenCandidates(c, cfg) {
			claims, err := sessions.Validate(candidate.Value)
			if err != nil {
				continue
			}
			c.Set(ContextUserKey, claims)
			c.Next()
			return
		}
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
	}
}

// OptionalSession attaches claims when a valid session is present but does
// not block.
func OptionalSession(sessions *service.SessionService, cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, candidate := range TokenCandidates(c, cfg) {
			claims, err := sessions.Validate(candidate.Value)
			if err != nil {
				continue
			}
			c.Set(ContextUserKey, claims)
			break
		}
		c.Next()
	}
}
