package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Suraj757/learning-profile-api/internal/middleware"
	"github.com/Suraj757/learning-profile-api/internal/models"
	"github.com/Suraj757/learning-profile-api/internal/service"
	"github.com/Suraj757/learning-profile-api/pkg/config"
	appErrors "github.com/Suraj757/learning-profile-api/pkg/errors"
	"github.com/Suraj757/learning-profile-api/pkg/response"
)

// SessionHandler wires HTTP endpoints to the session service. It owns the
// cookie writing; the service never touches the response.
type SessionHandler struct {
	service *service.SessionService
	config  config.SessionConfig
}

// NewSessionHandler creates a new handler.
func NewSessionHandler(svc *service.SessionService, cfg config.SessionConfig) *SessionHandler {
	return &SessionHandler{service: svc, config: cfg}
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate by email and password, setting the session cookies
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	token, state, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookies(c, token, state.ExpiresAt)
	response.JSON(c, http.StatusOK, state, nil)
}

// Session godoc
// @Summary Inspect the current session
// @Description Report whether the request carries a valid session and from which source
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/session [get]
func (h *SessionHandler) Session(c *gin.Context) {
	candidates := middleware.TokenCandidates(c, h.config)
	state := h.service.Resolve(c.Request.Context(), candidates)
	response.JSON(c, http.StatusOK, state, nil)
}

// SessionAction godoc
// @Summary Act on the current session
// @Description Currently supports the refresh action, reissuing the session cookies
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SessionActionRequest true "Action payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/session [post]
func (h *SessionHandler) SessionAction(c *gin.Context) {
	var req models.SessionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session action payload"))
		return
	}
	if req.Action != "refresh" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported session action"))
		return
	}

	candidates := middleware.TokenCandidates(c, h.config)
	token, state, err := h.service.Refresh(c.Request.Context(), candidates)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookies(c, token, state.ExpiresAt)
	response.JSON(c, http.StatusOK, state, nil)
}

// Logout godoc
// @Summary End the current session
// @Description Clear the session cookies
// @Tags Authentication
// @Produce json
// @Success 204 {object} response.Envelope
// @Router /auth/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	h.clearSessionCookies(c)
	response.NoContent(c)
}

func (h *SessionHandler) setSessionCookies(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.config.CookieName, token, maxAge, "/", h.config.CookieDomain, h.config.CookieSecure, true)
	if h.config.CookieSecure {
		c.SetCookie(h.config.SecureCookie, token, maxAge, "/", h.config.CookieDomain, true, true)
	}
}

func (h *SessionHandler) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.config.CookieName, "", -1, "/", h.config.CookieDomain, h.config.CookieSecure, true)
	c.SetCookie(h.config.SecureCookie, "", -1, "/", h.config.CookieDomain, true, true)
}
