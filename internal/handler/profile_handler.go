package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Suraj757/learning-profile-api/internal/consolidation"
	"github.com/Suraj757/learning-profile-api/internal/dto"
	"github.com/Suraj757/learning-profile-api/internal/middleware"
	"github.com/Suraj757/learning-profile-api/internal/models"
	"github.com/Suraj757/learning-profile-api/internal/service"
	appErrors "github.com/Suraj757/learning-profile-api/pkg/errors"
	"github.com/Suraj757/learning-profile-api/pkg/response"
)

// ProfileHandler wires HTTP endpoints to the profile service.
type ProfileHandler struct {
	service    *service.ProfileService
	classrooms *service.ClassroomService
}

// NewProfileHandler creates a new handler.
func NewProfileHandler(svc *service.ProfileService, classrooms *service.ClassroomService) *ProfileHandler {
	return &ProfileHandler{service: svc, classrooms: classrooms}
}

// Submit godoc
// @Summary Submit an assessment
// @Description Store one assessment submission and consolidate it into the child's profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param payload body dto.SubmitAssessmentRequest true "Submission payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/progressive [post]
func (h *ProfileHandler) Submit(c *gin.Context) {
	var req dto.SubmitAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}

	res, err := h.service.SubmitAssessment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.classrooms != nil && res.Profile.ClassroomID != "" {
		h.classrooms.InvalidateOverview(c.Request.Context(), res.Profile.ClassroomID)
	}

	if len(res.Warnings) > 0 {
		response.JSONWithWarnings(c, http.StatusOK, res, res.Warnings)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Get godoc
// @Summary Fetch a projected profile
// @Description Load a profile and render it for the requested audience context
// @Tags Profiles
// @Produce json
// @Param profileId query string true "Profile ID"
// @Param context query string false "View context" Enums(parent, teacher, consolidated)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/progressive [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	viewCtx := consolidation.ViewContext(c.Query("context"))
	if viewCtx == "" {
		viewCtx = defaultViewContext(c)
	}
	res, err := h.service.GetProjected(c.Request.Context(), c.Query("profileId"), viewCtx)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// defaultViewContext picks the view for requests that leave the context blank.
// Signed-in teachers and admins get the teacher projection; everyone else gets
// the consolidated baseline the service applies.
func defaultViewContext(c *gin.Context) consolidation.ViewContext {
	claimsValue, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return ""
	}
	claims, ok := claimsValue.(*models.SessionClaims)
	if !ok {
		return ""
	}
	if claims.Role == models.RoleTeacher || claims.Role == models.RoleAdmin {
		return consolidation.ContextTeacher
	}
	return ""
}

// Analysis godoc
// @Summary Consolidation analysis
// @Description Report the evidence behind a profile's consolidated scores
// @Tags Profiles
// @Produce json
// @Param profile_id query string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/clp2-consolidate [get]
func (h *ProfileHandler) Analysis(c *gin.Context) {
	res, err := h.service.Analysis(c.Request.Context(), c.Query("profile_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
