package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Suraj757/learning-profile-api/internal/dto"
	"github.com/Suraj757/learning-profile-api/internal/service"
	appErrors "github.com/Suraj757/learning-profile-api/pkg/errors"
	"github.com/Suraj757/learning-profile-api/pkg/response"
)

// InvitationHandler wires HTTP endpoints to the invitation service.
type InvitationHandler struct {
	service *service.InvitationService
}

// NewInvitationHandler creates a new handler.
func NewInvitationHandler(svc *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{service: svc}
}

// Bulk godoc
// @Summary Send parent invitations
// @Description Queue invitation emails for a list of parents in rate-limited batches
// @Tags Invitations
// @Accept json
// @Produce json
// @Param payload body dto.BulkInvitationRequest true "Bulk invitation payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /invitations/bulk [post]
func (h *InvitationHandler) Bulk(c *gin.Context) {
	var req dto.BulkInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk invitation payload"))
		return
	}

	res, err := h.service.BulkInvite(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, res, nil)
}

// List godoc
// @Summary List classroom invitations
// @Description Return every invitation recorded for the classroom with delivery status
// @Tags Invitations
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/classroom/{id}/invitations [get]
func (h *InvitationHandler) List(c *gin.Context) {
	invitations, err := h.service.ListByClassroom(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invitations, nil)
}
