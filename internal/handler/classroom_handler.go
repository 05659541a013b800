package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Suraj757/learning-profile-api/internal/dto"
	"github.com/Suraj757/learning-profile-api/internal/middleware"
	"github.com/Suraj757/learning-profile-api/internal/models"
	"github.com/Suraj757/learning-profile-api/internal/service"
	appErrors "github.com/Suraj757/learning-profile-api/pkg/errors"
	"github.com/Suraj757/learning-profile-api/pkg/response"
)

// ClassroomHandler wires HTTP endpoints to the classroom service.
type ClassroomHandler struct {
	service *service.ClassroomService
}

// NewClassroomHandler creates a new handler.
func NewClassroomHandler(svc *service.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{service: svc}
}

// Overview godoc
// @Summary Classroom overview
// @Description Aggregate every profile in the classroom into counts and category averages
// @Tags Classroom
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/classroom/{id}/overview [get]
func (h *ClassroomHandler) Overview(c *gin.Context) {
	res, err := h.service.Overview(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// AtRisk godoc
// @Summary Classroom at-risk report
// @Description Evaluate every profile against the at-risk rules
// @Tags Classroom
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/classroom/{id}/at-risk [get]
func (h *ClassroomHandler) AtRisk(c *gin.Context) {
	res, err := h.service.AtRisk(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// RecordRiskFactor godoc
// @Summary Record a risk factor
// @Description Attach a manually observed concern to a profile
// @Tags Classroom
// @Accept json
// @Produce json
// @Param id path string true "Classroom ID"
// @Param payload body dto.RecordRiskFactorRequest true "Risk factor payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/classroom/{id}/at-risk [post]
func (h *ClassroomHandler) RecordRiskFactor(c *gin.Context) {
	var req dto.RecordRiskFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid risk factor payload"))
		return
	}

	recordedBy := ""
	if claims, ok := c.Get(middleware.ContextUserKey); ok {
		if sc, ok := claims.(*models.SessionClaims); ok {
			recordedBy = sc.UserID
		}
	}

	factor, err := h.service.RecordRiskFactor(c.Request.Context(), c.Param("id"), recordedBy, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, factor)
}

// Report godoc
// @Summary Export a classroom report
// @Description Render the classroom overview as CSV or PDF and return a signed download token
// @Tags Classroom
// @Produce json
// @Param id path string true "Classroom ID"
// @Param format query string false "Report format" Enums(csv, pdf) default(csv)
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/classroom/{id}/report [post]
func (h *ClassroomHandler) Report(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	res, err := h.service.ExportReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// DownloadReport godoc
// @Summary Download an exported report
// @Description Stream a previously exported report given its signed token
// @Tags Classroom
// @Produce application/octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /reports/download [get]
func (h *ClassroomHandler) DownloadReport(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token query parameter required"))
		return
	}
	path, err := h.service.ResolveReport(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(path, "classroom-report")
}
