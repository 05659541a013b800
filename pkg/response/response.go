package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Suraj757/learning-profile-api/internal/models"
	appErrors "github.com/Suraj757/learning-profile-api/pkg/errors"
)

// Envelope represents the common response contract. Warnings carries advisory
// notes about an otherwise successful request, such as a sparse assessment
// submission that was accepted with reduced confidence.
type Envelope struct {
	Data       interface{}        `json:"data,omitempty"`
	Error      *appErrors.Error   `json:"error,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination) {
	write(c, status, Envelope{Data: data, Pagination: pagination})
}

// JSONWithWarnings sends a success response carrying advisory warnings.
func JSONWithWarnings(c *gin.Context, status int, data interface{}, warnings []string) {
	write(c, status, Envelope{Data: data, Warnings: warnings})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	write(c, appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func write(c *gin.Context, status int, envelope Envelope) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, envelope)
}
