package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guestpostlinks/pr-admin-api/internal/models"
	appErrors "github.com/guestpostlinks/pr-admin-api/pkg/errors"
)

var production bool

// Init toggles production behaviour: error detail is only serialized outside
// production.
func Init(env string) {
	production = env == "production"
}

// Envelope represents the common response contract.
type Envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Data       interface{}        `json:"data,omitempty"`
	Error      *appErrors.Error   `json:"error,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	StatusCode int                `json:"statusCode,omitempty"`
	Timestamp  string             `json:"timestamp"`
	Detail     string             `json:"detail,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{
		Success:    true,
		Data:       data,
		Pagination: pagination,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

// Message sends a success response carrying only a message.
func Message(c *gin.Context, status int, message string) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{
		Success:   true,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")

	envelope := Envelope{
		Success:    false,
		Message:    appErr.Message,
		Error:      appErr,
		StatusCode: appErr.Status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if !production && appErr.Err != nil {
		envelope.Detail = appErr.Err.Error()
	}

	c.JSON(appErr.Status, envelope)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
