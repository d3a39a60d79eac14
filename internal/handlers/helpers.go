// Package handlers wires HTTP endpoints to the service layer.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/middleware"
)

// respondSuccess writes the standard success envelope with a data payload.
func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"status": "success",
		"data":   data,
	})
}

// respondMessage writes the standard success envelope with only a message.
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status":  "success",
		"message": message,
	})
}

// respondWithError attaches an error for the error middleware to render.
func respondWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// bindingError converts a binding failure into a client-facing AppError.
func bindingError(err error) error {
	return apperrors.Wrap(apperrors.ErrInvalidInput, err)
}

// getUserID returns the authenticated user's ID from the request context.
func getUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}

// parseFlexibleTime accepts either a bare date (2006-01-02) or RFC 3339.
func parseFlexibleTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// statusCreated is a shorthand for the common create response.
func statusCreated(c *gin.Context, data interface{}) {
	respondSuccess(c, http.StatusCreated, data)
}
