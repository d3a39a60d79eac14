package middleware

import (
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/logger"
)

// ErrorHandler converts errors attached to the gin context into the API's
// error envelope. AppErrors map to their status code and public message;
// anything else becomes a generic 500 with the internal detail logged only.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if !goerrors.As(err, &appErr) {
			appErr = apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if appErr.StatusCode >= http.StatusInternalServerError {
			logger.Get().Errorw("request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"code", appErr.Code,
				"error", appErr.Internal,
			)
		}

		c.JSON(appErr.StatusCode, gin.H{
			"status":  "error",
			"code":    appErr.Code,
			"message": appErr.Message,
		})
	}
}
