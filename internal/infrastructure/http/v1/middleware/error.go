package middleware

import (
	"github.com/gin-gonic/gin"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/response"
	"smartshop/pkg/logger"
)

// ErrorHandler turns the last error registered on the gin context into the
// response envelope. Persistence and internal causes are logged, never sent.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}
		} else {
			logger.Error(c.Request.Context(), "unhandled error", "error", err)
		}

		env := response.FromError(err)
		c.JSON(env.StatusCode, env)
	}
}
