package middleware

import (
	"matchup-chat/internal/transport/httpdto"
	"matchup-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders errors attached to the gin context that no
// handler translated itself.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.Errorf("request error: %s", err.Error())
		}
		status, resp := httpdto.FromError(err)
		c.JSON(status, resp)
	}
}
