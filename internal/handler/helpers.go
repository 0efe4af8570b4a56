package handler

import (
	"net/http"
	"strconv"

	"matchup-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, err error) {
	status, resp := httpdto.FromError(err)
	c.JSON(status, resp)
}

// pathID parses a numeric path parameter, writing the error response
// itself on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid "+name, "INVALID_REQUEST"))
		return 0, false
	}
	return id, true
}
