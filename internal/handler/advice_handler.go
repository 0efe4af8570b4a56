package handler

import (
	"net/http"

	"matchup-chat/internal/services"
	"matchup-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type AdviceHandler struct {
	advice *services.AdviceService
}

func NewAdviceHandler(advice *services.AdviceService) *AdviceHandler {
	return &AdviceHandler{advice: advice}
}

// Recommend generates coaching advice from a player activity snapshot.
func (h *AdviceHandler) Recommend(c *gin.Context) {
	if h.advice == nil || !h.advice.Enabled() {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("advice generation not configured", "UNAVAILABLE"))
		return
	}

	var activity services.PlayerActivity
	if err := c.ShouldBindJSON(&activity); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	advice, err := h.advice.Recommend(c.Request.Context(), activity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"advice": advice}))
}
