package handler

import (
	"net/http"

	"matchup-chat/internal/services"
	"matchup-chat/internal/storage"
	"matchup-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	conversations *services.ConversationService
	s3            *storage.Client
}

func NewAttachmentHandler(conversations *services.ConversationService, s3 *storage.Client) *AttachmentHandler {
	return &AttachmentHandler{conversations: conversations, s3: s3}
}

type presignUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes"`
}

// PresignUpload hands out an upload URL for a conversation attachment.
// The caller must be an active participant; uploads bypass the API and
// go straight to object storage.
func (h *AttachmentHandler) PresignUpload(c *gin.Context) {
	if h.s3 == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("attachment storage not configured", "UNAVAILABLE"))
		return
	}

	conversationID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req presignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if _, err := h.conversations.Get(c.Request.Context(), conversationID, userID); err != nil {
		respondError(c, err)
		return
	}

	key := storage.AttachmentKey(conversationID, req.Filename)
	url, headers, err := h.s3.PresignPut(c.Request.Context(), key, req.ContentType, req.SizeBytes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{
		"key":     key,
		"url":     url,
		"headers": headers,
	}))
}

// PresignDownload hands out a time-limited download URL for a stored key.
func (h *AttachmentHandler) PresignDownload(c *gin.Context) {
	if h.s3 == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("attachment storage not configured", "UNAVAILABLE"))
		return
	}

	conversationID, ok := pathID(c, "id")
	if !ok {
		return
	}
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("object key is required", "INVALID_REQUEST"))
		return
	}
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if _, err := h.conversations.Get(c.Request.Context(), conversationID, userID); err != nil {
		respondError(c, err)
		return
	}

	url, err := h.s3.PresignGet(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"url": url}))
}
