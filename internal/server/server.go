package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matchup-chat/internal/config"
	"matchup-chat/internal/handler"
	"matchup-chat/internal/middleware"
	"matchup-chat/internal/redis"
	"matchup-chat/internal/transport/httpdto"
	"matchup-chat/internal/websocket"
	"matchup-chat/pkg/database"
	"matchup-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

// Handlers bundles everything SetupRoutes mounts.
type Handlers struct {
	Conversations *handler.ConversationHandler
	Messages      *handler.MessageHandler
	Attachments   *handler.AttachmentHandler
	Advice        *handler.AdviceHandler
	WebSocket     *websocket.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Server.Environment == "test" {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	auth := middleware.AuthMiddleware(s.config.Auth.JWTSecret)

	conversations := s.engine.Group("/v1/conversations", auth)
	{
		conversations.POST("", handlers.Conversations.Create)
		conversations.POST("/direct", handlers.Conversations.Direct)
		conversations.GET("", handlers.Conversations.List)
		conversations.GET("/:id", handlers.Conversations.GetByID)
		conversations.POST("/:id/participants", handlers.Conversations.AddParticipant)
		conversations.DELETE("/:id/participants/:user_id", handlers.Conversations.RemoveParticipant)
		conversations.POST("/:id/read-position", handlers.Conversations.TouchLastRead)
		conversations.GET("/:id/unread-count", handlers.Conversations.UnreadCount)

		if limiter != nil {
			conversations.POST("/:id/messages", middleware.MessageRateLimitMiddleware(limiter), handlers.Messages.Post)
		} else {
			conversations.POST("/:id/messages", handlers.Messages.Post)
		}
		conversations.GET("/:id/messages", handlers.Messages.List)

		conversations.POST("/:id/attachments/presign-upload", handlers.Attachments.PresignUpload)
		conversations.GET("/:id/attachments/presign-download", handlers.Attachments.PresignDownload)
	}

	messages := s.engine.Group("/v1/messages", auth)
	{
		messages.PATCH("/:message_id", handlers.Messages.Edit)
		messages.DELETE("/:message_id", handlers.Messages.Delete)
		messages.POST("/:message_id/read", handlers.Messages.MarkRead)
		messages.POST("/:message_id/reactions/toggle", handlers.Messages.ToggleReaction)
		messages.GET("/:message_id/reactions", handlers.Messages.ListReactions)
	}

	s.engine.POST("/v1/advice/recommendations", auth, handlers.Advice.Recommend)

	s.engine.GET("/v1/ws", handlers.WebSocket.Connect)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.Server.Port)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}
	return nil
}
