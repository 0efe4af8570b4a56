package main

import (
	"context"
	"log"

	"matchup-chat/internal/config"
	"matchup-chat/internal/events"
	"matchup-chat/internal/handler"
	"matchup-chat/internal/notify"
	"matchup-chat/internal/redis"
	"matchup-chat/internal/repository"
	"matchup-chat/internal/server"
	"matchup-chat/internal/services"
	"matchup-chat/internal/storage"
	"matchup-chat/internal/websocket"
	"matchup-chat/pkg/database"
	"matchup-chat/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mode := logger.DevelopmentMode
	if cfg.Server.Environment == "production" {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := repository.InitSchema(database.DB); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	redis.Initialize(cfg.Redis)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewRedisBus(redis.GetClient(), l.Logger)
	limiter := redis.NewRateLimiter(redis.GetClient(), redis.RateLimitConfig{
		MessageLimit:  cfg.Chat.MessageLimit,
		MessageWindow: cfg.Chat.MessageWindow,
	})

	hub := websocket.NewHub()
	go hub.Run(ctx)

	bridge := websocket.NewRedisBridge(bus, hub, l.Logger)
	go func() {
		if err := bridge.Run(ctx); err != nil && err != context.Canceled {
			l.Errorf("redis bridge stopped: %s", err)
		}
	}()

	var s3Client *storage.Client
	if cfg.S3.Bucket != "" {
		s3Client, err = storage.NewClient(ctx, cfg.S3)
		if err != nil {
			l.Errorf("S3 client unavailable, attachments disabled: %s", err)
		}
	}

	notifier := notify.NewEmailNotifier(cfg.SMTP, l.Logger)

	repos := services.NewRepos(database.DB)
	conversationService := services.NewConversationService(database.DB, repos)
	messageService := services.NewMessageService(database.DB, repos, cfg.Chat, bus, notifier, nil, l.Logger)
	receiptService := services.NewReceiptService(database.DB, repos, bus)
	reactionService := services.NewReactionService(database.DB, repos, bus)
	adviceService := services.NewAdviceService(cfg.OpenAI, l.Logger)

	handlers := &server.Handlers{
		Conversations: handler.NewConversationHandler(conversationService, receiptService),
		Messages:      handler.NewMessageHandler(messageService, receiptService, reactionService),
		Attachments:   handler.NewAttachmentHandler(conversationService, s3Client),
		Advice:        handler.NewAdviceHandler(adviceService),
		WebSocket:     websocket.NewHandler(cfg.Auth.JWTSecret, hub, repos.Conversations),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
