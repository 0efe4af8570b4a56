package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"matchup-chat/internal/events"
	"matchup-chat/internal/middleware"
	"matchup-chat/internal/repository"
	"matchup-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// clientFrame is the inbound control message: clients subscribe to and
// unsubscribe from conversation channels they participate in.
type clientFrame struct {
	Action         string `json:"action"`
	ConversationID int64  `json:"conversation_id"`
}

type Handler struct {
	jwtSecret        string
	hub              *Hub
	conversationRepo repository.ConversationRepository
}

func NewHandler(jwtSecret string, hub *Hub, conversationRepo repository.ConversationRepository) *Handler {
	return &Handler{jwtSecret: jwtSecret, hub: hub, conversationRepo: conversationRepo}
}

func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	userID, err := middleware.ParseAccessToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, userID)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var frame clientFrame
		if err := json.Unmarshal(payload, &frame); err != nil || frame.ConversationID == 0 {
			continue
		}
		channel := events.ChannelFor(frame.ConversationID)

		switch frame.Action {
		case "subscribe":
			active, err := h.conversationRepo.IsActiveParticipant(c.Request.Context(), frame.ConversationID, userID)
			if err != nil || !active {
				continue
			}
			h.hub.Subscribe(client, channel)
		case "unsubscribe":
			h.hub.Unsubscribe(client, channel)
		}
	}

	h.hub.Unregister(client)
}
