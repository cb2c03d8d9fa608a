package handler

import (
	"context"

	"riff-be/internal/config"
	"riff-be/internal/pkg/logger"
	"riff-be/internal/repository/memory"
	"riff-be/internal/service"
	internalWS "riff-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type SessionHandler struct {
	dispatcher service.IDispatcherService
	hub        *internalWS.Hub
	memory     *memory.SessionRepository
	opts       internalWS.ServeOptions
	logger     logger.ILogger
}

func NewSessionHandler(
	dispatcher service.IDispatcherService,
	hub *internalWS.Hub,
	sessionMemory *memory.SessionRepository,
	cfg *config.Config,
	log logger.ILogger,
) *SessionHandler {
	return &SessionHandler{
		dispatcher: dispatcher,
		hub:        hub,
		memory:     sessionMemory,
		opts: internalWS.ServeOptions{
			BufferSize:      cfg.Engine.SessionBufferSize,
			MaxMessageBytes: int64(cfg.Engine.MaxCommandBytes),
		},
		logger: log,
	}
}

func (h *SessionHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", h.ServeWs)
}

// ServeWs upgrades the request into a session. Connections passing the same
// ?session= value share one session channel.
func (h *SessionHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	// the handler below outlives the request buffer
	sessionID := utils.CopyString(c.Query("session"))
	if sessionID == "" || len(sessionID) > 128 {
		sessionID = uuid.NewString()
	}

	return websocket.New(func(conn *websocket.Conn) {
		internalWS.Serve(context.Background(), conn, h.hub, h.dispatcher, sessionID, h.opts, h.logger)
		if h.hub.ChannelSize(sessionID) == 0 {
			h.memory.Delete(sessionID)
		}
	})(c)
}
