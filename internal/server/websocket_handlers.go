package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"chirp/internal/middleware"
)

// WebsocketHandler handles WebSocket connections for the realtime
// event stream. Auth middleware has already resolved the user.
func (s *Server) WebsocketHandler() fiber.Handler {
	handler := websocket.New(func(conn *websocket.Conn) {
		userIDVal := conn.Locals("userID")
		userID, ok := userIDVal.(uint)
		if !ok {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration failed", "user_id", userID, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		middleware.Logger.Info("websocket connected", "user_id", userID)

		go client.WritePump()
		// ReadPump blocks until the connection drops, keeping the
		// fiber websocket handler alive.
		client.ReadPump()

		middleware.Logger.Info("websocket disconnected", "user_id", userID)
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return handler(c)
	}
}
