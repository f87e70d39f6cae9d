package server

import (
	"context"
	"log/slog"

	"fritter/internal/middleware"
	"fritter/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WSTicketAuth guards the event stream. A ticket from POST /api/ws/ticket is
// consumed atomically and identifies the user; without one the connection
// is an anonymous feed watcher.
func (s *Server) WSTicketAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		ticket := c.Query("ticket")
		if ticket == "" {
			c.Locals("userID", uint(0))
			return c.Next()
		}
		if s.redis == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}

		userID, err := s.redis.GetDel(c.UserContext(), wsTicketPrefix+ticket).Uint64()
		if err != nil || userID == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}

		c.Locals("userID", uint(userID))
		c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID)))
		return c.Next()
	}
}

// EventStreamHandler streams freet and listing events. Signed-in users also
// receive events addressed to them, such as sales of their listings.
// @Summary Event stream
// @Description WebSocket upgrade. A ticket identifies the user; without one the stream is anonymous.
// @Tags realtime
// @Param ticket query string false "Ticket from POST /ws/ticket"
// @Success 101
// @Failure 401 {object} models.ErrorResponse
// @Failure 426
// @Router /ws [get]
func (s *Server) EventStreamHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("event stream rejected",
				slog.Any("user_id", userID), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
