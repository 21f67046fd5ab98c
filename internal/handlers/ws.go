package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// WSUpgrade rejects plain HTTP requests to the stream endpoint
func WSUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WS serves the live viewer stream. The connection is handed to the hub,
// which owns it until the viewer disconnects.
func (h *Handler) WS() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		h.hub.ServeConn(conn)
	})
}
