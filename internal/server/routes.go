package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// registerRoutes wires the server's HTTP surface: the WebSocket endpoint and
// an auxiliary health check. Everything else is a participant concern.
func (s *Server) registerRoutes() {
	s.E.GET("/healthz", s.healthz)
	s.E.GET("/ws", s.bridge.Handler())
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":       "ok",
		"participants": s.registry.Len(),
	})
}
