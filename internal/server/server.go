package server

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nfrund/chatrelay/internal/config"
	"github.com/nfrund/chatrelay/internal/logging"
	"github.com/nfrund/chatrelay/internal/pubsub"
	"github.com/nfrund/chatrelay/internal/relay"
	"github.com/nfrund/chatrelay/internal/session"
	"github.com/nfrund/chatrelay/internal/topics"
	"github.com/nfrund/chatrelay/internal/websocket"
)

// Server holds the dependencies for the relay process.
type Server struct {
	E        *echo.Echo
	Cfg      *config.Config
	registry *session.Registry
	router   *relay.Router
	bridge   *websocket.Bridge
	bus      *pubsub.WatermillBridge
	cancel   context.CancelFunc
}

// New creates a fully wired Server instance.
func New() (*Server, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	logging.New(cfg.LogFormat)

	if err := topics.RegisterSessionTopics(topics.Default()); err != nil {
		slog.Error("Failed to register session topics", "error", err)
		os.Exit(1)
	}

	bus := pubsub.NewWatermillBridge()
	registry := session.NewRegistry()
	router := relay.NewRouter(registry, bus)
	bridge := websocket.NewBridge(router, bus, cfg.SendBuffer)

	ctx, cancel := context.WithCancel(context.Background())
	if err := router.Start(ctx); err != nil {
		cancel()
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{
		E:        e,
		Cfg:      cfg,
		registry: registry,
		router:   router,
		bridge:   bridge,
		bus:      bus,
		cancel:   cancel,
	}
	s.registerRoutes()
	return s, nil
}

// Registry is a getter for the server's session registry, useful for testing.
func (s *Server) Registry() *session.Registry {
	return s.registry
}

// Router is a getter for the server's event router, useful for testing.
func (s *Server) Router() *relay.Router {
	return s.router
}
