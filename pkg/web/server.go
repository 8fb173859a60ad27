// Package web serves the mirror debug dashboard and choreography API.
package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-mirror/pkg/hub"
	"github.com/teslashibe/go-mirror/pkg/mirror"
	"github.com/teslashibe/go-mirror/pkg/sim"
)

// requestTimeout bounds how long a trigger waits for the update loop.
const requestTimeout = 2 * time.Second

// Controller is the simulation surface the API drives. *sim.Runner
// implements it.
type Controller interface {
	Snapshot() mirror.Snapshot
	Events(limit int) []mirror.Event
	Config() mirror.Config
	Plane() mirror.Plane
	EscalationLevel() int
	RequestReveal(ctx context.Context) (bool, error)
	StartEnding(ctx context.Context) (bool, error)
	SetEndingPhase(ctx context.Context, name string) (bool, error)
	SetEscalationLevel(ctx context.Context, level int) (sim.Escalation, error)
}

// Server is the dashboard HTTP server.
type Server struct {
	app    *fiber.App
	ctrl   Controller
	frames *hub.Hub
	log    *slog.Logger

	serving atomic.Bool
}

// NewServer builds the fiber app. frames may be nil to disable /ws/frames.
func NewServer(ctrl Controller, frames *hub.Hub, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{ctrl: ctrl, frames: frames, log: log.With("component", "web")}

	app := fiber.New(fiber.Config{
		AppName:               "Mirror Dashboard",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(cors.New())

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/events", s.handleEvents)
	api.Get("/config", s.handleConfig)
	api.Post("/escalation", s.handleEscalation)
	api.Post("/reveal", s.handleReveal)
	api.Post("/ending", s.handleEnding)
	api.Post("/ending/:phase", s.handleEndingPhase)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info("dashboard listening", "addr", addr)
	s.serving.Store(true)
	return s.app.Listen(addr)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("dashboard listening", "addr", ln.Addr().String())
	s.serving.Store(true)
	return s.app.Listener(ln)
}

// Shutdown stops the server, waiting up to timeout for open requests. It is a
// no-op when the server never started serving.
func (s *Server) Shutdown(timeout time.Duration) error {
	if !s.serving.Load() {
		return nil
	}
	return s.app.ShutdownWithTimeout(timeout)
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, mirror.ErrUnknownEndingPhase):
		code = fiber.StatusBadRequest
	case errors.Is(err, sim.ErrStopped):
		code = fiber.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = fiber.StatusGatewayTimeout
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
