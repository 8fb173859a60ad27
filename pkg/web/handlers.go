package web

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-mirror/pkg/hub"
	"github.com/teslashibe/go-mirror/pkg/mirror"
	"github.com/teslashibe/go-mirror/pkg/sim"
)

// TriggerResponse reports whether a narrative trigger was accepted.
type TriggerResponse struct {
	Accepted bool            `json:"accepted"`
	Snapshot mirror.Snapshot `json:"snapshot"`
}

// ConfigResponse is the tuning and placement in use.
type ConfigResponse struct {
	Plane      mirror.Plane  `json:"plane"`
	Escalation int           `json:"escalation"`
	Tuning     mirror.Config `json:"tuning"`
}

// EscalationRequest is the body of POST /api/escalation.
type EscalationRequest struct {
	Level int `json:"level"`
}

func (s *Server) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Snapshot())
}

// handleEvents returns recent events; ?limit=N keeps the newest N.
func (s *Server) handleEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be non-negative")
	}
	return c.JSON(s.ctrl.Events(limit))
}

func (s *Server) handleConfig(c *fiber.Ctx) error {
	return c.JSON(ConfigResponse{
		Plane:      s.ctrl.Plane(),
		Escalation: s.ctrl.EscalationLevel(),
		Tuning:     s.ctrl.Config(),
	})
}

func (s *Server) handleEscalation(c *fiber.Ctx) error {
	var req EscalationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	if req.Level < 0 || req.Level > sim.MaxEscalation {
		return fiber.NewError(fiber.StatusBadRequest, "level out of range")
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()
	e, err := s.ctrl.SetEscalationLevel(ctx, req.Level)
	if err != nil {
		return err
	}
	return c.JSON(e)
}

func (s *Server) handleReveal(c *fiber.Ctx) error {
	return s.trigger(c, "reveal", s.ctrl.RequestReveal)
}

func (s *Server) handleEnding(c *fiber.Ctx) error {
	return s.trigger(c, "ending", s.ctrl.StartEnding)
}

func (s *Server) handleEndingPhase(c *fiber.Ctx) error {
	phase := c.Params("phase")
	return s.trigger(c, "ending_phase", func(ctx context.Context) (bool, error) {
		return s.ctrl.SetEndingPhase(ctx, phase)
	})
}

// trigger runs fn on the update loop. Rejected triggers answer 409.
func (s *Server) trigger(c *fiber.Ctx, name string, fn func(context.Context) (bool, error)) error {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	ok, err := fn(ctx)
	if err != nil {
		return err
	}
	s.log.Info("trigger", "name", name, "accepted", ok)

	status := fiber.StatusOK
	if !ok {
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(TriggerResponse{Accepted: ok, Snapshot: s.ctrl.Snapshot()})
}

// handleFramesWS sends the latest snapshot, then streams hub traffic.
func (s *Server) handleFramesWS(conn *websocket.Conn) {
	if s.frames == nil {
		conn.Close()
		return
	}
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	if err := conn.WriteJSON(hub.Envelope{Topic: sim.TopicFrame, Data: s.ctrl.Snapshot()}); err != nil {
		conn.Close()
		return
	}
	hub.NewClient(s.frames, conn).Run()
}
