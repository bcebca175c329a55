// Package server exposes the observer surface: a small HTTP API for
// inspecting and mutating the pane set, plus a WebSocket feed of live
// pane updates.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/hearsay-dev/hearsay/internal/panes"
	"github.com/hearsay-dev/hearsay/internal/transcript"
)

// Server wraps the fiber app around a pane engine.
type Server struct {
	app    *fiber.App
	engine *panes.Engine
	hub    *hub
}

// New builds a Server for the given engine and subscribes to its events.
func New(engine *panes.Engine) *Server {
	s := &Server{
		app:    fiber.New(fiber.Config{DisableStartupMessage: true}),
		engine: engine,
		hub:    newHub(),
	}

	engine.OnUpdate(func(v panes.View) {
		s.hub.broadcast(event{Type: eventPaneUpdated, Pane: &v})
	})
	engine.OnRemove(func(id string) {
		s.hub.broadcast(event{Type: eventPaneRemoved, ID: id})
	})

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	s.app.Get("/panes", s.handleListPanes)
	s.app.Post("/panes", s.handleSetPanes)
	s.app.Post("/panes/reset", s.handleResetPanes)
	s.app.Post("/panes/:id/refresh", s.handleRefreshPane)
	s.app.Delete("/panes/:id", s.handleRemovePane)

	s.app.Get("/templates", s.handleListTemplates)
	s.app.Get("/transcript", s.handleTranscript)

	s.app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		s.hub.serveConn(c, s.engine.Views())
	}))
}

// handleListPanes returns the current projection of every pane.
func (s *Server) handleListPanes(c *fiber.Ctx) error {
	return c.JSON(s.engine.Views())
}

// setPanesRequest is the body of POST /panes.
type setPanesRequest struct {
	Panes []panes.Config `json:"panes"`
}

// handleSetPanes replaces the configured pane set. Unusable entries are
// dropped by the engine, so the call never fails on bad configs.
func (s *Server) handleSetPanes(c *fiber.Ctx) error {
	var req setPanesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	s.engine.SetPanes(req.Panes)
	return c.JSON(s.engine.Views())
}

func (s *Server) handleResetPanes(c *fiber.Ctx) error {
	s.engine.ResetOutputs()
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleRefreshPane(c *fiber.Ctx) error {
	s.engine.ForceRefresh(c.Params("id"))
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleRemovePane(c *fiber.Ctx) error {
	s.engine.Remove(c.Params("id"))
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleListTemplates(c *fiber.Ctx) error {
	return c.JSON(panes.Templates())
}

// transcriptResponse is the body of GET /transcript.
type transcriptResponse struct {
	Text     string               `json:"text"`
	Segments []transcript.Segment `json:"segments"`
}

func (s *Server) handleTranscript(c *fiber.Ctx) error {
	snap := s.engine.Transcript()
	return c.JSON(transcriptResponse{Text: snap.Text, Segments: snap.Segments})
}

// Listen blocks serving on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
