// Package console exposes live project sessions to presentation frontends
// over a small HTTP/JSON facade. Views render snapshots and forward user
// intents; all state lives in the session layer.
package console

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/health"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/session"
)

// ServerConfig holds configuration for the console facade.
type ServerConfig struct {
	ListenAddr  string
	CORSOrigins string
}

// Server is the console facade Fiber application.
type Server struct {
	app      *fiber.App
	handlers *Handlers
	logger   zerolog.Logger
	config   ServerConfig
}

// NewServer creates and configures the console facade.
func NewServer(cfg ServerConfig, sessions *session.Manager, projects *session.ProjectList, checker *health.Checker, logger zerolog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	handlers := NewHandlers(sessions, projects, checker, logger)

	s := &Server{
		app:      app,
		handlers: handlers,
		logger:   logger.With().Str("component", "console").Logger(),
		config:   cfg,
	}

	s.setupMiddleware(cfg)
	s.setupRoutes(handlers)

	return s
}

func (s *Server) setupMiddleware(cfg ServerConfig) {
	s.app.Use(recover.New())

	s.app.Use(func(c *fiber.Ctx) error {
		reqID := uuid.New().String()
		c.Set("X-Request-ID", reqID)
		c.Locals("request_id", reqID)
		return c.Next()
	})

	if cfg.CORSOrigins != "" {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
			AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
		}))
	}

	s.app.Use(func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/healthz" || path == "/readyz" {
			return c.Next()
		}
		s.logger.Debug().
			Str("method", c.Method()).
			Str("path", path).
			Msg("console request")
		return c.Next()
	})
}

func (s *Server) setupRoutes(h *Handlers) {
	s.app.Get("/healthz", h.Liveness)
	s.app.Get("/readyz", h.Readiness)

	api := s.app.Group("/api/v1")

	api.Get("/projects", h.ListProjects)
	api.Post("/projects", h.CreateProject)
	api.Delete("/projects/:projectID", h.DeleteProject)

	api.Post("/sessions", h.OpenSession)
	api.Get("/sessions/:projectID", h.GetSnapshot)
	api.Delete("/sessions/:projectID", h.CloseSession)

	api.Post("/sessions/:projectID/chats", h.CreateChat)
	api.Delete("/sessions/:projectID/chats/:chatID", h.DeleteChat)
	api.Get("/sessions/:projectID/chats/:chatID", h.GetChat)
	api.Post("/sessions/:projectID/chats/:chatID/messages", h.SendMessage)
	api.Post("/sessions/:projectID/chats/:chatID/feedback", h.SubmitFeedback)

	api.Post("/sessions/:projectID/documents", h.UploadDocuments)
	api.Post("/sessions/:projectID/documents/url", h.AddURLDocument)
	api.Delete("/sessions/:projectID/documents/:documentID", h.DeleteDocument)
	api.Get("/sessions/:projectID/documents/:documentID/chunks", h.GetChunks)

	api.Patch("/sessions/:projectID/settings", h.UpdateDraft)
	api.Post("/sessions/:projectID/settings/publish", h.PublishSettings)
}

// Listen starts the facade on the configured address. Blocks until
// Shutdown.
func (s *Server) Listen() error {
	s.logger.Info().Str("addr", s.config.ListenAddr).Msg("console facade listening")
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully stops the facade.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying Fiber app (for tests).
func (s *Server) App() *fiber.App {
	return s.app
}
