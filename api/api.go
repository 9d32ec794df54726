package api

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/daylogco/linkdex/pkg/store"
)

// Server is the read-only HTTP API over the link index. It serves committed
// store state only; enrichment runs never surface through it mid-flight.
type Server struct {
	config Config
	store  store.Driver
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server. The store is injected to allow sharing
// with the pipeline and MCP components.
func NewServer(config Config, st store.Driver, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		store:  st,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/api/search", s.handleSearch)
	app.Get("/api/links/recent", s.handleRecent)
	app.Get("/api/links/:url", s.handleGetLink)
	app.Get("/api/tags", s.handleTags)
	app.Get("/api/tags/:name/links", s.handleByTag)
	app.Get("/api/stats", s.handleStats)
	app.Get("/rss", s.handleRSS)

	return s
}

// Mount attaches an extra HTTP handler under the given prefix, used for the
// MCP endpoint.
func (s *Server) Mount(prefix string, h http.Handler) {
	s.app.All(prefix+"/*", adaptor.HTTPHandler(h))
	s.app.All(prefix, adaptor.HTTPHandler(h))
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
