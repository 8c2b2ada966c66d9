package server

import (
	"backend-mapty/internal/config"
	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/stream"
	"backend-mapty/internal/tracker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	Tracker *tracker.Controller
	Stream  *stream.Hub
	Locator *geo.ClientLocator
}

// NewServer wires the HTTP surface. locator may be nil when the start
// position is configured rather than reported by the browser.
func NewServer(cfg config.Config, ctrl *tracker.Controller, hub *stream.Hub, locator *geo.ClientLocator) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:     app,
		Cfg:     cfg,
		Tracker: ctrl,
		Stream:  hub,
		Locator: locator,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "phase": s.Tracker.Phase()})
	})
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	tracker.RegisterRoutes(s.App.Group("/tracker"), s.Tracker, s.Locator)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
