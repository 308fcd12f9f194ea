package api

import (
	"time"

	"github.com/CristiGvl/cpurun/internal/cpu"
	"github.com/CristiGvl/cpurun/internal/platform"
	"github.com/go-logr/logr"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Server represents the API server
type Server struct {
	app       *fiber.App
	cpuReader *cpu.Reader
	sysMount  string
	format    string
	log       logr.Logger
}

// NewServer creates a new API server serving readings from reader and cpufreq
// policies from the sysfs mounted at sysMount. format is the default per-core
// frequency template.
func NewServer(reader *cpu.Reader, sysMount, format string, log logr.Logger) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
		ServerHeader:          "cpurun",
		AppName:               "cpurun v1.0",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		MaxAge:       86400, // 24 hours
	}))

	server := &Server{
		app:       app,
		cpuReader: reader,
		sysMount:  sysMount,
		format:    format,
		log:       log.WithName("api"),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	api.Get("/cpu", s.getCPU)
	api.Get("/cpu/cores", s.getCores)
	api.Get("/cpu/frequency", s.getFrequency)
	api.Get("/cpu/governor", s.getGovernor)
	api.Get("/cpu/current", s.getCurrentFrequencies)
	api.Get("/cpu/policies", s.getPolicies)

	// Health check
	api.Get("/health", s.healthCheck)
}

// Start starts the API server
func (s *Server) Start(address string) error {
	s.log.Info("Starting cpurun server", "address", address)
	return s.app.Listen(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Health check endpoint
func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"platform":  platform.GetOS(),
		"timestamp": time.Now().Unix(),
	})
}
