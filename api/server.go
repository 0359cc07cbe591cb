package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/voidlabs/voidgrid/voidgrid"
	"github.com/voidlabs/voidgrid/voidgrid/database"
	"github.com/voidlabs/voidgrid/voidgrid/database/repositories"
	"github.com/voidlabs/voidgrid/voidgrid/engine"
	"github.com/voidlabs/voidgrid/voidgrid/leaderboard"
)

// Server is the HTTP surface the chat gateway, wallet subsystem, and HUD
// talk to.
type Server struct {
	cfg       voidgrid.APIConfig
	app       *fiber.App
	engine    *engine.Engine
	db        *database.DB
	board     *leaderboard.Board
	snapshots repositories.SnapshotRepository
}

func NewServer(cfg voidgrid.APIConfig, eng *engine.Engine, db *database.DB, board *leaderboard.Board, snapshots repositories.SnapshotRepository) *Server {
	s := &Server{
		cfg:       cfg,
		engine:    eng,
		db:        db,
		board:     board,
		snapshots: snapshots,
	}

	app := fiber.New(fiber.Config{
		AppName:      "voidgrid",
		ErrorHandler: CustomErrorHandler,
	})

	app.Use(recover.New())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,PUT",
	}))
	app.Use(LoggingMiddleware())

	app.Get("/health", s.HealthCheck)

	v1 := app.Group("/v1")
	v1.Post("/events/message", s.ReportMessage)
	v1.Post("/events/burn", s.ReportBurn)
	v1.Get("/accounts/:address", s.GetAccount)
	v1.Put("/accounts/:address/holdings", s.UpdateHoldings)
	v1.Get("/season", s.GetSeason)
	v1.Get("/leaderboard", s.GetLeaderboard)

	app.Use(func(c *fiber.Ctx) error {
		return sendNotFound(c, "route not found")
	})

	s.app = app
	return s
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP until Shutdown is called.
func (s *Server) Listen() error {
	return s.app.Listen(fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port))
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
