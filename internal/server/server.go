package server

import (
	"context"
	"log/slog"
	"time"

	"backend-tourdesk/internal/auth"
	"backend-tourdesk/internal/config"
	"backend-tourdesk/internal/event"
	"backend-tourdesk/internal/group"
	"backend-tourdesk/internal/itinerary"
	"backend-tourdesk/internal/lead"
	"backend-tourdesk/internal/stream"
	"backend-tourdesk/internal/tourist"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
	Log    *slog.Logger
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(requestTimeout(cfg.RequestTimeout))

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
		Log:    slog.Default(),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	events := event.NewService(s.DB)
	roster := itinerary.NewService(
		itinerary.NewRepository(s.DB),
		events,
		s.Stream,
		s.Cfg.EditConcurrency,
		s.Log,
	)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewIssuer(s.Cfg.JWTSecret))
	eventsRouter := s.App.Group("/events")
	event.RegisterRoutes(eventsRouter, events, jwtMiddleware)
	itinerary.RegisterRoutes(eventsRouter, roster, jwtMiddleware)
	lead.RegisterRoutes(s.App.Group("/leads"), lead.NewService(s.DB), jwtMiddleware)
	tourist.RegisterRoutes(s.App.Group("/tourists"), tourist.NewService(s.DB), jwtMiddleware)
	group.RegisterRoutes(s.App.Group("/groups"), group.NewService(s.DB), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware)
}

// requestTimeout bounds the user context handlers pass to the database.
func requestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
