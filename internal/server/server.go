package server

import (
	"backend-inkwell/internal/account"
	"backend-inkwell/internal/auth"
	"backend-inkwell/internal/config"
	"backend-inkwell/internal/engagement"
	"backend-inkwell/internal/feed"
	"backend-inkwell/internal/post"
	"backend-inkwell/internal/social"
	"backend-inkwell/internal/stream"

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
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authRequired := auth.RequireAuth(s.Cfg.JWTSecret)
	authOptional := auth.OptionalAuth(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB, s.Redis))
	account.RegisterRoutes(s.App.Group("/users"), account.NewService(s.DB), authRequired, authOptional)
	social.RegisterRoutes(s.App, social.NewService(s.DB), authRequired, authOptional)
	post.RegisterRoutes(s.App.Group("/posts"), post.NewService(s.DB), authRequired, authOptional)
	engagement.RegisterRoutes(s.App.Group("/posts"), engagement.NewService(s.DB, s.Stream), authRequired, authOptional)
	feed.RegisterRoutes(s.App, feed.NewService(s.DB), authRequired, authOptional)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
