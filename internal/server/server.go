package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/rahulreddy97/freerunna/internal/auth"
	"github.com/rahulreddy97/freerunna/internal/config"
	"github.com/rahulreddy97/freerunna/internal/physiology"
	"github.com/rahulreddy97/freerunna/internal/plan"
	"github.com/rahulreddy97/freerunna/internal/profile"
	"github.com/rahulreddy97/freerunna/internal/run"
	"github.com/rahulreddy97/freerunna/internal/stream"
	"github.com/rahulreddy97/freerunna/internal/workout"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

// NewServer assembles the app. The workout producer is injected so main
// can wire the Gemini client while tests pass a stub.
func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, producer plan.WorkoutProducer) *Server {
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

	registerRoutes(s, producer)
	return s
}

func registerRoutes(s *Server, producer plan.WorkoutProducer) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	calc := physiology.NewCalculator(physiology.DefaultParams())

	profiles := profile.NewService(s.DB, calc)

	genCfg := plan.DefaultGeneratorConfig()
	if s.Cfg.PlanChunkWeeks > 0 {
		genCfg.ChunkWeeks = s.Cfg.PlanChunkWeeks
	}
	if s.Cfg.PlanChunkDelay > 0 {
		genCfg.ChunkDelay = s.Cfg.PlanChunkDelay
	}
	generator := plan.NewGenerator(producer, plan.DefaultSchedulerParams(), genCfg)
	plans := plan.NewService(s.DB, generator, profiles)

	workouts := workout.NewService(s.DB)
	runs := run.NewService(s.DB, s.Stream, workouts)

	profile.RegisterRoutes(s.App.Group("/profile"), profiles, jwtMiddleware)
	plan.RegisterRoutes(s.App.Group("/plans"), plans, jwtMiddleware)
	workout.RegisterRoutes(s.App.Group("/workouts"), workouts, jwtMiddleware)
	run.RegisterRoutes(s.App.Group("/runs"), runs, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
