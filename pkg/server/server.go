// Package server wires the QA pipeline into a Fiber HTTP application and
// runs it until shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/grounded-ai/groundedqa/internal/api"
	"github.com/grounded-ai/groundedqa/internal/config"
	"github.com/grounded-ai/groundedqa/internal/services/cache"
	"github.com/grounded-ai/groundedqa/internal/services/completion"
	"github.com/grounded-ai/groundedqa/internal/services/qa"
	"github.com/grounded-ai/groundedqa/internal/services/ratelimit"
	"github.com/grounded-ai/groundedqa/internal/services/request"
	"github.com/grounded-ai/groundedqa/internal/services/response"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

// Server is a GroundedQA server instance.
type Server struct {
	config      *config.Config
	app         *fiber.App
	redis       *redis.Client
	answerCache *cache.AnswerCache
}

// New creates a Server with the given configuration. The cfg parameter is
// required and must not be nil.
func New(cfg *config.Config) *Server {
	if cfg == nil {
		panic("config cannot be nil - use config.LoadFromFile() to create config")
	}
	return &Server{config: cfg}
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogLevel(s.config)

	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}
	listenAddr := ":" + port

	s.app = createFiberApp(s.config)

	var err error
	s.redis, err = createRedisClient(s.config)
	if err != nil {
		return err
	}
	if s.redis != nil {
		defer func() {
			if err := s.redis.Close(); err != nil {
				fiberlog.Errorf("Failed to close Redis client: %v", err)
			}
		}()
	}

	s.answerCache, err = cache.NewAnswerCache(s.config.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize answer cache: %w", err)
	}
	if s.answerCache != nil {
		defer func() {
			if err := s.answerCache.Close(); err != nil {
				fiberlog.Errorf("Failed to close answer cache: %v", err)
			}
		}()
	}

	setupMiddleware(s.app, s.config)
	s.setupRoutes()

	fmt.Printf("GroundedQA starting on %s\n", listenAddr)
	fmt.Printf("   Environment: %s\n", s.config.Server.Environment)
	fmt.Printf("   Go version: %s\n", runtime.Version())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(listenAddr); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		fiberlog.Infof("Received signal: %v. Starting graceful shutdown...", sig)
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		fiberlog.Info("Context cancelled, starting shutdown...")
	}

	fiberlog.Info("Server shutting down gracefully...")
	if err := s.app.ShutdownWithTimeout(30 * time.Second); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	fiberlog.Info("Server shutdown completed successfully")
	return nil
}

// setupRoutes builds the pipeline services and registers the endpoints.
func (s *Server) setupRoutes() {
	factory := completion.NewFactory(s.config)
	admitter := s.buildAdmitter()

	qaSvc := qa.New(factory, admitter, s.answerCache)
	reqSvc := request.NewService()
	respSvc := response.NewService()

	answerHandler := api.NewAnswerHandler(s.config, qaSvc, reqSvc, respSvc)
	healthHandler := api.NewHealthHandler(s.config, s.redis)

	s.app.Post("/v1/answers", answerHandler.Answer)
	s.app.Get("/health", healthHandler.HealthCheck)
	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":    "GroundedQA",
			"message": "Context-grounded question answering service",
		})
	})
}

// buildAdmitter picks the Redis-backed limiter when Redis is configured,
// otherwise the in-process one.
func (s *Server) buildAdmitter() ratelimit.Admitter {
	maxRequests := s.config.RateLimit.Max()
	window := s.config.RateLimit.Window()

	if s.redis != nil {
		fiberlog.Infof("Rate limiter: redis-backed, %d requests per %v", maxRequests, window)
		return ratelimit.NewRedisLimiter(s.redis, maxRequests, window)
	}

	fiberlog.Infof("Rate limiter: in-process, %d requests per %v", maxRequests, window)
	return ratelimit.New(maxRequests, window)
}

func createFiberApp(cfg *config.Config) *fiber.App {
	isProd := cfg.IsProduction()

	return fiber.New(fiber.Config{
		AppName:           "GroundedQA v1.0",
		EnablePrintRoutes: !isProd,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		CaseSensitive:     true,
		ServerHeader:      "GroundedQA",
	})
}

func setupMiddleware(app *fiber.App, cfg *config.Config) {
	isProd := cfg.IsProduction()

	// Recover middleware (must be first)
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !isProd,
	}))

	// Edge limiter guards the whole app per client IP; the pipeline's own
	// limiter enforces the per-identifier budget.
	app.Use(limiter.New(limiter.Config{
		Max:               1000,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fmt.Errorf("1000 requests per minute")
		},
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	if isProd {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency} ${bytesSent}b\n",
			Output: os.Stdout,
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
			Output: os.Stdout,
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET, POST, OPTIONS",
		MaxAge:        86400,
		ExposeHeaders: "Content-Length, Content-Type, X-Request-ID, Retry-After",
	}))
}

func setupLogLevel(cfg *config.Config) {
	logLevel := cfg.GetNormalizedLogLevel()

	switch logLevel {
	case "trace":
		fiberlog.SetLevel(fiberlog.LevelTrace)
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "info":
		fiberlog.SetLevel(fiberlog.LevelInfo)
	case "warn", "warning":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
		fiberlog.Warnf("Unknown log level '%s', defaulting to 'info'", logLevel)
	}
}

func createRedisClient(cfg *config.Config) (*redis.Client, error) {
	redisURL := cfg.RateLimit.RedisURL
	if redisURL == "" {
		fiberlog.Info("Redis not configured - rate limiting runs in-process")
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 50
	opt.MinIdleConns = 10
	opt.DialTimeout = 10 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.MaxRetries = 3

	return redis.NewClient(opt), nil
}
