package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/policy-agent/backend/internal/api/handlers"
	redisCache "github.com/policy-agent/backend/internal/cache/redis"
	"github.com/policy-agent/backend/internal/classify"
	"github.com/policy-agent/backend/internal/embedding"
	"github.com/policy-agent/backend/internal/extract"
	"github.com/policy-agent/backend/internal/ingestion"
	"github.com/policy-agent/backend/internal/metrics"
	"github.com/policy-agent/backend/internal/middleware/ratelimit"
	"github.com/policy-agent/backend/internal/middleware/security"
	"github.com/policy-agent/backend/internal/middleware/validation"
	"github.com/policy-agent/backend/internal/nlp"
	"github.com/policy-agent/backend/internal/query"
	"github.com/policy-agent/backend/internal/rank"
	"github.com/policy-agent/backend/internal/scraper"
	"github.com/policy-agent/backend/internal/storage/sqlite"
	"github.com/policy-agent/backend/pkg/config"
	appLogger "github.com/policy-agent/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Policy Q&A API Server")
	metrics.Init()

	store, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.Close()

	var embedCache embedding.Cache
	if cfg.Redis.Enabled {
		redisClient, err := redisCache.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, embedding cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			embedCache = redisClient
		}
	}

	embedder := embedding.NewClient(
		cfg.Embedding.APIKey,
		cfg.Embedding.Model,
		cfg.Embedding.TimeoutSec,
		embedCache,
		time.Duration(cfg.Redis.TTLHours)*time.Hour,
	)

	nlpService := nlp.NewService()

	classifier := classify.New(nlpService, embedder, classify.Config{
		KeywordWeight:   cfg.Classifier.KeywordWeight,
		SemanticWeight:  cfg.Classifier.SemanticWeight,
		PhraseWeight:    cfg.Classifier.PhraseWeight,
		AcceptThreshold: cfg.Classifier.AcceptThreshold,
	})

	ranker := rank.New(embedder, rank.Config{
		Threshold:     cfg.Ranker.Threshold,
		LexicalWeight: cfg.Ranker.LexicalWeight,
	})

	scraperClient := scraper.NewClient(scraper.Config{
		TimeoutSec:  cfg.Scraper.TimeoutSec,
		MaxSources:  cfg.Scraper.MaxSources,
		UserAgent:   cfg.Scraper.UserAgent,
		MaxBodySize: cfg.Scraper.MaxBodySize,
	})

	extractor := extract.NewService()

	builder := ingestion.NewBuilder(
		ingestion.LocalSource{Folder: cfg.Ingestion.Folder},
		extractor,
		nlpService,
		store,
	)

	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	ingestion.NewScheduler(builder, time.Duration(cfg.Ingestion.IntervalMin)*time.Minute).Start(schedulerCtx)

	engine := query.NewEngine(nlpService, classifier, ranker, scraperClient, extractor, store, query.Config{
		DBLimit:     cfg.Ranker.DBLimit,
		UploadLimit: cfg.Ranker.UploadLimit,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.Headers(security.Config{}))

	limiter := ratelimit.New(ratelimit.Config{})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	chatHandler := handlers.NewChatHandler(engine, store)
	trainHandler := handlers.NewTrainHandler(builder, store)
	wsHandler := handlers.NewWebSocketHandler(engine)

	api := app.Group("/api/v1")

	api.Post("/chat", validation.ChatRequest(validation.Config{}), chatHandler.HandleChat)
	api.Get("/history", chatHandler.GetHistory)
	api.Post("/train", trainHandler.HandleTrain)
	api.Get("/knowledge", trainHandler.GetKnowledgeBase)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		if _, err := store.ConditionCounts(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
			})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
