package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"studymate-backend/internal/config"
	"studymate-backend/internal/database"
	"studymate-backend/internal/handlers"
	"studymate-backend/internal/logger"
	"studymate-backend/internal/middleware"
	"studymate-backend/internal/repository"
	"studymate-backend/internal/router"
	"studymate-backend/internal/services"
	"studymate-backend/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Starting StudyMate backend", "env", cfg.Env)

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("PostgreSQL connection failed", "error", err)
	}
	defer pool.Close()
	log.Info("PostgreSQL connected")

	if err := database.RunMigrations(pool, cfg.MigrationsDir, log); err != nil {
		log.Fatal("Database migration failed", "error", err)
	}
	log.Info("Database migrations applied")

	// ──── Step 3: Initialize Redis Clients (optional) ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret, cfg.JWTAccessTTL)

	var (
		denylist     services.TokenDenylist = services.NopTokenDenylist{}
		pubsubClient *redis.Client
		kvClient     *redis.Client
	)
	if cfg.RedisURL != "" {
		redisClients, err := database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatal("Redis connection failed", "error", err)
		}
		defer redisClients.Close()

		redisDenylist := services.NewRedisTokenDenylist(redisClients.KV)
		denylist = redisDenylist
		jwtAuth.WithRevocation(redisDenylist)
		kvClient = redisClients.KV
		pubsubClient = redisClients.PubSub
		log.Info("Redis connected")
	} else {
		log.Warn("REDIS_URL not set: logout revocation disabled, progress updates stay in-process")
	}

	// ──── Step 4: Start WebSocket Hub ────
	wsHub := websocket.NewHub(pubsubClient, jwtAuth, cfg.FrontendURL, log)

	var progress services.ProgressPublisher = wsHub
	if kvClient != nil {
		progress = services.NewRedisProgressPublisher(kvClient, log)
	}

	// ──── Step 5: Initialize External Clients ────
	gemini, err := services.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs, cfg.GeminiTimeout, log)
	if err != nil {
		log.Fatal("Gemini client initialization failed", "error", err)
	}
	defer gemini.Close()

	youtube, err := services.NewYouTubeService(context.Background(), cfg.YouTubeAPIKey, cfg.YouTubeMaxResults, cfg.YouTubeTimeout, log)
	if err != nil {
		log.Fatal("YouTube client initialization failed", "error", err)
	}

	// ──── Initialize Repositories and Services ────
	userRepo := repository.NewUserRepo(pool)
	sessionRepo := repository.NewStudySessionRepo(pool)
	planRepo := repository.NewPlanRepo(pool)

	authService := services.NewAuthService(userRepo, jwtAuth, denylist, log)
	contentService := services.NewContentService(gemini, youtube, sessionRepo, progress, log)
	chatService := services.NewChatService(gemini, log)
	exportService := services.NewExportService()

	// ──── Step 6: Start HTTP Server ────
	r, stopRouter := router.New(
		jwtAuth,
		router.Handlers{
			Auth:    handlers.NewAuthHandler(authService, log),
			Session: handlers.NewSessionHandler(sessionRepo, log),
			Content: handlers.NewContentHandler(contentService, log),
			Export:  handlers.NewExportHandler(exportService, log),
			Plan:    handlers.NewPlanHandler(planRepo, log),
			Chat:    handlers.NewChatHandler(chatService, log),
		},
		wsHub,
		cfg.FrontendURL,
		cfg.AuthRateLimitPerMinute,
		log,
	)
	defer stopRouter()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", "error", err)
		}
	}()

	log.Info("StudyMate backend ready", "addr", "http://localhost:"+cfg.Port, "ws", "ws://localhost:"+cfg.Port+"/api/ws")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("Server error", "error", err)
	}
	<-done
}
